package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine"
	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/inventory"
)

// widgetView is the printed form of a widget.
type widgetView struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Stock      int64             `yaml:"stock"`
	Active     bool              `yaml:"active"`
	ReleasedAt string            `yaml:"released_at,omitempty"`
	Colors     []string          `yaml:"colors,omitempty"`
	Dimensions map[string]string `yaml:"dimensions,omitempty"`
}

func viewOf(w *inventory.Widget) widgetView {
	view := widgetView{
		ID:         w.ID().String(),
		Name:       w.Text("name"),
		Stock:      w.Int("stock"),
		Active:     w.Bool("active"),
		Colors:     w.Strings("colors"),
		Dimensions: w.StringMap("dimensions"),
	}

	if releasedAt := w.Time("released_at"); !releasedAt.IsZero() {
		view.ReleasedAt = releasedAt.Format(time.RFC3339)
	}

	return view
}

func printWidget(cmd *cobra.Command, w *inventory.Widget) error {
	out, err := yaml.Marshal(viewOf(w))
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)

	return err
}

// withStore opens the store for the duration of fn.
func withStore(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, store postgresengine.Store) error) error {
	store, closeStore, err := opts.openStore(cmd.Context())
	if closeStore != nil {
		defer closeStore()
	}

	if err != nil {
		return err
	}

	return fn(cmd.Context(), store)
}

// updateWidget loads the widget with the id in args[0], applies change, saves and prints it.
func updateWidget(opts *RootOptions, cmd *cobra.Command, args []string, change func(w *inventory.Widget) error) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid widget id %q: %w", args[0], err)
	}

	return withStore(opts, cmd, func(ctx context.Context, store postgresengine.Store) error {
		widget := inventory.NewWidget()
		if err := store.Find(ctx, id, widget); err != nil {
			return err
		}

		if err := change(widget); err != nil {
			return err
		}

		if err := store.Save(ctx, widget); err != nil {
			return err
		}

		return printWidget(cmd, widget)
	})
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the widgets table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(opts, cmd, func(ctx context.Context, store postgresengine.Store) error {
				if err := store.Migrate(ctx); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "table %s is ready\n", store.TableName())

				return err
			})
		},
	}
}

// NewCreateCommand creates the create command.
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		stock      int64
		active     bool
		colors     []string
		dimensions map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			widget := inventory.NewWidget()

			for name, value := range map[string]any{"name": args[0], "stock": stock, "active": active} {
				if err := widget.Set(name, value); err != nil {
					return err
				}
			}

			if len(colors) > 0 {
				if err := widget.Set("colors", colors); err != nil {
					return err
				}
			}

			if len(dimensions) > 0 {
				if err := widget.Set("dimensions", dimensions); err != nil {
					return err
				}
			}

			return withStore(opts, cmd, func(ctx context.Context, store postgresengine.Store) error {
				if err := store.Save(ctx, widget); err != nil {
					return err
				}

				return printWidget(cmd, widget)
			})
		},
	}

	cmd.Flags().Int64Var(&stock, "stock", 0, "initial stock")
	cmd.Flags().BoolVar(&active, "active", false, "activate the widget right away")
	cmd.Flags().StringSliceVar(&colors, "color", nil, "color, repeatable")
	cmd.Flags().StringToStringVar(&dimensions, "dimension", nil, "dimension as key=value, repeatable")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid widget id %q: %w", args[0], err)
			}

			return withStore(opts, cmd, func(ctx context.Context, store postgresengine.Store) error {
				widget := inventory.NewWidget()
				if err := store.Find(ctx, id, widget); err != nil {
					return err
				}

				return printWidget(cmd, widget)
			})
		},
	}
}

// NewColorsCommand creates the colors command with its add and remove subcommands.
func NewColorsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Change the colors of a widget",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <color>...",
		Short: "Append colors",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWidget(opts, cmd, args, func(w *inventory.Widget) error {
				return w.Set("colors", append(w.Strings("colors"), args[1:]...))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id> <color>...",
		Short: "Remove colors",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWidget(opts, cmd, args, func(w *inventory.Widget) error {
				remaining := slices.DeleteFunc(slices.Clone(w.Strings("colors")), func(color string) bool {
					return slices.Contains(args[1:], color)
				})

				return w.Set("colors", remaining)
			})
		},
	})

	return cmd
}

// NewSetStockCommand creates the set-stock command.
func NewSetStockCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-stock <id> <stock>",
		Short: "Set the stock of a widget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid stock %q: %w", args[1], err)
			}

			return updateWidget(opts, cmd, args, func(w *inventory.Widget) error {
				return w.Set("stock", stock)
			})
		},
	}
}

// NewActivateCommand creates the activate command.
func NewActivateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Activate a widget; the first activation sets its release time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWidget(opts, cmd, args, func(w *inventory.Widget) error {
				return w.Set("active", true)
			})
		},
	}
}

// NewSetDimensionCommand creates the set-dimension command. An empty value removes the dimension.
func NewSetDimensionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-dimension <id> <key> [value]",
		Short: "Set or remove a dimension of a widget",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWidget(opts, cmd, args, func(w *inventory.Widget) error {
				dimensions := w.StringMap("dimensions")
				if len(args) == 3 && args[2] != "" {
					dimensions[args[1]] = args[2]
				} else {
					delete(dimensions, args[1])
				}

				return w.Set("dimensions", dimensions)
			})
		},
	}
}

// NewHooksCommand creates the hooks command, which lists the registered hook names.
func NewHooksCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List the registered attribute hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}

			for _, name := range registry.HookNames() {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
