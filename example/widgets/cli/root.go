// Package cli implements the widgets command line interface.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/oteladapters"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/postgresengine"
	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/config"
	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/inventory"
)

const serviceName = "widgets"

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	EnvFile string

	cfg       config.Config
	logger    *slog.Logger
	telemetry *config.TelemetryProviders
}

// NewRootCommand creates the root command of the widgets CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "widgets",
		Short:         "Manage widgets stored in PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.telemetry != nil {
				return opts.telemetry.Shutdown()
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with WIDGETS_* settings")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewColorsCommand(opts))
	cmd.AddCommand(NewSetStockCommand(opts))
	cmd.AddCommand(NewActivateCommand(opts))
	cmd.AddCommand(NewSetDimensionCommand(opts))
	cmd.AddCommand(NewHooksCommand(opts))

	return cmd
}

func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}

	opts.cfg = cfg
	opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.Telemetry {
		opts.telemetry, err = config.NewTelemetry(cmd.Context(), serviceName, nil, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

func (opts *RootOptions) registry() (*attrcallbacks.Registry, error) {
	return inventory.Callbacks{Logger: opts.logger, Palette: opts.cfg.Palette}.Registry()
}

// openStore wires the interceptor into a store for widgets. With telemetry enabled both report to
// the global OpenTelemetry providers, otherwise they log to stderr.
func (opts *RootOptions) openStore(ctx context.Context) (postgresengine.Store, func(), error) {
	registry, err := opts.registry()
	if err != nil {
		return postgresengine.Store{}, nil, err
	}

	interceptorOptions := []attrcallbacks.Option{attrcallbacks.WithLogger(opts.logger)}
	storeOptions := []postgresengine.Option{postgresengine.WithLogger(opts.logger)}

	if opts.telemetry != nil {
		metrics := oteladapters.NewMetricsCollector(otel.Meter(serviceName))
		tracing := oteladapters.NewTracingCollector(otel.Tracer(serviceName))
		logger := oteladapters.NewSlogBridgeLogger(serviceName)

		interceptorOptions = append(interceptorOptions,
			attrcallbacks.WithContextualLogger(logger),
			attrcallbacks.WithMetrics(metrics),
			attrcallbacks.WithTracing(tracing))
		storeOptions = append(storeOptions,
			postgresengine.WithContextualLogger(logger),
			postgresengine.WithMetrics(metrics),
			postgresengine.WithTracing(tracing))
	}

	interceptor, err := attrcallbacks.NewInterceptor(registry, interceptorOptions...)
	if err != nil {
		return postgresengine.Store{}, nil, err
	}

	return opts.cfg.OpenStore(ctx, inventory.Schema, append(storeOptions, postgresengine.WithObservers(interceptor))...)
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()

	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("error:", err)
		return 1
	}

	return 0
}
