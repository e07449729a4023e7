package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// LowStockThreshold is the stock level at and below which a warning is logged.
const LowStockThreshold = 5

// Callbacks builds the registry of the widgets application: the Widget's own hook methods plus
// the hooks that depend on the application configuration.
type Callbacks struct {
	Logger  *slog.Logger
	Palette []string
}

// Registry returns a registry with all widget hooks.
func (c Callbacks) Registry() (*attrcallbacks.Registry, error) {
	registry := attrcallbacks.NewRegistry()

	if err := attrcallbacks.RegisterMethods(registry, NewWidget()); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if len(c.Palette) > 0 {
		// Replaces the method hook, so blank colors are refused by the palette check as well.
		registry.BeforeAdd("colors", func(_ context.Context, _ attrcallbacks.Record, el attrcallbacks.Element) (bool, error) {
			return slices.Contains(c.Palette, fmt.Sprint(el.Value)), nil
		})
	}

	registry.Changed("stock", func(ctx context.Context, rec attrcallbacks.Record, _, after any) error {
		if stock, ok := after.(int64); ok && stock <= LowStockThreshold {
			logger.WarnContext(ctx, "widget stock is low", "widget", nameOf(rec), "stock", stock)
		}

		return nil
	})

	registry.AfterAdd("colors", func(ctx context.Context, rec attrcallbacks.Record, el attrcallbacks.Element) error {
		logger.InfoContext(ctx, "color added", "widget", nameOf(rec), "color", el.String())
		return nil
	})

	registry.AfterRemove("colors", func(ctx context.Context, rec attrcallbacks.Record, el attrcallbacks.Element) error {
		logger.InfoContext(ctx, "color removed", "widget", nameOf(rec), "color", el.String())
		return nil
	})

	registry.AfterRemove("dimensions", func(ctx context.Context, rec attrcallbacks.Record, el attrcallbacks.Element) error {
		logger.InfoContext(ctx, "dimension dropped", "widget", nameOf(rec), "dimension", el.String())
		return nil
	})

	return registry, registry.Err()
}

func nameOf(rec attrcallbacks.Record) string {
	name, _ := rec.Attribute("name")
	return fmt.Sprint(name)
}
