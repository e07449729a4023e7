// Package inventory defines the Widget record of the widgets application and the attribute
// callbacks that guard and react to its changes.
package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
)

var (
	ErrNegativeStock = errors.New("stock must not be negative")
	ErrBlankColor    = errors.New("color must not be blank")
)

// Schema is the stored shape of a Widget.
var Schema = model.MustSchema("Widget",
	model.Text("name"),
	model.Integer("stock"),
	model.Boolean("active"),
	model.Timestamp("released_at"),
	model.TextArray("colors"),
	model.TextMap("dimensions"),
)

// Widget is a stock item.
type Widget struct {
	*model.Model
	now func() time.Time
}

// NewWidget returns an unsaved Widget.
func NewWidget() *Widget {
	return &Widget{Model: model.New(Schema), now: time.Now}
}

// BeforeStockChange refuses negative stock.
func (w *Widget) BeforeStockChange(_ context.Context, _, after any) (bool, error) {
	if stock, ok := after.(int64); ok && stock < 0 {
		return false, ErrNegativeStock
	}

	return true, nil
}

// BeforeActiveChange stamps released_at the first time a widget is activated.
func (w *Widget) BeforeActiveChange(_ context.Context, _, after any) (bool, error) {
	if after == true && w.Get("released_at") == nil {
		if err := w.Set("released_at", w.now()); err != nil {
			return false, err
		}
	}

	return true, nil
}

// BeforeColorsAdd refuses blank colors.
func (w *Widget) BeforeColorsAdd(_ context.Context, el attrcallbacks.Element) (bool, error) {
	if color, _ := el.Value.(string); color == "" {
		return false, ErrBlankColor
	}

	return true, nil
}

// BeforeColorsRemove keeps at least one color on active widgets.
func (w *Widget) BeforeColorsRemove(_ context.Context, _ attrcallbacks.Element) (bool, error) {
	return !w.Bool("active") || len(w.Strings("colors")) > 0, nil
}
