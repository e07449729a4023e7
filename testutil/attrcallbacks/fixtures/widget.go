// Package fixtures provides the Widget record used throughout the tests.
package fixtures

import (
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
)

// WidgetSchema declares one attribute of every supported type.
var WidgetSchema = model.MustSchema("Widget",
	model.Text("name"),
	model.Integer("stock"),
	model.Boolean("active"),
	model.Timestamp("released_at"),
	model.TextArray("colors"),
	model.TextMap("dimensions"),
)

// Widget is a record backed by a model.Model.
type Widget struct {
	*model.Model
}

// NewWidget returns an unsaved Widget.
func NewWidget() *Widget {
	return &Widget{Model: model.New(WidgetSchema)}
}

// BuildWidget returns an unsaved Widget with name and colors set.
func BuildWidget(name string, colors ...string) *Widget {
	w := NewWidget()
	w.MustSet("name", name)

	if colors != nil {
		w.MustSet("colors", colors)
	}

	return w
}

// MustSet sets an attribute and panics on invalid input, keeping test arrangements short.
func (w *Widget) MustSet(name string, value any) *Widget {
	if err := w.Set(name, value); err != nil {
		panic(err)
	}

	return w
}
