package fixtures

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// ErrStockNegative is returned by AuditedWidget when stock would drop below zero.
var ErrStockNegative = errors.New("stock must not be negative")

// AuditedWidget is a Widget whose hooks are methods, for use with attrcallbacks.RegisterMethods.
// It refuses black colors and negative stock and journals every color that was added or removed.
type AuditedWidget struct {
	Widget
	Journal []string
}

// NewAuditedWidget returns an unsaved AuditedWidget named name.
func NewAuditedWidget(name string) *AuditedWidget {
	return &AuditedWidget{Widget: *BuildWidget(name)}
}

func (w *AuditedWidget) BeforeColorsAdd(_ context.Context, el attrcallbacks.Element) (bool, error) {
	return el.String() != "black", nil
}

func (w *AuditedWidget) AfterColorsAdd(_ context.Context, el attrcallbacks.Element) error {
	w.Journal = append(w.Journal, "added "+el.String())
	return nil
}

func (w *AuditedWidget) AfterColorsRemove(_ context.Context, el attrcallbacks.Element) error {
	w.Journal = append(w.Journal, "removed "+el.String())
	return nil
}

func (w *AuditedWidget) BeforeStockChange(_ context.Context, _, after any) (bool, error) {
	if stock, ok := after.(int64); ok && stock < 0 {
		return false, ErrStockNegative
	}

	return true, nil
}
