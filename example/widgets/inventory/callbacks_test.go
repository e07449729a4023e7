package inventory_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/example/widgets/inventory"
)

// saveWithoutDatabase runs the lifecycle the way the store does, with a persist step that only
// marks the widget as persisted.
func saveWithoutDatabase(t *testing.T, callbacks inventory.Callbacks, w *inventory.Widget) error {
	t.Helper()

	registry, err := callbacks.Registry()
	require.NoError(t, err)

	interceptor, err := attrcallbacks.NewInterceptor(registry)
	require.NoError(t, err)

	persisted := false
	_, err = attrcallbacks.NewLifecycle(interceptor).Run(context.Background(), w,
		func(context.Context, attrcallbacks.Operation, attrcallbacks.ChangeSet) error {
			persisted = true
			return nil
		})
	if err == nil {
		require.True(t, persisted)
		id := w.ID()
		if id == uuid.Nil {
			id = uuid.New()
		}
		w.MarkPersisted(id)
	}

	return err
}

func Test_Callbacks_Registry_ListsMethodAndConfiguredHooks(t *testing.T) {
	// arrange
	callbacks := inventory.Callbacks{}

	// act
	registry, err := callbacks.Registry()

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		"after_colors_add",
		"after_colors_remove",
		"after_dimensions_remove",
		"before_active_change",
		"before_colors_add",
		"before_colors_remove",
		"before_stock_change",
		"stock_changed",
	}, registry.HookNames())
}

func Test_Widget_When_StockGoesNegative_Then_SaveFails(t *testing.T) {
	// arrange
	widget := inventory.NewWidget()
	require.NoError(t, widget.Set("stock", -3))

	// act
	err := saveWithoutDatabase(t, inventory.Callbacks{}, widget)

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrHookFailed)
	assert.ErrorIs(t, err, inventory.ErrNegativeStock)
	assert.True(t, widget.IsNew())
}

func Test_Widget_When_ActivatedFirstTime_Then_ReleasedAtIsStamped(t *testing.T) {
	// arrange
	widget := inventory.NewWidget()
	require.NoError(t, widget.Set("name", "Sprocket"))
	require.NoError(t, saveWithoutDatabase(t, inventory.Callbacks{}, widget))

	// act
	require.NoError(t, widget.Set("active", true))
	err := saveWithoutDatabase(t, inventory.Callbacks{}, widget)

	// assert
	require.NoError(t, err)
	assert.False(t, widget.Time("released_at").IsZero())
}

func Test_Widget_When_ColorIsNotInPalette_Then_SaveIsRejected(t *testing.T) {
	// arrange
	callbacks := inventory.Callbacks{Palette: []string{"red", "blue"}}
	widget := inventory.NewWidget()
	require.NoError(t, widget.Set("colors", []string{"red"}))
	require.NoError(t, saveWithoutDatabase(t, callbacks, widget))

	// act
	require.NoError(t, widget.Set("colors", []string{"red", "mauve"}))
	err := saveWithoutDatabase(t, callbacks, widget)

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrSaveRejected)
	assert.True(t, widget.IsDirty())
}

func Test_Widget_When_LastColorOfActiveWidgetIsRemoved_Then_SaveIsRejected(t *testing.T) {
	// arrange
	widget := inventory.NewWidget()
	require.NoError(t, widget.Set("active", true))
	require.NoError(t, widget.Set("colors", []string{"red"}))
	require.NoError(t, saveWithoutDatabase(t, inventory.Callbacks{}, widget))

	// act
	require.NoError(t, widget.Set("colors", []string{}))
	err := saveWithoutDatabase(t, inventory.Callbacks{}, widget)

	// assert
	var veto *attrcallbacks.VetoError
	require.ErrorAs(t, err, &veto)
	assert.Equal(t, "before_colors_remove", veto.Hook)
}

func Test_Widget_When_StockIsLow_Then_WarningIsLogged(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	callbacks := inventory.Callbacks{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	widget := inventory.NewWidget()
	require.NoError(t, widget.Set("name", "Sprocket"))
	require.NoError(t, widget.Set("stock", 20))
	require.NoError(t, saveWithoutDatabase(t, callbacks, widget))

	// act
	require.NoError(t, widget.Set("stock", inventory.LowStockThreshold))
	err := saveWithoutDatabase(t, callbacks, widget)

	// assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="widget stock is low" widget=Sprocket stock=5`)
}
