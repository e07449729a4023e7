package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
)

var widgetSchema = model.MustSchema("Widget",
	model.Text("name"),
	model.Integer("stock"),
	model.Boolean("active"),
	model.Timestamp("released_at"),
	model.TextArray("colors"),
	model.TextMap("dimensions"),
)

func persistedWidget(t *testing.T, values map[string]any) *model.Model {
	t.Helper()

	m := model.New(widgetSchema)
	require.NoError(t, m.Load(uuid.New(), values))

	return m
}

func Test_NewSchema_When_NameIsGiven_Then_TableNameIsDerived(t *testing.T) {
	schema, err := model.NewSchema("OrderItem", model.Text("sku"))

	require.NoError(t, err)
	assert.Equal(t, "order_items", schema.Table)
	assert.Equal(t, []string{"sku"}, schema.AttributeNames())
}

func Test_NewSchema_When_DeclarationIsInvalid_Then_Error(t *testing.T) {
	tests := []struct {
		name       string
		schemaName string
		attributes []model.Attribute
		wantErr    error
	}{
		{name: "empty_name", schemaName: " ", wantErr: model.ErrEmptySchemaName},
		{name: "reserved_id", schemaName: "Widget", attributes: []model.Attribute{model.Text("id")}, wantErr: model.ErrReservedAttribute},
		{name: "duplicate", schemaName: "Widget", attributes: []model.Attribute{model.Text("a"), model.Integer("a")}, wantErr: model.ErrDuplicateAttribute},
		{name: "camel_case", schemaName: "Widget", attributes: []model.Attribute{model.Text("firstName")}, wantErr: model.ErrInvalidAttribute},
		{name: "leading_digit", schemaName: "Widget", attributes: []model.Attribute{model.Text("1st")}, wantErr: model.ErrInvalidAttribute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.NewSchema(tc.schemaName, tc.attributes...)

			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_ParseAttributeType_RoundTripsTheTypeName(t *testing.T) {
	for _, attributeType := range []model.AttributeType{
		model.TypeText, model.TypeInteger, model.TypeBoolean, model.TypeTimestamp, model.TypeTextArray, model.TypeTextMap,
	} {
		parsed, err := model.ParseAttributeType(attributeType.String())

		require.NoError(t, err)
		assert.Equal(t, attributeType, parsed)
	}

	_, err := model.ParseAttributeType("blob")
	assert.ErrorIs(t, err, model.ErrUnknownAttrTypeName)
}

func Test_Model_Set_When_ValueDoesNotFit_Then_ErrInvalidValue(t *testing.T) {
	m := model.New(widgetSchema)

	assert.ErrorIs(t, m.Set("name", 5), model.ErrInvalidValue)
	assert.ErrorIs(t, m.Set("colors", []any{"red", 1}), model.ErrInvalidValue)
	assert.ErrorIs(t, m.Set("dimensions", map[string]int{"a": 1}), model.ErrInvalidValue)
	assert.ErrorIs(t, m.Set("missing", "x"), model.ErrUnknownAttribute)
}

func Test_Model_Set_When_ValuesAreConvertible_Then_TheyAreNormalized(t *testing.T) {
	// arrange
	m := model.New(widgetSchema)
	released := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	// act
	require.NoError(t, m.Set("stock", 7))
	require.NoError(t, m.Set("colors", []any{"red"}))
	require.NoError(t, m.Set("dimensions", map[string]any{"h": "2"}))
	require.NoError(t, m.Set("released_at", released))

	// assert
	assert.Equal(t, int64(7), m.Int("stock"))
	assert.Equal(t, []string{"red"}, m.Strings("colors"))
	assert.Equal(t, map[string]string{"h": "2"}, m.StringMap("dimensions"))
	assert.Equal(t, time.UTC, m.Time("released_at").Location())
	assert.True(t, m.Time("released_at").Equal(released))
}

func Test_Model_When_New_Then_CreationChangesCoverNonNilValues(t *testing.T) {
	// arrange
	m := model.New(widgetSchema)
	require.NoError(t, m.Set("name", "Sprocket"))
	require.NoError(t, m.Set("active", false))
	require.NoError(t, m.Set("colors", []string{"red", "blue"}))

	// act
	changes := attrcallbacks.ChangesFor(m)

	// assert
	assert.True(t, m.IsNew())
	assert.Equal(t, uuid.Nil, m.ID())
	assert.Equal(t, []string{"name", "active", "colors"}, changes.Names())

	colors, _ := changes.Get("colors")
	assert.Equal(t, attrcallbacks.KindSequence, colors.Kind)
	assert.Nil(t, colors.Before)
}

func Test_Model_When_Persisted_Then_NoChangesArePending(t *testing.T) {
	// arrange
	m := model.New(widgetSchema)
	require.NoError(t, m.Set("name", "Sprocket"))
	id := uuid.New()

	// act
	m.MarkPersisted(id)

	// assert
	assert.False(t, m.IsNew())
	assert.False(t, m.IsDirty())
	assert.Equal(t, id, m.ID())
}

func Test_Model_When_SliceIsMutatedInPlace_Then_ChangeIsDetected(t *testing.T) {
	// arrange
	m := persistedWidget(t, map[string]any{"colors": []string{"red", "green"}})

	// act
	m.Strings("colors")[1] = "blue"

	// assert
	changes := m.PendingChanges()
	entry, ok := changes.Get("colors")
	require.True(t, ok)
	assert.Equal(t, []string{"red", "green"}, entry.Before)
	assert.Equal(t, []string{"red", "blue"}, entry.After)

	diff, err := attrcallbacks.DiffKind(entry.Kind, entry.Before, entry.After)
	require.NoError(t, err)
	assert.Equal(t, []attrcallbacks.Element{{Value: "blue"}}, diff.Added)
	assert.Equal(t, []attrcallbacks.Element{{Value: "green"}}, diff.Removed)
}

func Test_Model_When_MapIsMutatedInPlace_Then_ChangeIsDetected(t *testing.T) {
	// arrange
	m := persistedWidget(t, map[string]any{"dimensions": map[string]string{"a": "5"}})

	// act
	m.StringMap("dimensions")["a"] = "6"

	// assert
	entry, ok := m.PendingChanges().Get("dimensions")
	require.True(t, ok)
	assert.Equal(t, attrcallbacks.KindMap, entry.Kind)
	assert.Equal(t, map[string]string{"a": "5"}, entry.Before)
	assert.Equal(t, map[string]string{"a": "6"}, entry.After)
}

func Test_Model_When_ChangeEntryIsModified_Then_ModelIsUnaffected(t *testing.T) {
	// arrange
	m := persistedWidget(t, map[string]any{"colors": []string{"red"}})
	require.NoError(t, m.Set("colors", []string{"red", "blue"}))

	// act
	entry, _ := m.PendingChanges().Get("colors")
	entry.After.([]string)[0] = "tampered"
	entry.Before.([]string)[0] = "tampered"

	// assert
	assert.Equal(t, []string{"red", "blue"}, m.Strings("colors"))
	again, _ := m.PendingChanges().Get("colors")
	assert.Equal(t, []string{"red"}, again.Before)
}

func Test_Model_When_ValueIsSetBack_Then_NothingIsPending(t *testing.T) {
	m := persistedWidget(t, map[string]any{"name": "Sprocket", "stock": int64(3)})

	require.NoError(t, m.Set("name", "Cog"))
	require.NoError(t, m.Set("name", "Sprocket"))
	require.NoError(t, m.Set("stock", 3))

	assert.False(t, m.IsDirty())
}

func Test_Model_Load_When_ValueIsUnknown_Then_Error(t *testing.T) {
	m := model.New(widgetSchema)

	err := m.Load(uuid.New(), map[string]any{"weight": "3kg"})

	assert.ErrorIs(t, err, model.ErrUnknownAttribute)
	assert.True(t, m.IsNew())
}

func Test_Model_Values_ReturnsCopies(t *testing.T) {
	m := persistedWidget(t, map[string]any{"colors": []string{"red"}, "name": "Sprocket"})

	values := m.Values()
	values["colors"].([]string)[0] = "tampered"

	assert.Equal(t, []string{"red"}, m.Strings("colors"))
	assert.Equal(t, "Sprocket", values["name"])
}
