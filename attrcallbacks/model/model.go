package model

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// Entity is a record that is backed by a Model. Types embedding *Model satisfy it.
type Entity interface {
	attrcallbacks.Record
	Base() *Model
}

// Model holds the attribute values of one record and the values last persisted for it.
// It is not safe for concurrent mutation.
type Model struct {
	schema    Schema
	id        uuid.UUID
	persisted bool
	values    map[string]any
	snapshot  map[string]any
}

// New returns an unsaved Model for schema with all attributes nil.
func New(schema Schema) *Model {
	return &Model{
		schema:   schema,
		values:   make(map[string]any, len(schema.Attributes)),
		snapshot: make(map[string]any, len(schema.Attributes)),
	}
}

// Base returns m, so that types embedding *Model implement Entity.
func (m *Model) Base() *Model {
	return m
}

// Schema returns the schema the model was built for.
func (m *Model) Schema() Schema {
	return m.schema
}

// ID returns the primary key; uuid.Nil until the model was persisted.
func (m *Model) ID() uuid.UUID {
	return m.id
}

// IsNew reports whether the model has not been persisted yet.
func (m *Model) IsNew() bool {
	return !m.persisted
}

// AttributeNames returns the schema's attribute names in declaration order.
func (m *Model) AttributeNames() []string {
	return m.schema.AttributeNames()
}

// Attribute returns the current value of a declared attribute.
func (m *Model) Attribute(name string) (any, bool) {
	if _, ok := m.schema.Lookup(name); !ok {
		return nil, false
	}

	return m.values[name], true
}

// AttributeKind returns the declared change kind of an attribute.
func (m *Model) AttributeKind(name string) (attrcallbacks.Kind, bool) {
	attribute, ok := m.schema.Lookup(name)
	if !ok {
		return attrcallbacks.KindScalar, false
	}

	return attribute.Type.Kind(), true
}

// Get returns the current value of name, or nil.
func (m *Model) Get(name string) any {
	return m.values[name]
}

// Set assigns a value to a declared attribute. Integers of any size are stored as int64.
// nil clears the attribute.
func (m *Model) Set(name string, value any) error {
	attribute, ok := m.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrUnknownAttribute, name, m.schema.Name)
	}

	normalized, err := normalize(attribute, value)
	if err != nil {
		return err
	}

	m.values[name] = normalized

	return nil
}

// Text returns the value of a text attribute, "" when unset.
func (m *Model) Text(name string) string {
	s, _ := m.values[name].(string)
	return s
}

// Int returns the value of an integer attribute, 0 when unset.
func (m *Model) Int(name string) int64 {
	i, _ := m.values[name].(int64)
	return i
}

// Bool returns the value of a boolean attribute, false when unset.
func (m *Model) Bool(name string) bool {
	b, _ := m.values[name].(bool)
	return b
}

// Time returns the value of a timestamp attribute, the zero time when unset.
func (m *Model) Time(name string) time.Time {
	t, _ := m.values[name].(time.Time)
	return t
}

// Strings returns the stored slice of a text array attribute. Writing to its elements changes the model.
func (m *Model) Strings(name string) []string {
	s, _ := m.values[name].([]string)
	return s
}

// StringMap returns the stored map of a text map attribute. Writing to it changes the model.
// An unset map attribute is initialized to an empty map first.
func (m *Model) StringMap(name string) map[string]string {
	if attribute, ok := m.schema.Lookup(name); !ok || attribute.Type != TypeTextMap {
		return nil
	}

	sm, _ := m.values[name].(map[string]string)
	if sm == nil {
		sm = make(map[string]string)
		m.values[name] = sm
	}

	return sm
}

// PendingChanges compares the current values with the last persisted ones. Entries carry the
// declared kind and deep copies of both sides.
func (m *Model) PendingChanges() attrcallbacks.ChangeSet {
	var changes attrcallbacks.ChangeSet

	for _, attribute := range m.schema.Attributes {
		before, after := m.snapshot[attribute.Name], m.values[attribute.Name]
		if reflect.DeepEqual(before, after) {
			continue
		}

		changes.AddWithKind(attribute.Name, attribute.Type.Kind(), deepCopy(before), deepCopy(after))
	}

	return changes
}

// IsDirty reports whether any attribute differs from the last persisted value.
func (m *Model) IsDirty() bool {
	return !m.PendingChanges().IsEmpty()
}

// MarkPersisted records a successful save: the model takes id and the current values become the
// new baseline for change detection.
func (m *Model) MarkPersisted(id uuid.UUID) {
	m.id = id
	m.persisted = true
	m.snapshot = snapshotOf(m.values)
}

// Load replaces all values with values read from storage and marks the model as persisted.
func (m *Model) Load(id uuid.UUID, values map[string]any) error {
	loaded := make(map[string]any, len(values))

	for name, value := range values {
		attribute, ok := m.schema.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q on %s", ErrUnknownAttribute, name, m.schema.Name)
		}

		normalized, err := normalize(attribute, value)
		if err != nil {
			return err
		}

		loaded[name] = normalized
	}

	m.values = loaded
	m.MarkPersisted(id)

	return nil
}

// Values returns a deep copy of the current values of all set attributes.
func (m *Model) Values() map[string]any {
	return snapshotOf(m.values)
}

func snapshotOf(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, value := range values {
		if value != nil {
			out[name] = deepCopy(value)
		}
	}

	return out
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v)
	case map[string]string:
		return maps.Clone(v)
	default:
		return v
	}
}

func normalize(attribute Attribute, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	invalid := func() (any, error) {
		return nil, fmt.Errorf("%w: %q is %s, got %T", ErrInvalidValue, attribute.Name, attribute.Type, value)
	}

	switch attribute.Type {
	case TypeText:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeInteger:
		switch i := value.(type) {
		case int:
			return int64(i), nil
		case int32:
			return int64(i), nil
		case int64:
			return i, nil
		}
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypeTimestamp:
		if t, ok := value.(time.Time); ok {
			return t.UTC(), nil
		}
	case TypeTextArray:
		switch s := value.(type) {
		case []string:
			if s == nil {
				return nil, nil
			}
			return s, nil
		case []any:
			return stringsFromAny(attribute, s)
		}
	case TypeTextMap:
		switch sm := value.(type) {
		case map[string]string:
			if sm == nil {
				return nil, nil
			}
			return sm, nil
		case map[string]any:
			return stringMapFromAny(attribute, sm)
		}
	}

	return invalid()
}

func stringsFromAny(attribute Attribute, values []any) ([]string, error) {
	out := make([]string, len(values))
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q element %d is %T", ErrInvalidValue, attribute.Name, i, value)
		}
		out[i] = s
	}

	return out, nil
}

func stringMapFromAny(attribute Attribute, values map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for key, value := range values {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q key %q is %T", ErrInvalidValue, attribute.Name, key, value)
		}
		out[key] = s
	}

	return out, nil
}
