package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/internal/naming"
)

// IDColumn is the primary key column every schema gets implicitly.
const IDColumn = "id"

var (
	ErrEmptySchemaName     = errors.New("schema name must not be empty")
	ErrDuplicateAttribute  = errors.New("attribute is declared twice")
	ErrReservedAttribute   = errors.New("attribute name is reserved")
	ErrUnknownAttribute    = errors.New("attribute is not declared in the schema")
	ErrInvalidValue        = errors.New("value does not match the attribute type")
	ErrInvalidAttribute    = errors.New("attribute name must be a lower snake_case identifier")
	ErrUnknownAttrTypeName = errors.New("unknown attribute type")
)

// AttributeType is the storage type of an attribute.
type AttributeType int

const (
	TypeText AttributeType = iota
	TypeInteger
	TypeBoolean
	TypeTimestamp
	TypeTextArray
	TypeTextMap
)

var attributeTypeNames = map[AttributeType]string{
	TypeText:      "text",
	TypeInteger:   "integer",
	TypeBoolean:   "boolean",
	TypeTimestamp: "timestamp",
	TypeTextArray: "text[]",
	TypeTextMap:   "text_map",
}

func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("AttributeType(%d)", int(t))
}

// ParseAttributeType is the inverse of AttributeType.String.
func ParseAttributeType(name string) (AttributeType, error) {
	for attributeType, typeName := range attributeTypeNames {
		if typeName == name {
			return attributeType, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAttrTypeName, name)
}

// Kind maps the storage type to the change kind used for hook dispatch.
func (t AttributeType) Kind() attrcallbacks.Kind {
	switch t {
	case TypeTextArray:
		return attrcallbacks.KindSequence
	case TypeTextMap:
		return attrcallbacks.KindMap
	default:
		return attrcallbacks.KindScalar
	}
}

// Attribute declares one column of a schema.
type Attribute struct {
	Name string
	Type AttributeType
}

func Text(name string) Attribute      { return Attribute{Name: name, Type: TypeText} }
func Integer(name string) Attribute   { return Attribute{Name: name, Type: TypeInteger} }
func Boolean(name string) Attribute   { return Attribute{Name: name, Type: TypeBoolean} }
func Timestamp(name string) Attribute { return Attribute{Name: name, Type: TypeTimestamp} }
func TextArray(name string) Attribute { return Attribute{Name: name, Type: TypeTextArray} }
func TextMap(name string) Attribute   { return Attribute{Name: name, Type: TypeTextMap} }

// Schema describes a record type: its name, the table it is stored in and its attributes in order.
type Schema struct {
	Name       string
	Table      string
	Attributes []Attribute
}

// NewSchema builds a Schema for the record type name. The table name is derived from it,
// "OrderItem" is stored in "order_items".
func NewSchema(name string, attributes ...Attribute) (Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Schema{}, ErrEmptySchemaName
	}

	seen := make(map[string]struct{}, len(attributes))

	for _, attribute := range attributes {
		if attribute.Name == IDColumn {
			return Schema{}, fmt.Errorf("%w: %q", ErrReservedAttribute, attribute.Name)
		}

		if !validAttributeName(attribute.Name) {
			return Schema{}, fmt.Errorf("%w: %q", ErrInvalidAttribute, attribute.Name)
		}

		if _, dup := seen[attribute.Name]; dup {
			return Schema{}, fmt.Errorf("%w: %q", ErrDuplicateAttribute, attribute.Name)
		}

		seen[attribute.Name] = struct{}{}
	}

	return Schema{
		Name:       name,
		Table:      naming.TableName(name),
		Attributes: append([]Attribute(nil), attributes...),
	}, nil
}

// MustSchema is like NewSchema but panics on error. Meant for package level schema declarations.
func MustSchema(name string, attributes ...Attribute) Schema {
	schema, err := NewSchema(name, attributes...)
	if err != nil {
		panic(err)
	}

	return schema
}

// Lookup returns the attribute declared under name.
func (s Schema) Lookup(name string) (Attribute, bool) {
	for _, attribute := range s.Attributes {
		if attribute.Name == name {
			return attribute, true
		}
	}

	return Attribute{}, false
}

// AttributeNames returns the declared attribute names in order.
func (s Schema) AttributeNames() []string {
	names := make([]string, len(s.Attributes))
	for i, attribute := range s.Attributes {
		names[i] = attribute.Name
	}

	return names
}

func validAttributeName(name string) bool {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}

	return true
}
