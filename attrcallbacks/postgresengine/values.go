package postgresengine

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/model"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeValue turns a model value into something goqu renders as a SQL literal of the column type.
func encodeValue(attribute model.Attribute, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case string:
		if attribute.Type == model.TypeText {
			return v, nil
		}
	case int64:
		if attribute.Type == model.TypeInteger {
			return v, nil
		}
	case bool:
		if attribute.Type == model.TypeBoolean {
			return v, nil
		}
	case time.Time:
		if attribute.Type == model.TypeTimestamp {
			return v.UTC(), nil
		}
	case []string:
		if attribute.Type == model.TypeTextArray {
			literal, err := pq.StringArray(v).Value()
			if err != nil {
				return nil, errors.Join(ErrUnsupportedValue, err)
			}
			if literal == nil {
				literal = "{}"
			}

			return goqu.L(castTextArray, literal), nil
		}
	case map[string]string:
		if attribute.Type == model.TypeTextMap {
			encoded, err := jsonAPI.Marshal(v)
			if err != nil {
				return nil, errors.Join(ErrUnsupportedValue, err)
			}

			return goqu.L(castJsonb, string(encoded)), nil
		}
	}

	return nil, fmt.Errorf("%w: %q (%s) cannot hold %T", ErrUnsupportedValue, attribute.Name, attribute.Type, value)
}

// scanTarget returns a destination for the column of attribute, as selected by buildSelectQuery.
func scanTarget(attribute model.Attribute) any {
	switch attribute.Type {
	case model.TypeInteger:
		return &sql.NullInt64{}
	case model.TypeBoolean:
		return &sql.NullBool{}
	case model.TypeTimestamp:
		return &sql.NullTime{}
	default:
		return &sql.NullString{}
	}
}

// decodeValue converts a scanned destination back into a model value; SQL NULL becomes nil.
func decodeValue(attribute model.Attribute, target any) (any, error) {
	switch dest := target.(type) {
	case *sql.NullInt64:
		if dest.Valid {
			return dest.Int64, nil
		}
	case *sql.NullBool:
		if dest.Valid {
			return dest.Bool, nil
		}
	case *sql.NullTime:
		if dest.Valid {
			return dest.Time.UTC(), nil
		}
	case *sql.NullString:
		if dest.Valid {
			return decodeText(attribute, dest.String)
		}
	}

	return nil, nil
}

func decodeText(attribute model.Attribute, text string) (any, error) {
	switch attribute.Type {
	case model.TypeTextArray:
		var values pq.StringArray
		if err := values.Scan(text); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", attribute.Name, err)
		}

		return []string(values), nil
	case model.TypeTextMap:
		values := make(map[string]string)
		if err := jsonAPI.UnmarshalFromString(text, &values); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", attribute.Name, err)
		}

		return values, nil
	default:
		return text, nil
	}
}
