package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/internal/naming"
)

func Test_ToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"Colors", "colors"},
		{"FirstName", "first_name"},
		{"HTTPStatus", "http_status"},
		{"UserID", "user_id"},
		{"Address2Line", "address2_line"},
		{"store", "store"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, naming.ToSnakeCase(tc.in))
		})
	}
}

func Test_TableName(t *testing.T) {
	assert.Equal(t, "widgets", naming.TableName("Widget"))
	assert.Equal(t, "order_items", naming.TableName("OrderItem"))
	assert.Equal(t, "people", naming.TableName("Person"))
}

func Test_QuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"widgets"`, naming.QuoteIdentifier("widgets"))
	assert.Equal(t, `"we""ird"`, naming.QuoteIdentifier(`we"ird`))
}
