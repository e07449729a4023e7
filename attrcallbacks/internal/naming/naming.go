// Package naming converts between Go identifiers and the snake_case names used for attributes,
// hooks and SQL identifiers.
package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// ToSnakeCase converts a CamelCase identifier into snake_case, keeping acronyms together
// (e.g. "HTTPStatus" becomes "http_status").
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TableName derives a table name from a model name: snake_case, last word pluralized.
func TableName(modelName string) string {
	return inflection.Plural(ToSnakeCase(strings.TrimSpace(modelName)))
}

// QuoteIdentifier renders a single SQL identifier part with double quotes.
func QuoteIdentifier(part string) string {
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}
