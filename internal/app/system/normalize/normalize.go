// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Email trims and lowercases an email address. ASCII "I" folds to "i" and
// the Turkish dotted "İ" folds to "i" as well.
func Email(s string) string {
	return cases.Lower(language.Und).String(strings.ReplaceAll(strings.TrimSpace(s), "İ", "i"))
}

// Name trims and collapses inner whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text trims surrounding whitespace from a free-text field
// (description, manager comment). Inner newlines are preserved.
func Text(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
