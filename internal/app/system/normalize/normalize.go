// Package normalize cleans user-supplied identifiers before they are stored or queried.
package normalize

import "strings"

// Email trims and lowercases an email address. Users are keyed by email,
// so every store lookup goes through this.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and keeps case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases a status value (book, order or application).
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query-string value and keeps case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
