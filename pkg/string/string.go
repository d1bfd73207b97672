// Package string holds the small text helpers shared by request decoding and validation.
package string

import (
	"strings"
	"unicode"
)

// TrimStrings trims surrounding whitespace from each form value in place.
// Declaration facts never pass through here; they are hashed exactly as submitted.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// IsSpace reports whether r is whitespace or a line terminator as browsers trim
// form input: the Unicode White_Space set without U+0085, plus U+FEFF.
func IsSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// TrimSpace trims leading and trailing runes matching IsSpace. Comparisons of
// declared facts use it so a client-side trim and a server-side trim agree.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// ToSnakeCase turns a Go field name into the snake_case key used in error
// payloads, so "PropertyTitle" becomes "property_title" and "OwnerID" becomes "owner_id".
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
