// Package strings normalizes operator-supplied identifiers such as admin emails.
package strings

import "strings"

// NormalizeEmail lowercases and trims an address for case-insensitive comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmails normalizes every address, dropping blanks and repeats.
// The first occurrence wins, so order is otherwise preserved.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		n := NormalizeEmail(e)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
