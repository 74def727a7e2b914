package utils

import "strings"

// SanitizeEmail normalizes an email address for storage and comparison
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
