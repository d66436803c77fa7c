package textutil

import "strings"

// reservedFileChars cannot appear in a file name on at least one of the
// platforms the exports are copied to.
const reservedFileChars = `/\:*?"<>|`

// SanitizeFileName makes name safe to use as a single path element.
// Reserved characters become '-' and control characters are dropped.
// Surrounding spaces and dots are trimmed.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(reservedFileChars, r):
			return '-'
		}
		return r
	}, name)
	return strings.Trim(cleaned, " .")
}
