package util

import "strings"

// IsInternalSheet reports whether a tab name is a reserved system sheet
// (permissions, version log) rather than a company record.
func IsInternalSheet(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Truncate limits s to maxLen runes, with an ellipsis when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
