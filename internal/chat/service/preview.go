package service

import "strings"

func trimText(s string) string {
	return strings.TrimSpace(s)
}

// truncatePreview bounds a notification body to max runes, appending an
// ellipsis when the text was cut.
func truncatePreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
