// Package security sanitizes and validates user-supplied input before it is
// persisted or rendered.
package security

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Field length limits, in runes.
const (
	MaxNameLength    = 100
	MaxTitleLength   = 200
	MaxShortText     = 500
	MaxNoteLength    = 2000
	MaxContentLength = 100000
	MaxURLLength     = 2048
	MaxEmailLength   = 254
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// SanitizeText strips all markup and control characters, trims surrounding
// whitespace and truncates the result to maxLen runes. maxLen <= 0 disables truncation.
func SanitizeText(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if maxLen > 0 {
		s = Truncate(s, maxLen)
	}
	return s
}

// SanitizeHTML keeps safe formatting markup and removes scripts, event
// handlers and other active content.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

// Truncate cuts s to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxLen]))
}
