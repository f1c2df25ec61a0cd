// Package sanitize filters untrusted text before it reaches search
// queries, report files, or log output.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// maxQueryLen caps sanitized query arguments.
const maxQueryLen = 200

// unsafe matches every rune outside the search-query allowlist.
var unsafe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_:.,#]`)

// Clean strips runes outside the allowlist and caps the result at 200
// runes. Anything interpolated into a search query goes through here.
func Clean(s string) string {
	cleaned := unsafe.ReplaceAllString(s, "")
	if runes := []rune(cleaned); len(runes) > maxQueryLen {
		cleaned = string(runes[:maxQueryLen])
	}
	return cleaned
}

// StripControl removes control characters from report text. Newlines and
// tabs survive so message formatting is preserved.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// RedactToken masks a credential for logging, keeping just enough of both
// ends to identify which token was in play.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[redacted]"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
