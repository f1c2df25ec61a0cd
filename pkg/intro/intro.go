// Package intro classifies channel messages as self-introductions and
// renders the welcome message for each new member.
package intro

import (
	"strings"
	"unicode/utf8"
)

// Defaults for first-name derivation, overridable through configuration.
const (
	DefaultFallbackName  = "there"
	DefaultMaxNameLength = 50
)

// introKeywords mark a message as a likely self-introduction. Substring
// matching favors recall: a false positive costs one bounded profile
// lookup, a false negative loses a welcome.
var introKeywords = []string{
	"hi everyone",
	"hello everyone",
	"hey everyone",
	"hey all",
	"hi all",
	"i'm ",
	"my name is",
	"introduction",
	"nice to meet",
	"pleased to meet",
	"excited to be here",
	"happy to be here",
	"i am",
	"i have been",
	"based",
	"working",
	"fun fact",
}

// IsIntroduction reports whether the message text reads like a
// self-introduction.
func IsIntroduction(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range introKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FirstName derives a greeting name: the first whitespace-separated token
// of realName, the username when realName is blank, or fallback when both
// are missing. The result is truncated to maxLen runes.
func FirstName(realName, username, fallback string, maxLen int) string {
	name := fallback
	if fields := strings.Fields(realName); len(fields) > 0 {
		name = fields[0]
	} else if username != "" {
		name = username
	}

	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		name = string([]rune(name)[:maxLen])
	}
	return name
}
