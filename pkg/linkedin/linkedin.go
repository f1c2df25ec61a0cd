// Package linkedin extracts LinkedIn profile URLs from free-form message text.
package linkedin

import (
	"regexp"
	"strings"
)

// profilePatterns are tried in order; the first pattern that matches wins.
// Wrapped forms come first because the wrapper marks exactly where the URL
// ends. Go's regexp has no lookahead, so the bare patterns capture the URL
// in group 1 and consume the terminator instead.
var profilePatterns = []*regexp.Regexp{
	// Pattern 1: angle-bracket wrapped, the form chat clients emit for links
	regexp.MustCompile(`(?i)(<https?://(?:www\.)?linkedin\.com/in/[^>]+>)`),
	// Pattern 2: parenthesis wrapped (Markdown link targets)
	regexp.MustCompile(`(?i)(\(https?://(?:www\.)?linkedin\.com/in/[^)]+\))`),
	// Pattern 3: bare profile URL terminated by whitespace, '>', end of
	// text, or a "LinkedIn" label glued onto the link
	regexp.MustCompile(`(?i)(https?://(?:www\.)?linkedin\.com/in/[\w.-]+/?)(?:[\s>]|$|linkedin)`),
	// Pattern 4: post share URL; query parameters are part of the link
	regexp.MustCompile(`(?i)(https?://(?:www\.)?linkedin\.com/posts/[^\s>)\]]+)`),
	// Pattern 5: schemeless profile URL
	regexp.MustCompile(`(?i)((?:www\.)?linkedin\.com/in/[\w.-]+/?)(?:[\s>]|$)`),
	// Pattern 6: schemeless legacy /pub/ URL, the loosest fallback
	regexp.MustCompile(`(?i)((?:www\.)?linkedin\.com/pub/[\w.-]+/?)(?:[\s>]|$)`),
}

// Extract returns the first LinkedIn profile URL found in text, normalized
// to a canonical lowercase form. It returns "" when no link is present.
func Extract(text string) string {
	if text == "" {
		return ""
	}

	for _, re := range profilePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanup(m[1])
		}
	}
	return ""
}

// Match returns true if the URL points at a LinkedIn profile or post.
func Match(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	return strings.Contains(lower, "linkedin.com/in/") ||
		strings.Contains(lower, "linkedin.com/pub/") ||
		strings.Contains(lower, "linkedin.com/posts/")
}

// cleanup normalizes a raw pattern match: wrapper and punctuation artifacts
// removed, scheme ensured, lowercased. Lowercasing makes extraction of an
// already extracted URL return the URL unchanged.
func cleanup(raw string) string {
	u := strings.TrimSpace(raw)

	// Strip the wrapping matched by patterns 1 and 2
	switch {
	case strings.HasPrefix(u, "<") && strings.HasSuffix(u, ">"):
		u = u[1 : len(u)-1]
	case strings.HasPrefix(u, "(") && strings.HasSuffix(u, ")"):
		u = u[1 : len(u)-1]
	}

	// Stray closers and sentence punctuation glued onto the link
	u = strings.TrimRight(u, ">)]")
	u = strings.TrimRight(u, ".,;!?")

	// Chat clients sometimes fold the link label into the URL text
	if strings.HasSuffix(strings.ToLower(u), "linkedin") {
		u = u[:len(u)-len("linkedin")]
	}
	u = strings.TrimSuffix(u, "This")

	// Collapse doubled trailing slashes from sloppy copy/paste
	for strings.HasSuffix(u, "//") {
		u = u[:len(u)-1]
	}

	if !strings.HasPrefix(strings.ToLower(u), "http") {
		u = "https://" + u
	}

	return strings.ToLower(u)
}
