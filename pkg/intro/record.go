package intro

import "time"

// URLSource records where a member's profile link was discovered.
type URLSource string

// Profile link origins.
const (
	SourceNone    URLSource = ""
	SourceMessage URLSource = "message"
	SourceProfile URLSource = "profile"
)

// Record is one classified introduction, ready for rendering. A record is
// built from a single message; the profile resolver may later fill in
// ProfileURL, and always sets ProfileLookupAttempted whether or not it
// found anything.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Record struct {
	AuthorID         string    `json:"author_id"`
	AuthorUsername   string    `json:"author_username"`
	AuthorRealName   string    `json:"author_real_name"`
	FirstName        string    `json:"first_name"`
	ProfileURL       string    `json:"profile_url,omitempty"`
	ProfileURLSource URLSource `json:"profile_url_source,omitempty"`
	MessageText      string    `json:"message_text"`
	Permalink        string    `json:"permalink,omitempty"`
	PostedAt         time.Time `json:"posted_at"`

	// ProfileLookupAttempted is true once the profile fallback ran for
	// this author, regardless of outcome.
	ProfileLookupAttempted bool `json:"profile_lookup_attempted"`
}
