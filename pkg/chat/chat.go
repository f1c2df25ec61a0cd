// Package chat defines the common types for channel message scanning and
// member profile lookups.
package chat

import (
	"errors"
	"time"
)

// Common errors returned by chat service adapters.
var (
	ErrNoMessages      = errors.New("no messages found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrQuotaExhausted  = errors.New("search quota exhausted")
	ErrRateLimited     = errors.New("rate limited")
)

// Message is a single channel message as returned by a search.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Message struct {
	AuthorID       string `json:"author_id,omitempty"`        // Workspace-unique member ID (e.g. "U0123ABCD")
	AuthorUsername string `json:"author_username,omitempty"`  // Handle/username (without @ prefix)
	AuthorRealName string `json:"author_real_name,omitempty"` // Full name as shown in the workspace
	Text           string `json:"text,omitempty"`             // Message body, raw markup included
	Permalink      string `json:"permalink,omitempty"`        // Canonical link to the message

	PostedAt time.Time `json:"posted_at"` // Posting time
}

// Field is one custom profile entry, label and value as the member entered them.
type Field struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}

// Profile is the field set attached to a workspace member's account.
// It is fetched per request; callers must not cache or persist it.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Profile struct {
	StatusText            string `json:"status_text,omitempty"`
	Title                 string `json:"title,omitempty"`
	Phone                 string `json:"phone,omitempty"`
	Skype                 string `json:"skype,omitempty"`
	RealNameNormalized    string `json:"real_name_normalized,omitempty"`
	DisplayName           string `json:"display_name,omitempty"`
	DisplayNameNormalized string `json:"display_name_normalized,omitempty"`
	RealName              string `json:"real_name,omitempty"`
	Email                 string `json:"email,omitempty"`

	// Custom holds workspace-defined fields in their declared order.
	Custom []Field `json:"fields,omitempty"`
}

// StandardFields returns the built-in profile fields as labeled values in
// scan priority order. Custom fields are not included.
func (p *Profile) StandardFields() []Field {
	return []Field{
		{Label: "status_text", Value: p.StatusText},
		{Label: "title", Value: p.Title},
		{Label: "phone", Value: p.Phone},
		{Label: "skype", Value: p.Skype},
		{Label: "real_name_normalized", Value: p.RealNameNormalized},
		{Label: "display_name", Value: p.DisplayName},
		{Label: "display_name_normalized", Value: p.DisplayNameNormalized},
		{Label: "real_name", Value: p.RealName},
		{Label: "email", Value: p.Email},
	}
}
