package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/chat"
)

// apiEnvelope is the shared ok/error preamble of every Web API response.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// err maps the envelope's error string to an APIError, attaching the
// matching sentinel where one exists.
func (e apiEnvelope) err(method string) error {
	reason := e.Error
	if reason == "" {
		reason = "unknown error"
	}
	apiErr := &APIError{StatusCode: http.StatusOK, Endpoint: method, Reason: reason}
	switch reason {
	case "ratelimited", "rate_limited":
		apiErr.Err = chat.ErrRateLimited
	case "user_not_found", "users_not_found", "profile_not_found":
		apiErr.Err = chat.ErrProfileNotFound
	}
	return apiErr
}

type searchResponse struct {
	apiEnvelope
	Messages struct {
		Matches []searchMatch `json:"matches"`
		Total   int           `json:"total"`
	} `json:"messages"`
}

type searchMatch struct {
	User      string `json:"user"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"ts"`
	Permalink string `json:"permalink"`
}

// SearchMessages runs a search query and returns the matches in the
// backend's sort order, newest first. Quota exhaustion surfaces as
// chat.ErrQuotaExhausted; the caller treats it as terminal for the batch.
func (c *Client) SearchMessages(ctx context.Context, query string, limit int) ([]chat.Message, error) {
	if limit < 1 {
		limit = 1
	}
	params := url.Values{
		"query":    {query},
		"sort":     {"timestamp"},
		"sort_dir": {"desc"},
		"count":    {strconv.Itoa(limit)},
	}

	c.logger.InfoContext(ctx, "searching messages", "query", query, "limit", limit)

	var resp searchResponse
	if err := c.call(ctx, "search.messages", params, &resp); err != nil {
		if errors.Is(err, chat.ErrRateLimited) {
			return nil, fmt.Errorf("search quota exhausted: %w", chat.ErrQuotaExhausted)
		}
		return nil, fmt.Errorf("search messages: %w", err)
	}
	if !resp.OK {
		err := resp.err("search.messages")
		if errors.Is(err, chat.ErrRateLimited) {
			return nil, fmt.Errorf("search quota exhausted: %w", chat.ErrQuotaExhausted)
		}
		return nil, fmt.Errorf("search messages: %w", err)
	}

	messages := make([]chat.Message, 0, len(resp.Messages.Matches))
	for _, m := range resp.Messages.Matches {
		posted, err := parseTimestamp(m.Timestamp)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping message with malformed timestamp",
				"ts", m.Timestamp, "author_id", m.User)
			continue
		}
		messages = append(messages, chat.Message{
			AuthorID:       m.User,
			AuthorUsername: m.Username,
			Text:           m.Text,
			Permalink:      m.Permalink,
			PostedAt:       posted,
		})
	}

	c.logger.DebugContext(ctx, "search complete",
		"matches", len(messages), "total", resp.Messages.Total)
	return messages, nil
}

// RecentMessageFrom returns the single most recent message authored by
// the given member ID, or chat.ErrNoMessages.
func (c *Client) RecentMessageFrom(ctx context.Context, userID string) (*chat.Message, error) {
	msgs, err := c.SearchMessages(ctx, fmt.Sprintf("from:<@%s>", userID), 1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("recent message for %s: %w", userID, chat.ErrNoMessages)
	}
	return &msgs[0], nil
}

type profileResponse struct {
	apiEnvelope
	Profile wireProfile `json:"profile"`
}

type wireProfile struct {
	StatusText            string     `json:"status_text"`
	Title                 string     `json:"title"`
	Phone                 string     `json:"phone"`
	Skype                 string     `json:"skype"`
	RealName              string     `json:"real_name"`
	RealNameNormalized    string     `json:"real_name_normalized"`
	DisplayName           string     `json:"display_name"`
	DisplayNameNormalized string     `json:"display_name_normalized"`
	Email                 string     `json:"email"`
	Fields                wireFields `json:"fields"`
}

type wireField struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Alt   string `json:"alt"`
}

// wireFields tolerates the API's habit of encoding an empty custom field
// set as an array instead of an object.
type wireFields map[string]wireField

func (f *wireFields) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*f = nil
		return nil
	}
	m := map[string]wireField{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*f = m
	return nil
}

// toProfile maps the wire shape onto chat.Profile. Custom fields arrive
// keyed by field ID; keys are sorted so scan order is stable across runs.
func (p wireProfile) toProfile() *chat.Profile {
	out := &chat.Profile{
		StatusText:            p.StatusText,
		Title:                 p.Title,
		Phone:                 p.Phone,
		Skype:                 p.Skype,
		RealNameNormalized:    p.RealNameNormalized,
		DisplayName:           p.DisplayName,
		DisplayNameNormalized: p.DisplayNameNormalized,
		RealName:              p.RealName,
		Email:                 p.Email,
	}
	for _, key := range slices.Sorted(maps.Keys(p.Fields)) {
		f := p.Fields[key]
		if f.Value == "" {
			continue
		}
		out.Custom = append(out.Custom, chat.Field{Label: f.Label, Value: f.Value})
	}
	return out
}

// ProfileByID fetches a member's full profile field set.
func (c *Client) ProfileByID(ctx context.Context, userID string) (*chat.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("profile by id: %w", chat.ErrProfileNotFound)
	}

	var resp profileResponse
	if err := c.call(ctx, "users.profile.get", url.Values{"user": {userID}}, &resp); err != nil {
		return nil, fmt.Errorf("profile %s: %w", userID, err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("profile %s: %w", userID, resp.err("users.profile.get"))
	}
	return resp.Profile.toProfile(), nil
}

type membersResponse struct {
	apiEnvelope
	Members          []wireMember `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type wireMember struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	Profile struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
	} `json:"profile"`
}

// ProfileByUsername scans the member directory for a handle or display
// name match and fetches that member's full profile. The scan reads at
// most maxDirectoryPages pages before giving up.
func (c *Client) ProfileByUsername(ctx context.Context, username string) (*chat.Profile, error) {
	if username == "" {
		return nil, fmt.Errorf("profile by username: %w", chat.ErrProfileNotFound)
	}
	want := strings.ToLower(username)

	cursor := ""
	for page := 0; page < maxDirectoryPages; page++ {
		params := url.Values{"limit": {strconv.Itoa(directoryPageSize)}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp membersResponse
		if err := c.call(ctx, "users.list", params, &resp); err != nil {
			return nil, fmt.Errorf("member directory page %d: %w", page, err)
		}
		if !resp.OK {
			return nil, fmt.Errorf("member directory page %d: %w", page, resp.err("users.list"))
		}

		for _, m := range resp.Members {
			if m.Deleted {
				continue
			}
			if strings.ToLower(m.Name) == want || strings.ToLower(m.Profile.DisplayName) == want {
				c.logger.DebugContext(ctx, "member directory match", "username", username, "user_id", m.ID)
				return c.ProfileByID(ctx, m.ID)
			}
		}

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			break
		}
	}
	return nil, fmt.Errorf("member %q not in directory: %w", username, chat.ErrProfileNotFound)
}

// parseTimestamp converts a wire ts value ("1726531200.000300") to a UTC
// time. The fraction is parsed digit-wise to avoid float rounding.
func parseTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse ts %q: %w", ts, err)
	}

	var nsec int64
	if fracPart != "" {
		const digits = 9
		if len(fracPart) > digits {
			fracPart = fracPart[:digits]
		}
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse ts %q: %w", ts, err)
		}
		for i := len(fracPart); i < digits; i++ {
			frac *= 10
		}
		nsec = frac
	}
	return time.Unix(sec, nsec).UTC(), nil
}
