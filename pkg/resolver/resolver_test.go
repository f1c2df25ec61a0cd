package resolver

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/chat"
)

type mockLookup struct {
	profileByID       func(ctx context.Context, userID string) (*chat.Profile, error)
	profileByUsername func(ctx context.Context, username string) (*chat.Profile, error)
	recentMessageFrom func(ctx context.Context, userID string) (*chat.Message, error)

	profileByIDCalls       int
	profileByUsernameCalls int
	recentMessageFromCalls int
}

func (m *mockLookup) ProfileByID(ctx context.Context, userID string) (*chat.Profile, error) {
	m.profileByIDCalls++
	if m.profileByID == nil {
		return nil, chat.ErrProfileNotFound
	}
	return m.profileByID(ctx, userID)
}

func (m *mockLookup) ProfileByUsername(ctx context.Context, username string) (*chat.Profile, error) {
	m.profileByUsernameCalls++
	if m.profileByUsername == nil {
		return nil, chat.ErrProfileNotFound
	}
	return m.profileByUsername(ctx, username)
}

func (m *mockLookup) RecentMessageFrom(ctx context.Context, userID string) (*chat.Message, error) {
	m.recentMessageFromCalls++
	if m.recentMessageFrom == nil {
		return nil, chat.ErrNoMessages
	}
	return m.recentMessageFrom(ctx, userID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestScanProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *chat.Profile
		want    string
	}{
		{"nil_profile", nil, ""},
		{"empty_profile", &chat.Profile{}, ""},
		{
			"status_text",
			&chat.Profile{StatusText: "https://linkedin.com/in/jane"},
			"https://linkedin.com/in/jane",
		},
		{
			"title_with_prose",
			&chat.Profile{Title: "PM | https://www.linkedin.com/in/pm-jane"},
			"https://www.linkedin.com/in/pm-jane",
		},
		{
			"custom_field_only",
			&chat.Profile{Custom: []chat.Field{{Label: "LinkedIn", Value: "linkedin.com/in/bobacme"}}},
			"https://linkedin.com/in/bobacme",
		},
		{
			"status_beats_title",
			&chat.Profile{
				StatusText: "https://linkedin.com/in/first",
				Title:      "https://linkedin.com/in/second",
			},
			"https://linkedin.com/in/first",
		},
		{
			"standard_beats_custom",
			&chat.Profile{
				Email:  "https://linkedin.com/in/standard",
				Custom: []chat.Field{{Label: "Website", Value: "https://linkedin.com/in/custom"}},
			},
			"https://linkedin.com/in/standard",
		},
		{
			"custom_order_respected",
			&chat.Profile{Custom: []chat.Field{
				{Label: "Website", Value: "https://example.com"},
				{Label: "LinkedIn", Value: "https://linkedin.com/in/second-field"},
			}},
			"https://linkedin.com/in/second-field",
		},
		{
			"no_link_anywhere",
			&chat.Profile{StatusText: "on vacation", Title: "Engineer", RealName: "Bob Jones"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScanProfile(tt.profile); got != tt.want {
				t.Errorf("ScanProfile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanProfileReduced(t *testing.T) {
	tests := []struct {
		name    string
		profile *chat.Profile
		want    string
	}{
		{"nil_profile", nil, ""},
		{
			"status_text",
			&chat.Profile{StatusText: "linkedin.com/in/statusy"},
			"https://linkedin.com/in/statusy",
		},
		{
			"display_name",
			&chat.Profile{DisplayName: "jane | linkedin.com/in/jane"},
			"https://linkedin.com/in/jane",
		},
		{
			"real_name",
			&chat.Profile{RealName: "https://linkedin.com/in/realjane"},
			"https://linkedin.com/in/realjane",
		},
		{
			"skype_not_scanned",
			&chat.Profile{Skype: "https://linkedin.com/in/sky"},
			"",
		},
		{
			"custom_not_scanned",
			&chat.Profile{Custom: []chat.Field{{Label: "LinkedIn", Value: "https://linkedin.com/in/custom"}}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScanProfileReduced(tt.profile); got != tt.want {
				t.Errorf("ScanProfileReduced() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePrimaryProfileHit(t *testing.T) {
	svc := &mockLookup{
		profileByID: func(_ context.Context, _ string) (*chat.Profile, error) {
			return &chat.Profile{StatusText: "https://linkedin.com/in/jane"}, nil
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	got := r.Resolve(context.Background(), "U123", "jane")
	if want := "https://linkedin.com/in/jane"; got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
	if svc.recentMessageFromCalls != 0 || svc.profileByUsernameCalls != 0 {
		t.Errorf("fallback lookups ran after a primary hit: recent=%d, username=%d",
			svc.recentMessageFromCalls, svc.profileByUsernameCalls)
	}
}

func TestResolveDisplayNameFallback(t *testing.T) {
	svc := &mockLookup{
		recentMessageFrom: func(_ context.Context, _ string) (*chat.Message, error) {
			return &chat.Message{AuthorUsername: "Jane | https://linkedin.com/in/JaneDoe"}, nil
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	// The display-name match is returned raw, case preserved.
	got := r.Resolve(context.Background(), "U123", "jane")
	if want := "https://linkedin.com/in/JaneDoe"; got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveDisplayNameWithoutLink(t *testing.T) {
	svc := &mockLookup{
		recentMessageFrom: func(_ context.Context, _ string) (*chat.Message, error) {
			return &chat.Message{AuthorUsername: "just jane"}, nil
		},
		profileByUsername: func(_ context.Context, _ string) (*chat.Profile, error) {
			return &chat.Profile{Title: "https://linkedin.com/in/via-directory"}, nil
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	got := r.Resolve(context.Background(), "U123", "jane")
	if want := "https://linkedin.com/in/via-directory"; got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveDirectoryFallback(t *testing.T) {
	svc := &mockLookup{
		profileByUsername: func(_ context.Context, username string) (*chat.Profile, error) {
			if username != "bob" {
				return nil, chat.ErrProfileNotFound
			}
			return &chat.Profile{DisplayName: "bob | linkedin.com/in/bobacme"}, nil
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	got := r.Resolve(context.Background(), "U456", "bob")
	if want := "https://linkedin.com/in/bobacme"; got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
	if svc.profileByUsernameCalls != 1 {
		t.Errorf("ProfileByUsername called %d times, want 1", svc.profileByUsernameCalls)
	}
}

func TestResolveSkipsDirectoryWithoutDistinctUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"username_empty", ""},
		{"username_equals_id", "U456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLookup{}
			r := New(svc, WithLogger(discardLogger()))

			if got := r.Resolve(context.Background(), "U456", tt.username); got != "" {
				t.Errorf("Resolve() = %q, want empty", got)
			}
			if svc.profileByUsernameCalls != 0 {
				t.Errorf("ProfileByUsername called %d times, want 0", svc.profileByUsernameCalls)
			}
		})
	}
}

func TestResolveAllStepsMiss(t *testing.T) {
	svc := &mockLookup{
		profileByID: func(_ context.Context, _ string) (*chat.Profile, error) {
			return nil, errors.New("backend exploded")
		},
		recentMessageFrom: func(_ context.Context, _ string) (*chat.Message, error) {
			return nil, chat.ErrNoMessages
		},
		profileByUsername: func(_ context.Context, _ string) (*chat.Profile, error) {
			return nil, chat.ErrProfileNotFound
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	if got := r.Resolve(context.Background(), "U789", "ghost"); got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
	if svc.profileByIDCalls != 1 || svc.recentMessageFromCalls != 1 || svc.profileByUsernameCalls != 1 {
		t.Errorf("call counts = (%d, %d, %d), want each step tried once",
			svc.profileByIDCalls, svc.recentMessageFromCalls, svc.profileByUsernameCalls)
	}
}

func TestResolveLinklessProfileFallsThrough(t *testing.T) {
	svc := &mockLookup{
		profileByID: func(_ context.Context, _ string) (*chat.Profile, error) {
			return &chat.Profile{Title: "no links here"}, nil
		},
		recentMessageFrom: func(_ context.Context, _ string) (*chat.Message, error) {
			return &chat.Message{AuthorUsername: "bob linkedin.com"}, nil
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	// Name mentions linkedin but carries no URL shape; step 3 has no
	// distinct username, so the whole chain misses.
	if got := r.Resolve(context.Background(), "U1", ""); got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
	if svc.recentMessageFromCalls != 1 {
		t.Errorf("RecentMessageFrom called %d times, want 1", svc.recentMessageFromCalls)
	}
}

func TestResolveReturnsWithinBudget(t *testing.T) {
	hang := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	svc := &mockLookup{
		profileByID: func(ctx context.Context, _ string) (*chat.Profile, error) {
			return nil, hang(ctx)
		},
		profileByUsername: func(ctx context.Context, _ string) (*chat.Profile, error) {
			return nil, hang(ctx)
		},
		recentMessageFrom: func(ctx context.Context, _ string) (*chat.Message, error) {
			return nil, hang(ctx)
		},
	}
	r := New(svc,
		WithLogger(discardLogger()),
		WithTimeouts(20*time.Millisecond, 20*time.Millisecond, 60*time.Millisecond))

	start := time.Now()
	got := r.Resolve(context.Background(), "U1", "stuck")
	elapsed := time.Since(start)

	if got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Resolve() took %v against hung lookups, want the outer budget honored", elapsed)
	}
}

func TestResolveHonorsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &mockLookup{
		profileByID: func(ctx context.Context, _ string) (*chat.Profile, error) {
			return nil, ctx.Err()
		},
	}
	r := New(svc, WithLogger(discardLogger()))

	if got := r.Resolve(ctx, "U1", "gone"); got != "" {
		t.Errorf("Resolve() = %q, want empty on canceled context", got)
	}
	if svc.recentMessageFromCalls != 0 {
		t.Errorf("RecentMessageFrom called %d times after cancellation, want 0", svc.recentMessageFromCalls)
	}
}
