package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/chat"
)

// Default lookup deadlines. The outer budget bounds the whole chain; the
// step budgets bound individual remote calls within it.
const (
	DefaultPrimaryTimeout  = 30 * time.Second
	DefaultFallbackTimeout = 45 * time.Second
	DefaultOuterTimeout    = 60 * time.Second
)

// LookupService is the remote surface the resolver needs. Implementations
// must honor context cancellation on every call.
type LookupService interface {
	ProfileByID(ctx context.Context, userID string) (*chat.Profile, error)
	ProfileByUsername(ctx context.Context, username string) (*chat.Profile, error)
	RecentMessageFrom(ctx context.Context, userID string) (*chat.Message, error)
}

// looseLink matches a link-shaped substring inside a display name. The
// raw match is returned as-is.
var looseLink = regexp.MustCompile(`(?i)https?://\S*linkedin\S*`)

// Resolver runs the three-step profile link chain under one deadline.
type Resolver struct {
	svc             LookupService
	logger          *slog.Logger
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
	outerTimeout    time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithTimeouts overrides the step and outer deadlines. Zero values keep
// the defaults.
func WithTimeouts(primary, fallback, outer time.Duration) Option {
	return func(r *Resolver) {
		if primary > 0 {
			r.primaryTimeout = primary
		}
		if fallback > 0 {
			r.fallbackTimeout = fallback
		}
		if outer > 0 {
			r.outerTimeout = outer
		}
	}
}

// New returns a Resolver backed by svc.
func New(svc LookupService, opts ...Option) *Resolver {
	r := &Resolver{
		svc:             svc,
		logger:          slog.Default(),
		primaryTimeout:  DefaultPrimaryTimeout,
		fallbackTimeout: DefaultFallbackTimeout,
		outerTimeout:    DefaultOuterTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the member's LinkedIn URL, or "" when no step finds
// one. It always returns within the outer timeout, even against a wedged
// remote: each step runs under its own deadline derived from the shared
// outer context.
//
// Step 1 fetches the full profile by member ID and scans every field.
// Step 2 pulls the member's most recent message and checks whether the
// display name itself embeds a link. Step 3, when a distinct username is
// known, resolves it through the member directory and scans the reduced
// field set. Remote failures are logged and treated as a miss at that
// step, never surfaced.
func (r *Resolver) Resolve(ctx context.Context, userID, username string) (url string) {
	ctx, cancel := context.WithTimeout(ctx, r.outerTimeout)
	defer cancel()

	step := "none"
	defer func() {
		r.logger.InfoContext(ctx, "profile link resolution finished",
			"user_id", userID, "step", step, "found", url != "")
	}()

	// Step 1: full profile by member ID
	if p := r.profileByID(ctx, userID); p != nil {
		if url = ScanProfile(p); url != "" {
			step = "profile"
			return url
		}
	}
	if ctx.Err() != nil {
		return ""
	}

	// Step 2: link folded into the author's display name
	if url = r.displayNameLink(ctx, userID); url != "" {
		step = "display_name"
		return url
	}
	if ctx.Err() != nil {
		return ""
	}

	// Step 3: member directory by username
	if username != "" && username != userID {
		if p := r.profileByUsername(ctx, username); p != nil {
			if url = ScanProfileReduced(p); url != "" {
				step = "directory"
				return url
			}
		}
	}
	return ""
}

func (r *Resolver) profileByID(ctx context.Context, userID string) *chat.Profile {
	ctx, cancel := context.WithTimeout(ctx, r.primaryTimeout)
	defer cancel()

	p, err := r.svc.ProfileByID(ctx, userID)
	if err != nil {
		r.logger.DebugContext(ctx, "profile lookup by id failed", "user_id", userID, "error", err)
		return nil
	}
	return p
}

// displayNameLink covers members who put the link in the display name
// itself. The most recent message carries the name as the search backend
// rendered it.
func (r *Resolver) displayNameLink(ctx context.Context, userID string) string {
	msg, err := r.svc.RecentMessageFrom(ctx, userID)
	if err != nil {
		r.logger.DebugContext(ctx, "recent message lookup failed", "user_id", userID, "error", err)
		return ""
	}
	if !strings.Contains(strings.ToLower(msg.AuthorUsername), "linkedin") {
		return ""
	}
	return looseLink.FindString(msg.AuthorUsername)
}

func (r *Resolver) profileByUsername(ctx context.Context, username string) *chat.Profile {
	ctx, cancel := context.WithTimeout(ctx, r.fallbackTimeout)
	defer cancel()

	p, err := r.svc.ProfileByUsername(ctx, username)
	if err != nil {
		r.logger.DebugContext(ctx, "profile lookup by username failed", "username", username, "error", err)
		return nil
	}
	return p
}
