// Package doorman scans a community channel for member introductions
// and assembles the daily welcome report. One scan fetches the recent
// channel messages, keeps the ones that read like a self-introduction,
// finds a LinkedIn profile link for each new member, and renders a
// personalized welcome message per introduction.
package doorman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/chat"
	"github.com/codeGROOVE-dev/doorman/pkg/intro"
	"github.com/codeGROOVE-dev/doorman/pkg/linkedin"
	"github.com/codeGROOVE-dev/doorman/pkg/report"
	"github.com/codeGROOVE-dev/doorman/pkg/resolver"
	"github.com/codeGROOVE-dev/doorman/pkg/sanitize"
)

const (
	// DefaultChannel is the channel scanned when none is configured.
	DefaultChannel = "intros"

	// DefaultSearchLimit caps how many messages one scan fetches.
	DefaultSearchLimit = 100
)

// ChatService is the remote surface one scan needs: message search for
// the fetch phase plus the lookup operations the profile resolver uses.
type ChatService interface {
	SearchMessages(ctx context.Context, query string, limit int) ([]chat.Message, error)
	resolver.LookupService
}

// Scanner runs the fetch, classify, resolve, render pipeline for one
// channel. Create one with New and reuse it across scans.
type Scanner struct {
	svc      ChatService
	res      *resolver.Resolver
	logger   *slog.Logger
	now      func() time.Time
	tmpl     intro.Template
	channel  string
	fallback string
	maxName  int
	limit    int
}

// Option configures a Scanner.
type Option func(*config)

//nolint:govet // fieldalignment: intentional layout for readability
type config struct {
	logger          *slog.Logger
	now             func() time.Time
	template        intro.Template
	channel         string
	fallbackName    string
	maxNameLength   int
	searchLimit     int
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
	outerTimeout    time.Duration
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithChannel sets the channel searched for introductions.
func WithChannel(name string) Option {
	return func(c *config) { c.channel = name }
}

// WithTemplate sets the welcome message template.
func WithTemplate(t intro.Template) Option {
	return func(c *config) { c.template = t }
}

// WithFallbackName sets the greeting name used when a member's profile
// yields no usable first name.
func WithFallbackName(name string) Option {
	return func(c *config) { c.fallbackName = name }
}

// WithMaxNameLength caps derived first names, in runes.
func WithMaxNameLength(n int) Option {
	return func(c *config) { c.maxNameLength = n }
}

// WithSearchLimit caps how many messages one scan fetches.
func WithSearchLimit(n int) Option {
	return func(c *config) { c.searchLimit = n }
}

// WithResolverTimeouts sets the profile resolver's per-step and overall
// deadlines. Zero values keep the resolver defaults.
func WithResolverTimeouts(primary, fallback, outer time.Duration) Option {
	return func(c *config) {
		c.primaryTimeout = primary
		c.fallbackTimeout = fallback
		c.outerTimeout = outer
	}
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New creates a Scanner over the given chat service.
func New(svc ChatService, opts ...Option) (*Scanner, error) {
	if svc == nil {
		return nil, errors.New("chat service is required")
	}

	cfg := &config{
		logger:        slog.Default(),
		now:           time.Now,
		channel:       DefaultChannel,
		fallbackName:  intro.DefaultFallbackName,
		maxNameLength: intro.DefaultMaxNameLength,
		searchLimit:   DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.channel == "" || sanitize.Clean(cfg.channel) != cfg.channel {
		return nil, fmt.Errorf("channel name %q contains unsafe characters", cfg.channel)
	}
	if cfg.searchLimit < 1 {
		return nil, fmt.Errorf("search limit %d out of range", cfg.searchLimit)
	}
	if cfg.fallbackName == "" {
		return nil, errors.New("fallback name is empty")
	}

	tmpl := cfg.template
	if tmpl.String() == "" {
		t, err := intro.NewTemplate(intro.DefaultTemplate)
		if err != nil {
			return nil, fmt.Errorf("default welcome template: %w", err)
		}
		tmpl = t
	}

	return &Scanner{
		svc:      svc,
		logger:   cfg.logger,
		now:      cfg.now,
		tmpl:     tmpl,
		channel:  cfg.channel,
		fallback: cfg.fallbackName,
		maxName:  cfg.maxNameLength,
		limit:    cfg.searchLimit,
		res: resolver.New(svc,
			resolver.WithLogger(cfg.logger),
			resolver.WithTimeouts(cfg.primaryTimeout, cfg.fallbackTimeout, cfg.outerTimeout)),
	}, nil
}

// Run scans the window [start, end) and builds the day's report. A zero
// end means now. Entries keep the order messages were fetched in. A
// failed fetch aborts the scan with no report; per-member profile
// lookups degrade instead of failing the run.
func (s *Scanner) Run(ctx context.Context, start, end time.Time) (*report.Report, error) {
	if end.IsZero() {
		end = s.now()
	}

	query := s.buildQuery(start)
	s.logger.InfoContext(ctx, "scanning for introductions",
		"channel", s.channel,
		"query", query,
		"window_start", start,
		"window_end", end)

	msgs, err := s.svc.SearchMessages(ctx, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch channel messages: %w", err)
	}

	records, pending, byAuthor := s.classify(ctx, msgs, start, end)

	for _, p := range pending {
		url := s.res.Resolve(ctx, p.id, p.username)
		for _, rec := range byAuthor[p.id] {
			rec.ProfileLookupAttempted = true
			if url != "" && rec.ProfileURL == "" {
				rec.ProfileURL = url
				rec.ProfileURLSource = intro.SourceProfile
			}
		}
	}

	rep := &report.Report{Start: start, End: end}
	for _, rec := range records {
		rep.Entries = append(rep.Entries, report.Entry{
			Record:  *rec,
			Welcome: s.tmpl.Render(rec.FirstName),
		})
		switch rec.ProfileURLSource {
		case intro.SourceMessage:
			rep.LinksFromMessage++
		case intro.SourceProfile:
			rep.LinksFromProfile++
		case intro.SourceNone:
		}
	}
	rep.Intros = len(rep.Entries)

	s.logger.InfoContext(ctx, "scan complete",
		"intros", rep.Intros,
		"links_from_message", rep.LinksFromMessage,
		"links_from_profile", rep.LinksFromProfile)
	return rep, nil
}

type pendingAuthor struct {
	id       string
	username string
}

// classify keeps the window's introduction messages as records and
// collects the authors that still need a profile lookup. An author is
// enqueued at most once no matter how many linkless intros they posted.
func (s *Scanner) classify(ctx context.Context, msgs []chat.Message, start, end time.Time) ([]*intro.Record, []pendingAuthor, map[string][]*intro.Record) {
	var records []*intro.Record
	var pending []pendingAuthor
	queued := make(map[string]bool)
	byAuthor := make(map[string][]*intro.Record)

	for _, m := range msgs {
		if m.PostedAt.Before(start) || !m.PostedAt.Before(end) {
			continue
		}
		if !intro.IsIntroduction(m.Text) {
			continue
		}

		rec := &intro.Record{
			AuthorID:       m.AuthorID,
			AuthorUsername: m.AuthorUsername,
			AuthorRealName: m.AuthorRealName,
			FirstName:      intro.FirstName(m.AuthorRealName, m.AuthorUsername, s.fallback, s.maxName),
			MessageText:    m.Text,
			Permalink:      m.Permalink,
			PostedAt:       m.PostedAt,
		}
		if url := linkedin.Extract(m.Text); url != "" {
			rec.ProfileURL = url
			rec.ProfileURLSource = intro.SourceMessage
		}

		records = append(records, rec)
		byAuthor[m.AuthorID] = append(byAuthor[m.AuthorID], rec)

		if rec.ProfileURL == "" && m.AuthorID != "" && !queued[m.AuthorID] {
			queued[m.AuthorID] = true
			pending = append(pending, pendingAuthor{id: m.AuthorID, username: m.AuthorUsername})
		}
	}

	s.logger.DebugContext(ctx, "classification done",
		"messages", len(msgs),
		"intros", len(records),
		"pending_lookups", len(pending))
	return records, pending, byAuthor
}

// buildQuery assembles the search expression. The backend's after:
// filter is date-granular and excludes the named day itself, so back up
// one day and let classify apply the precise window.
func (s *Scanner) buildQuery(start time.Time) string {
	return fmt.Sprintf("in:#%s after:%s",
		sanitize.Clean(s.channel),
		start.AddDate(0, 0, -1).Format("2006-01-02"))
}
