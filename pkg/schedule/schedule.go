// Package schedule runs the daily scan on an in-process cron.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/robfig/cron/v3"
)

// DefaultAt is the daily run time when none is configured.
const DefaultAt = "08:00"

var timeOfDay = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Scheduler fires a job once a day at a fixed local time.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	at     string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New schedules job to run daily at the given HH:MM local time.
func New(at string, job func(), opts ...Option) (*Scheduler, error) {
	hour, minute, err := parseTimeOfDay(at)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron:   cron.New(),
		logger: slog.Default(),
		at:     at,
	}
	for _, opt := range opts {
		opt(s)
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("add daily job: %w", err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is canceled, then waits
// for any in-flight job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "daily schedule started", "at", s.at)
	s.cron.Start()

	<-ctx.Done()

	s.logger.InfoContext(ctx, "daily schedule stopping")
	<-s.cron.Stop().Done()
}

func parseTimeOfDay(at string) (hour, minute int, err error) {
	m := timeOfDay.FindStringSubmatch(at)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", at)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}
