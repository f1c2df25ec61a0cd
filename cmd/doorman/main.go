// Command doorman scans a community channel for member introductions and
// writes the daily welcome report.
//
// Usage:
//
//	doorman                     # scan since the last run, write today's report
//	doorman -since 48h          # rescan the last two days
//	doorman -daemon -at 08:00   # keep running, scanning every morning
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/config"
	"github.com/codeGROOVE-dev/doorman/pkg/doorman"
	"github.com/codeGROOVE-dev/doorman/pkg/intro"
	"github.com/codeGROOVE-dev/doorman/pkg/report"
	"github.com/codeGROOVE-dev/doorman/pkg/schedule"
	"github.com/codeGROOVE-dev/doorman/pkg/slack"
	"github.com/codeGROOVE-dev/doorman/pkg/state"
)

const firstRunWindow = 24 * time.Hour

func main() {
	channel := flag.String("channel", "", "channel to scan (overrides SLACK_CHANNEL)")
	since := flag.Duration("since", 0, "scan this far back instead of resuming from the last run")
	limit := flag.Int("limit", 0, "maximum messages fetched per scan (overrides SLACK_SEARCH_LIMIT)")
	output := flag.String("output", "", "report directory (overrides OUTPUT_DIRECTORY)")
	statePath := flag.String("state", "", "path of the last-scan marker file")
	daemon := flag.Bool("daemon", false, "keep running and scan once a day")
	at := flag.String("at", schedule.DefaultAt, "daily scan time in 24h HH:MM form (with -daemon)")
	debug := flag.Bool("debug", false, "enable debug logging")
	verbose := flag.Bool("v", false, "verbose logging (same as -debug)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *channel != "" {
		cfg.Channel = *channel
	}
	if *limit > 0 {
		cfg.SearchLimit = *limit
	}
	if *output != "" {
		cfg.OutputDirectory = *output
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logLevel := cfg.LogLevel
	if *debug || *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := slack.New(ctx, cfg.Token,
		slack.WithLogger(logger),
		slack.WithRateLimit(cfg.RateLimitPerMinute, cfg.BurstLimit))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}

	tmpl, err := intro.NewTemplate(cfg.WelcomeTemplate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scanner, err := doorman.New(client,
		doorman.WithLogger(logger),
		doorman.WithChannel(cfg.Channel),
		doorman.WithTemplate(tmpl),
		doorman.WithFallbackName(cfg.FallbackName),
		doorman.WithMaxNameLength(cfg.MaxNameLength),
		doorman.WithSearchLimit(cfg.SearchLimit),
		doorman.WithResolverTimeouts(cfg.ProfileTimeout, cfg.FallbackTimeout, cfg.SafeTimeout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	writer := report.NewWriter(cfg.OutputDirectory, cfg.FilenameTemplate, logger)

	marker := *statePath
	if marker == "" {
		marker = filepath.Join(cfg.OutputDirectory, "last_check.txt")
	}
	store := state.NewStore(marker)

	scan := func(ctx context.Context) error {
		end := time.Now().UTC()
		start := scanStart(ctx, store, *since, end, logger)

		rep, err := scanner.Run(ctx, start, end)
		if err != nil {
			return err
		}

		path, err := writer.Write(ctx, rep, end)
		if err != nil {
			return err
		}

		if err := store.SetLastCheck(end); err != nil {
			logger.WarnContext(ctx, "failed to record scan time, the next run will rescan",
				"path", store.Path(), "error", err)
		}

		return outputJSON(rep.Summarize(path))
	}

	if !*daemon {
		if err := scan(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sched, err := schedule.New(*at, func() {
		if err := scan(ctx); err != nil {
			logger.Error("scheduled scan failed", "error", err)
		}
	}, schedule.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sched.Run(ctx)
}

// scanStart picks the window start: an explicit -since duration wins,
// then the last-scan marker, then one day back on a first run.
func scanStart(ctx context.Context, store *state.Store, since time.Duration, end time.Time, logger *slog.Logger) time.Time {
	if since > 0 {
		return end.Add(-since)
	}
	last, err := store.LastCheck()
	if err != nil {
		logger.WarnContext(ctx, "unreadable last-scan marker, rescanning one day",
			"path", store.Path(), "error", err)
		return end.Add(-firstRunWindow)
	}
	if last.IsZero() {
		logger.InfoContext(ctx, "no previous scan recorded, scanning one day back")
		return end.Add(-firstRunWindow)
	}
	return last
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
