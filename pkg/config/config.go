// Package config loads doorman settings from the environment with
// fail-fast validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/doorman/pkg/doorman"
	"github.com/codeGROOVE-dev/doorman/pkg/intro"
	"github.com/codeGROOVE-dev/doorman/pkg/report"
	"github.com/codeGROOVE-dev/doorman/pkg/resolver"
	"github.com/codeGROOVE-dev/doorman/pkg/slack"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultChannel         = doorman.DefaultChannel
	DefaultSearchLimit     = doorman.DefaultSearchLimit
	DefaultWelcomeTemplate = intro.DefaultTemplate
)

var (
	tokenPattern     = regexp.MustCompile(`^xox[bp]-[A-Za-z0-9-]+$`)
	channelPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,79}$`)
	channelIDPattern = regexp.MustCompile(`^C[A-Z0-9]{8,}$`)
)

// Config carries every runtime setting. It is passed down by parameter;
// nothing reads the environment after Load returns.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Config struct {
	Token     string
	Channel   string
	ChannelID string

	SearchLimit     int
	ProfileTimeout  time.Duration
	FallbackTimeout time.Duration
	SafeTimeout     time.Duration

	RateLimitPerMinute int
	BurstLimit         int

	OutputDirectory  string
	FilenameTemplate string
	WelcomeTemplate  string
	FallbackName     string
	MaxNameLength    int

	LogLevel slog.Level
}

// Load reads the environment after a best-effort .env autoload, then
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env file is fine

	cfg := &Config{
		Token:            os.Getenv("SLACK_TOKEN"),
		Channel:          getenv("SLACK_CHANNEL", DefaultChannel),
		ChannelID:        os.Getenv("SLACK_CHANNEL_ID"),
		OutputDirectory:  getenv("OUTPUT_DIRECTORY", report.DefaultDirectory),
		FilenameTemplate: getenv("FILENAME_TEMPLATE", report.DefaultFilenameTemplate),
		WelcomeTemplate:  getenv("WELCOME_MESSAGE_TEMPLATE", DefaultWelcomeTemplate),
		FallbackName:     getenv("FALLBACK_NAME", intro.DefaultFallbackName),
	}

	var err error
	if cfg.SearchLimit, err = getint("SLACK_SEARCH_LIMIT", DefaultSearchLimit); err != nil {
		return nil, err
	}
	if cfg.ProfileTimeout, err = getdur("SLACK_PROFILE_TIMEOUT", resolver.DefaultPrimaryTimeout); err != nil {
		return nil, err
	}
	if cfg.FallbackTimeout, err = getdur("SLACK_FALLBACK_TIMEOUT", resolver.DefaultFallbackTimeout); err != nil {
		return nil, err
	}
	if cfg.SafeTimeout, err = getdur("SLACK_SAFE_TIMEOUT", resolver.DefaultOuterTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getint("SLACK_API_RATE_LIMIT", slack.DefaultRateLimitPerMinute); err != nil {
		return nil, err
	}
	if cfg.BurstLimit, err = getint("SLACK_API_BURST_LIMIT", slack.DefaultBurstLimit); err != nil {
		return nil, err
	}
	if cfg.MaxNameLength, err = getint("MAX_NAME_LENGTH", intro.DefaultMaxNameLength); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = getlevel("LOG_LEVEL", slog.LevelInfo); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every knob before the first remote call.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("SLACK_TOKEN is required")
	}
	if !tokenPattern.MatchString(c.Token) {
		return errors.New("SLACK_TOKEN must be a bot (xoxb-) or user (xoxp-) token")
	}
	if !channelPattern.MatchString(c.Channel) {
		return fmt.Errorf("SLACK_CHANNEL %q is not a valid channel name", c.Channel)
	}
	if c.ChannelID != "" && !channelIDPattern.MatchString(c.ChannelID) {
		return fmt.Errorf("SLACK_CHANNEL_ID %q is not a valid channel ID", c.ChannelID)
	}
	if c.SearchLimit < 1 || c.SearchLimit > 1000 {
		return fmt.Errorf("SLACK_SEARCH_LIMIT %d out of range 1..1000", c.SearchLimit)
	}
	if err := checkTimeout("SLACK_PROFILE_TIMEOUT", c.ProfileTimeout); err != nil {
		return err
	}
	if err := checkTimeout("SLACK_FALLBACK_TIMEOUT", c.FallbackTimeout); err != nil {
		return err
	}
	if err := checkTimeout("SLACK_SAFE_TIMEOUT", c.SafeTimeout); err != nil {
		return err
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 1000 {
		return fmt.Errorf("SLACK_API_RATE_LIMIT %d out of range 1..1000", c.RateLimitPerMinute)
	}
	if c.BurstLimit < 1 || c.BurstLimit > 100 {
		return fmt.Errorf("SLACK_API_BURST_LIMIT %d out of range 1..100", c.BurstLimit)
	}
	if c.MaxNameLength < 1 || c.MaxNameLength > 200 {
		return fmt.Errorf("MAX_NAME_LENGTH %d out of range 1..200", c.MaxNameLength)
	}
	if strings.ContainsAny(c.FilenameTemplate, `/\`) || strings.Contains(c.FilenameTemplate, "..") {
		return fmt.Errorf("FILENAME_TEMPLATE %q must be a bare file name", c.FilenameTemplate)
	}
	if !strings.Contains(c.FilenameTemplate, "{date}") {
		return fmt.Errorf("FILENAME_TEMPLATE %q must contain {date}", c.FilenameTemplate)
	}
	if _, err := intro.NewTemplate(c.WelcomeTemplate); err != nil {
		return fmt.Errorf("WELCOME_MESSAGE_TEMPLATE: %w", err)
	}
	if c.FallbackName == "" {
		return errors.New("FALLBACK_NAME cannot be empty")
	}
	return nil
}

func checkTimeout(name string, d time.Duration) error {
	if d < 5*time.Second || d > 300*time.Second {
		return fmt.Errorf("%s %s out of range 5s..300s", name, d)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getdur reads a timeout expressed in whole seconds.
func getdur(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return time.Duration(n) * time.Second, nil
}

func getlevel(key string, def slog.Level) (slog.Level, error) {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return def, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%s: unknown level %q", key, os.Getenv(key))
	}
}
