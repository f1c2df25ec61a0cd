package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default file layout for written digests.
const (
	DefaultDirectory        = "welcome_messages"
	DefaultFilenameTemplate = "daily_intros_{date}.md"
)

// Writer persists rendered digests under a single output directory.
type Writer struct {
	logger   *slog.Logger
	dir      string
	filename string
}

// NewWriter returns a Writer rooted at dir. filename is a template where
// {date} expands to the report day. Empty arguments keep the defaults.
func NewWriter(dir, filename string, logger *slog.Logger) *Writer {
	if dir == "" {
		dir = DefaultDirectory
	}
	if filename == "" {
		filename = DefaultFilenameTemplate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, filename: filename, logger: logger}
}

// Write renders the report into the day's file. The output directory is
// created on first use, owner-only; the file is written 0600. Returns
// the written path.
func (w *Writer) Write(ctx context.Context, r *Report, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", w.dir, err)
	}

	name := strings.ReplaceAll(w.filename, "{date}", generatedAt.Format("2006-01-02"))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(r.Markdown(generatedAt)), 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	w.logger.InfoContext(ctx, "report written", "path", path, "intros", len(r.Entries))
	return path, nil
}
