// Package report renders the daily introduction digest and writes it to
// disk.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/doorman/pkg/intro"
	"github.com/codeGROOVE-dev/doorman/pkg/sanitize"
)

// Entry pairs one introduction record with its rendered welcome message.
type Entry struct {
	Record  intro.Record
	Welcome string
}

// Report is the outcome of one scan window, entries in fetch order.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Report struct {
	Start   time.Time
	End     time.Time
	Entries []Entry

	Intros           int
	LinksFromMessage int
	LinksFromProfile int
}

// Summary is the machine-readable run result printed to stdout.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Summary struct {
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	Intros           int       `json:"intros"`
	LinksFromMessage int       `json:"links_from_message"`
	LinksFromProfile int       `json:"links_from_profile"`
	ReportPath       string    `json:"report_path"`
}

// Summarize builds the stdout summary for a written report.
func (r *Report) Summarize(path string) Summary {
	return Summary{
		WindowStart:      r.Start,
		WindowEnd:        r.End,
		Intros:           r.Intros,
		LinksFromMessage: r.LinksFromMessage,
		LinksFromProfile: r.LinksFromProfile,
		ReportPath:       path,
	}
}

// Markdown renders the digest. generatedAt stamps the header and names
// the report day. An empty scan still produces a complete document.
func (r *Report) Markdown(generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Introductions - %s\n\n", generatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Generated at: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	if len(r.Entries) == 0 {
		b.WriteString("*No new introductions found today.*\n")
		return b.String()
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Found **%d** new introduction(s) today.\n\n", len(r.Entries))
	b.WriteString("---\n\n")

	for i, e := range r.Entries {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		writeEntry(&b, i+1, e)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, n int, e Entry) {
	rec := e.Record

	name := rec.AuthorRealName
	if name == "" {
		name = rec.AuthorUsername
	}
	if name == "" {
		name = "Unknown"
	}
	username := rec.AuthorUsername
	if username == "" {
		username = "unknown"
	}

	fmt.Fprintf(b, "## %d. %s\n\n", n, name)
	b.WriteString("### User Information\n")
	fmt.Fprintf(b, "- **Name:** %s\n", name)
	fmt.Fprintf(b, "- **Username:** @%s\n", username)
	if rec.ProfileURL != "" {
		fmt.Fprintf(b, "- **LinkedIn:** [%s](%s)\n", rec.ProfileURL, rec.ProfileURL)
	} else {
		b.WriteString("- **LinkedIn:** *Not provided*\n")
	}
	if rec.Permalink != "" {
		fmt.Fprintf(b, "- **Message Link:** [View in Slack](%s)\n", rec.Permalink)
	}
	fmt.Fprintf(b, "- **Posted:** %s\n\n", rec.PostedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("### Draft Welcome Message\n\n")
	fmt.Fprintf(b, "```\n%s\n```\n\n", e.Welcome)

	b.WriteString("### Original Introduction\n\n")
	text := sanitize.StripControl(rec.MessageText)
	fmt.Fprintf(b, "> %s\n\n", strings.ReplaceAll(text, "\n", "\n> "))
}
