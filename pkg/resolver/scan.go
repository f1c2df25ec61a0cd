// Package resolver finds a member's LinkedIn profile link when their
// introduction message did not carry one.
package resolver

import (
	"github.com/codeGROOVE-dev/doorman/pkg/chat"
	"github.com/codeGROOVE-dev/doorman/pkg/linkedin"
)

// ScanProfile checks every profile field for a LinkedIn link: standard
// fields in priority order first, then custom fields in their declared
// order. Returns "" when no field carries a link.
func ScanProfile(p *chat.Profile) string {
	if p == nil {
		return ""
	}
	if url := scanFields(p.StandardFields()); url != "" {
		return url
	}
	return scanFields(p.Custom)
}

// ScanProfileReduced checks only the fields worth reading on the fallback
// path: status text, title, display name, real name.
func ScanProfileReduced(p *chat.Profile) string {
	if p == nil {
		return ""
	}
	return scanFields([]chat.Field{
		{Label: "status_text", Value: p.StatusText},
		{Label: "title", Value: p.Title},
		{Label: "display_name", Value: p.DisplayName},
		{Label: "real_name", Value: p.RealName},
	})
}

func scanFields(fields []chat.Field) string {
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if url := linkedin.Extract(f.Value); url != "" {
			return url
		}
	}
	return ""
}
