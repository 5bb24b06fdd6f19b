// Package report renders audit reports and rewrite summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/lwp-links/models"
)

// Formats accepted by WriteAudit.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// CheckFormat fails for formats WriteAudit does not know.
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

// WriteAudit renders r to w in the given format.
func WriteAudit(w io.Writer, r *models.AuditReport, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return writeAuditText(w, r)
}

func writeAuditText(w io.Writer, r *models.AuditReport) error {
	if len(r.Findings) == 0 {
		fmt.Fprintf(w, "No broken links found in %d documents (%d links checked)\n", r.Documents, r.Links)
	} else {
		fmt.Fprintf(w, "%-40s %-50s %-30s %s\n", "File", "Link", "Text", "Issue")
		fmt.Fprintln(w, strings.Repeat("-", 160))
		for _, f := range r.Findings {
			fmt.Fprintf(w, "%-40s %-50s %-30s %s\n", f.File, f.Link, f.Text, f.Issue)
		}
		fmt.Fprintf(w, "\nTotal: %d broken links in %d documents (%d links checked)\n", len(r.Findings), r.Documents, r.Links)
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d documents:\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "  - %s (%s): %s\n", s.Path, s.Kind, s.Message)
		}
	}
	if r.Cancelled {
		_, err := fmt.Fprintln(w, "\nAudit was cancelled before all documents were checked")
		return err
	}
	return nil
}

// WriteRewrite prints the files touched and substitution totals.
func WriteRewrite(w io.Writer, s *models.RewriteSummary) error {
	for _, f := range s.Files {
		fmt.Fprintf(w, "  Updated: %s\n", f)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  Error processing %s (%s): %s\n", e.Path, e.Kind, e.Message)
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	if s.DryRun {
		fmt.Fprintln(w, "DRY RUN (no files written)")
	}
	fmt.Fprintf(w, "  Files updated: %d\n", s.FilesTouched)
	_, err := fmt.Fprintf(w, "  Links fixed: %d\n", s.Substitutions)
	return err
}
