package models

import "time"

// MaxFindingText is the number of runes of display text kept in a finding.
const MaxFindingText = 30

// AuditFinding records one link that failed resolution.
type AuditFinding struct {
	File  string `json:"file" yaml:"file"`
	Link  string `json:"link" yaml:"link"`
	Text  string `json:"text" yaml:"text"`
	Issue string `json:"issue" yaml:"issue"`
}

// AuditReport holds the findings of one audit run in discovery order.
type AuditReport struct {
	Root      string          `json:"root" yaml:"root"`
	Started   time.Time       `json:"started" yaml:"started"`
	Documents int             `json:"documents" yaml:"documents"`
	Links     int             `json:"links" yaml:"links"`
	Findings  []AuditFinding  `json:"findings" yaml:"findings"`
	Skipped   []DocumentError `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Cancelled bool            `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// RewriteSummary reports what a rewrite pass changed.
type RewriteSummary struct {
	FilesTouched  int             `json:"files_touched" yaml:"files_touched"`
	Substitutions int             `json:"substitutions" yaml:"substitutions"`
	Files         []string        `json:"files,omitempty" yaml:"files,omitempty"`
	Errors        []DocumentError `json:"errors,omitempty" yaml:"errors,omitempty"`
	DryRun        bool            `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// TruncateText shortens s to at most n runes.
func TruncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
