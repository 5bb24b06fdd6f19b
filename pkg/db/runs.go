package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/lwp-links/models"
)

const (
	RunKindAudit   = "audit"
	RunKindRewrite = "rewrite"
)

// Run is a recorded audit or rewrite pass.
type Run struct {
	RunID         int64
	Kind          string
	Root          string
	StartedAt     time.Time
	FinishedAt    time.Time
	Documents     int
	Links         int
	FindingsCount int
	SkippedCount  int
	FilesTouched  int
	Substitutions int
	Cancelled     bool
}

// InsertAuditRun stores a finished audit and its findings in one transaction.
func (db *DB) InsertAuditRun(report *models.AuditReport, finishedAt time.Time) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO runs (kind, root, started_at, finished_at, documents, links, findings_count, skipped_count, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, RunKindAudit, report.Root, report.Started, finishedAt, report.Documents, report.Links,
		len(report.Findings), len(report.Skipped), report.Cancelled)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO findings (run_id, position, file, link, text, issue) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range report.Findings {
		if _, err := stmt.Exec(runID, i, f.File, f.Link, f.Text, f.Issue); err != nil {
			return 0, fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit run: %w", err)
	}
	return runID, nil
}

// InsertRewriteRun stores the totals of a rewrite pass.
func (db *DB) InsertRewriteRun(root string, summary *models.RewriteSummary, startedAt, finishedAt time.Time) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO runs (kind, root, started_at, finished_at, skipped_count, files_touched, substitutions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, RunKindRewrite, root, startedAt, finishedAt, len(summary.Errors), summary.FilesTouched, summary.Substitutions)
	if err != nil {
		return 0, fmt.Errorf("failed to insert rewrite run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, kind, root, started_at, finished_at, documents, links,
		       findings_count, skipped_count, files_touched, substitutions, cancelled
		FROM runs
		ORDER BY started_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Kind, &r.Root, &r.StartedAt, &r.FinishedAt, &r.Documents, &r.Links,
			&r.FindingsCount, &r.SkippedCount, &r.FilesTouched, &r.Substitutions, &r.Cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun retrieves a single run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	err := db.QueryRow(`
		SELECT run_id, kind, root, started_at, finished_at, documents, links,
		       findings_count, skipped_count, files_touched, substitutions, cancelled
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.Kind, &r.Root, &r.StartedAt, &r.FinishedAt, &r.Documents, &r.Links,
		&r.FindingsCount, &r.SkippedCount, &r.FilesTouched, &r.Substitutions, &r.Cancelled)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// GetRunFindings returns the findings of an audit run in discovery order.
func (db *DB) GetRunFindings(runID int64) ([]models.AuditFinding, error) {
	rows, err := db.Query(`
		SELECT file, link, COALESCE(text, ''), issue
		FROM findings
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer rows.Close()

	findings := []models.AuditFinding{}
	for rows.Next() {
		var f models.AuditFinding
		if err := rows.Scan(&f.File, &f.Link, &f.Text, &f.Issue); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
