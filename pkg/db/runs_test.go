package db

import (
	"testing"
	"time"

	"github.com/dtnitsch/lwp-links/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Each pooled connection would get its own in-memory database.
	database.SetMaxOpenConns(1)

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestInsertAuditRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &models.AuditReport{
		Root:      "/courses/cs101",
		Started:   started,
		Documents: 3,
		Links:     12,
		Findings: []models.AuditFinding{
			{File: "b.html", Link: "x.png", Text: "X", Issue: "Missing File: x.png"},
			{File: "a.html", Link: "https://dead.example", Text: "", Issue: "Broken (timeout)"},
		},
	}

	runID, err := db.InsertAuditRun(report, started.Add(time.Minute))
	if err != nil {
		t.Fatalf("InsertAuditRun() failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("InsertAuditRun() returned 0 ID")
	}

	findings, err := db.GetRunFindings(runID)
	if err != nil {
		t.Fatalf("GetRunFindings() failed: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2", len(findings))
	}
	if findings[0] != report.Findings[0] || findings[1] != report.Findings[1] {
		t.Errorf("findings = %+v, want %+v", findings, report.Findings)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.Kind != RunKindAudit || r.Root != "/courses/cs101" || r.Documents != 3 || r.Links != 12 || r.FindingsCount != 2 {
		t.Errorf("run = %+v", r)
	}
}

func TestInsertRewriteRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	summary := &models.RewriteSummary{FilesTouched: 4, Substitutions: 9}
	if _, err := db.InsertRewriteRun("/courses/cs101", summary, now, now.Add(time.Second)); err != nil {
		t.Fatalf("InsertRewriteRun() failed: %v", err)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Kind != RunKindRewrite || runs[0].FilesTouched != 4 || runs[0].Substitutions != 9 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestListRunsOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		report := &models.AuditReport{Root: "r", Started: base.Add(time.Duration(i) * time.Hour)}
		if _, err := db.InsertAuditRun(report, report.Started); err != nil {
			t.Fatalf("InsertAuditRun() failed: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not most recent first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestGetRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(999); err == nil {
		t.Error("GetRun(999) error = nil, want error")
	}

	report := &models.AuditReport{Root: "r", Started: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Documents: 7, Cancelled: true}
	runID, err := db.InsertAuditRun(report, report.Started)
	if err != nil {
		t.Fatalf("InsertAuditRun() failed: %v", err)
	}
	r, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if r.Documents != 7 || !r.Cancelled || r.Kind != RunKindAudit {
		t.Errorf("run = %+v", r)
	}

	findings, err := db.GetRunFindings(runID)
	if err != nil {
		t.Fatalf("GetRunFindings() failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("len(findings) = %d, want 0", len(findings))
	}
}
