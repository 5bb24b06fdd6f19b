package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per audit or rewrite pass
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,              -- audit, rewrite
    root TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    documents INTEGER DEFAULT 0,
    links INTEGER DEFAULT 0,
    findings_count INTEGER DEFAULT 0,
    skipped_count INTEGER DEFAULT 0,
    files_touched INTEGER DEFAULT 0,
    substitutions INTEGER DEFAULT 0,
    cancelled BOOLEAN DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- Findings of audit runs, position keeps discovery order
CREATE TABLE IF NOT EXISTS findings (
    finding_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    file TEXT NOT NULL,
    link TEXT NOT NULL,
    text TEXT,
    issue TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(file);
`
