package sqlite

// schema contains the database schema DDL.
const schema = `
-- Utilization snapshots, one per schedule
CREATE TABLE IF NOT EXISTS snapshots (
    schedule INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    fetched_at DATETIME NOT NULL,
    row_count INTEGER NOT NULL DEFAULT 0,
    rows TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);

-- Fetch state per data source
CREATE TABLE IF NOT EXISTS fetch_state (
    source TEXT PRIMARY KEY,
    last_run DATETIME,
    last_data TEXT,
    error_count INTEGER DEFAULT 0,
    last_error TEXT
);

-- Configuration
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
