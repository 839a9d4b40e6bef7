package journal

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Schema creates the journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    recorded_at INTEGER NOT NULL,
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    operation TEXT NOT NULL,
    outcome TEXT NOT NULL,
    status INTEGER NOT NULL,
    attempted_urls TEXT,
    attempts INTEGER NOT NULL DEFAULT 0,
    stripped INTEGER NOT NULL DEFAULT 0,
    credential_source TEXT,
    duration_ns INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_journal_recorded_at ON journal_entries(recorded_at);
CREATE INDEX IF NOT EXISTS idx_journal_request_id ON journal_entries(request_id);

CREATE TABLE IF NOT EXISTS journal_schema_version (
    version INTEGER PRIMARY KEY
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO journal_schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT MAX(version) FROM journal_schema_version`

const insertEntry = `
INSERT INTO journal_entries (
    id, request_id, recorded_at, method, path, operation, outcome, status,
    attempted_urls, attempts, stripped, credential_source, duration_ns, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRecent = `
SELECT id, request_id, recorded_at, method, path, operation, outcome, status,
       attempted_urls, attempts, stripped, credential_source, duration_ns, error
FROM journal_entries
ORDER BY recorded_at DESC, rowid DESC
LIMIT ?
`

const deleteBefore = `DELETE FROM journal_entries WHERE recorded_at < ?`
