package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per Resolve call.
CREATE TABLE IF NOT EXISTS resolutions (
    resolution_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,            -- resolved, cached, blacklisted, skipped, error
    candidates_tried INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_resolutions_name ON resolutions(name);
CREATE INDEX IF NOT EXISTS idx_resolutions_status ON resolutions(status);

-- Candidate URLs probed during a resolution, in probe order.
CREATE TABLE IF NOT EXISTS candidate_probes (
    probe_id INTEGER PRIMARY KEY AUTOINCREMENT,
    resolution_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    url TEXT NOT NULL,
    valid BOOLEAN NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (resolution_id) REFERENCES resolutions(resolution_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_candidate_probes_resolution ON candidate_probes(resolution_id);
`
