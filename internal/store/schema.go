package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger_records (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    period               TEXT NOT NULL,
    flow_type            TEXT NOT NULL,
    category             TEXT NOT NULL,
    amount               TEXT NOT NULL,
    note                 TEXT NOT NULL DEFAULT '',
    source               TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL,
    UNIQUE (period, flow_type, category, note)
);

CREATE TABLE IF NOT EXISTS prediction_history (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id               TEXT NOT NULL,
    base_period          TEXT NOT NULL,
    flow_type            TEXT NOT NULL,
    horizon_days         INTEGER NOT NULL,
    predicted            REAL NOT NULL,
    lower_bound          REAL NOT NULL,
    upper_bound          REAL NOT NULL,
    r2                   REAL NOT NULL,
    mape                 REAL NOT NULL,
    model                TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    UNIQUE (base_period, flow_type, horizon_days)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_period ON ledger_records(period);
CREATE INDEX IF NOT EXISTS idx_ledger_source ON ledger_records(source);
CREATE INDEX IF NOT EXISTS idx_history_created ON prediction_history(created_at);
`
