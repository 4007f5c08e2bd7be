package store

// DatasetKey is the fixed key the whole dataset blob is stored under.
const DatasetKey = "money_app_v1"

// importsKey holds the import log blob.
const importsKey = "import_log_v1"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);
`
