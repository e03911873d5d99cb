package store

// Schema v1 - stage ledger
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per published stage. (dataset, kind, name) mirrors the directory
-- layout: <base>/<dataset>/<kind>/<name>, with kind 'ds' for the root stage.
CREATE TABLE IF NOT EXISTS stages (
  dataset TEXT NOT NULL,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  parent_kind TEXT,
  parent_name TEXT,
  operation TEXT NOT NULL,
  params_json TEXT,
  entries INTEGER NOT NULL DEFAULT 0,
  published_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (dataset, kind, name)
);
`

// Schema v2 - run tracking
const schemaV2 = `
ALTER TABLE stages ADD COLUMN run_id TEXT;

CREATE INDEX IF NOT EXISTS idx_stages_parent ON stages(dataset, parent_kind, parent_name);
CREATE INDEX IF NOT EXISTS idx_stages_run ON stages(run_id);
`
