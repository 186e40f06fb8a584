package sqlite

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS patients (
  seq        INTEGER PRIMARY KEY AUTOINCREMENT,
  id         TEXT UNIQUE NOT NULL,
  name_use   TEXT NOT NULL DEFAULT '',
  family     TEXT NOT NULL,
  given_json TEXT NOT NULL DEFAULT '[]',
  gender     TEXT NOT NULL DEFAULT 'unknown',
  birth_date INTEGER NOT NULL,
  active     INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patients_birth_date ON patients(birth_date);
`
