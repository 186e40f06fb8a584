package postgres

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS patients (
  seq        BIGSERIAL PRIMARY KEY,
  id         TEXT UNIQUE NOT NULL,
  name_use   TEXT NOT NULL DEFAULT '',
  family     TEXT NOT NULL,
  given_json JSONB NOT NULL DEFAULT '[]'::jsonb,
  gender     TEXT NOT NULL DEFAULT 'unknown',
  birth_date BIGINT NOT NULL,
  active     BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patients_birth_date ON patients(birth_date);
`
