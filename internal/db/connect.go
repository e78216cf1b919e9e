package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver selects which database/sql driver and schema flavor to use.
// Sqlite serves dev and single-node setups; postgres serves deployments
// pointed at a hosted database.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

func (d Driver) driverName() (string, error) {
	switch d {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported driver: %s", d)
}

func (d Driver) defaultDSN() string {
	if d == DriverPostgres {
		return "postgres://localhost:5432/sturoom?sslmode=disable"
	}
	return "file:sturoom.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
}

// Open connects, pings, and applies the schema. Every statement in the
// schema is idempotent, so Open is safe to run on a populated database.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	drvName, err := driver.driverName()
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		dsn = driver.defaultDSN()
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  lecture_id TEXT NOT NULL,
  week_id TEXT NOT NULL,
  mode TEXT NOT NULL,
  quiz_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_runs (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  lecture_id TEXT NOT NULL,
  week_id TEXT NOT NULL,
  mode TEXT NOT NULL,
  quiz_count INTEGER NOT NULL DEFAULT 0,
  started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_questions (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
  question TEXT NOT NULL,
  choices_json TEXT NOT NULL DEFAULT '[]',
  answer TEXT NOT NULL,
  explanation TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_answers (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  run_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  user_answer TEXT NOT NULL,
  is_correct INTEGER NOT NULL,
  answered_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_incorrect_notes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  reviewed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS quiz_messages (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  run_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  kind TEXT NOT NULL,
  payload TEXT NOT NULL,
  order_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance_logs (
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
  seconds INTEGER NOT NULL DEFAULT 0,
  session_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (user_id, date)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  lecture_id TEXT NOT NULL,
  week_id TEXT NOT NULL,
  mode TEXT NOT NULL,
  quiz_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_runs (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  lecture_id TEXT NOT NULL,
  week_id TEXT NOT NULL,
  mode TEXT NOT NULL,
  quiz_count INTEGER NOT NULL DEFAULT 0,
  started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_questions (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
  question TEXT NOT NULL,
  choices_json TEXT NOT NULL DEFAULT '[]',
  answer TEXT NOT NULL,
  explanation TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_answers (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  run_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  user_answer TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL,
  answered_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_incorrect_notes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  reviewed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS quiz_messages (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  run_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  kind TEXT NOT NULL,
  payload TEXT NOT NULL,
  order_index BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance_logs (
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
  seconds INTEGER NOT NULL DEFAULT 0,
  session_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (user_id, date)
);
`
