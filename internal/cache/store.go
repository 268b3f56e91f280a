// Package cache is the local snapshot store. After every successful course
// fetch the dashboard writes the raw JSON per resource here, so the last
// known state can still be rendered read-only when the backend is down.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Resource names under which snapshots are keyed.
const (
	ResourceStudents    = "students"
	ResourceAssignments = "assignments"
	ResourceSubmissions = "submissions"
	ResourceExams       = "exams"
	ResourceResponses   = "responses"
	ResourceColumns     = "columns"
)

// ErrMiss is returned when no snapshot exists for a course/resource pair.
var ErrMiss = errors.New("cache: no snapshot")

type Store struct {
	db *sql.DB
}

// Open opens the snapshot store and ensures its schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:lectern-cache.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/lectern?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
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
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put stores one resource snapshot for a course, replacing any previous one.
func (s *Store) Put(ctx context.Context, courseID, resource string, v any, fetchedAt time.Time) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s snapshot: %w", resource, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshots (course_id, resource, payload, fetched_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (course_id, resource)
DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
`, courseID, resource, string(payload), fetchedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("cache: store %s snapshot: %w", resource, err)
	}
	return nil
}

// Get decodes the latest snapshot into out and reports when it was fetched.
// Returns ErrMiss when the course/resource pair has never been stored.
func (s *Store) Get(ctx context.Context, courseID, resource string, out any) (time.Time, error) {
	var (
		payload string
		unix    int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT payload, fetched_at FROM snapshots WHERE course_id = $1 AND resource = $2
`, courseID, resource).Scan(&payload, &unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: load %s snapshot: %w", resource, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return time.Time{}, fmt.Errorf("cache: decode %s snapshot: %w", resource, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// Purge drops all snapshots for a course.
func (s *Store) Purge(ctx context.Context, courseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE course_id = $1`, courseID)
	return err
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS snapshots (
  course_id TEXT NOT NULL,
  resource TEXT NOT NULL,
  payload TEXT NOT NULL,
  fetched_at INTEGER NOT NULL,
  PRIMARY KEY (course_id, resource)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS snapshots (
  course_id TEXT NOT NULL,
  resource TEXT NOT NULL,
  payload TEXT NOT NULL,
  fetched_at BIGINT NOT NULL,
  PRIMARY KEY (course_id, resource)
);
`
