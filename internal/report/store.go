// Package report persists QS runs and their findings in a SQLite
// database, so repeated runs over a song collection can be compared.
package report

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/beamertools/sngward/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	mode        TEXT NOT NULL,
	file_count  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS files (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	path        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	encoding    TEXT NOT NULL,
	modified    INTEGER NOT NULL,
	PRIMARY KEY (run_id, path)
);
CREATE TABLE IF NOT EXISTS findings (
	run_id TEXT NOT NULL REFERENCES runs(id),
	file   TEXT NOT NULL,
	rule   TEXT NOT NULL,
	detail TEXT NOT NULL,
	fixed  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS findings_by_run ON findings(run_id, file);
`

// Run is one invocation of the rule engine over a collection.
type Run struct {
	ID        string
	StartedAt time.Time
	Mode      string
	FileCount int
}

// Finding is one rule violation, fixed or not.
type Finding struct {
	File   string
	Rule   string
	Detail string
	Fixed  bool
}

// Store wraps the findings database.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open database", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records a new run in the given mode ("check" or "fix").
func (s *Store) StartRun(ctx context.Context, mode string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Mode:      mode,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, mode) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.Mode)
	if err != nil {
		return nil, errors.Wrap(err, "recording run")
	}
	return run, nil
}

// FinishRun stamps the run as finished with its processed file count.
func (s *Store) FinishRun(ctx context.Context, run *Run, fileCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, file_count = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), fileCount, run.ID)
	if err != nil {
		return errors.Wrap(err, "finishing run")
	}
	return nil
}

// RecordFile stores one processed file with its content fingerprint.
func (s *Store) RecordFile(ctx context.Context, runID, path string, data []byte, encoding string, modified bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO files (run_id, path, fingerprint, encoding, modified)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, path, Fingerprint(data), encoding, modified)
	if err != nil {
		return errors.Wrapf(err, "recording file %s", path)
	}
	return nil
}

// RecordFinding stores one rule violation.
func (s *Store) RecordFinding(ctx context.Context, runID string, f Finding) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO findings (run_id, file, rule, detail, fixed) VALUES (?, ?, ?, ?, ?)`,
		runID, f.File, f.Rule, f.Detail, f.Fixed)
	if err != nil {
		return errors.Wrapf(err, "recording finding for %s", f.File)
	}
	return nil
}

// Findings returns all findings of a run in insertion order.
func (s *Store) Findings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, rule, detail, fixed FROM findings WHERE run_id = ? ORDER BY rowid`,
		runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying findings")
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.File, &f.Rule, &f.Detail, &f.Fixed); err != nil {
			return nil, errors.Wrap(err, "scanning finding")
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// Runs returns all recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, mode, file_count FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Mode, &r.FileCount); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or a NotFoundError when the
// database is empty.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.NewNotFound("run", "latest")
	}
	return &runs[0], nil
}

// FileChanged reports whether a file's fingerprint differs from the
// one recorded in a previous run. Unknown files count as changed.
func (s *Store) FileChanged(ctx context.Context, runID, path string, data []byte) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM files WHERE run_id = ? AND path = ?`,
		runID, path).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "looking up %s", path)
	}
	return stored != Fingerprint(data), nil
}

// Fingerprint returns the hex BLAKE3 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
