// Package manifest indexes generated samples in a SQLite database so batches
// can be listed and inspected without walking the output tree.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

const FileName = "manifest.db"

const schema = `
CREATE TABLE IF NOT EXISTS samples (
    task_id       TEXT PRIMARY KEY,
    run_id        TEXT NOT NULL,
    left_weights  TEXT NOT NULL,
    right_weights TEXT NOT NULL,
    left_sum      INTEGER NOT NULL,
    right_sum     INTEGER NOT NULL,
    winner        TEXT NOT NULL,
    frames        INTEGER NOT NULL,
    target_angle  REAL NOT NULL,
    dir           TEXT NOT NULL,
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id);
`

var ErrNotFound = errors.New("manifest: sample not found")

// Entry is one row of the samples table.
type Entry struct {
	TaskID      string
	RunID       string
	Weights     dynamo.WeightConfig
	Outcome     dynamo.Outcome
	Frames      int
	TargetAngle float64
	Dir         string
	CreatedAt   time.Time
}

type Index struct {
	db *sql.DB
}

// NewRunID returns a fresh identifier for one batch run.
func NewRunID() string { return uuid.NewString() }

// Open opens or creates the manifest at path. ":memory:" gives a private
// in-memory index.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("manifest open: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error { return ix.db.Close() }

// Record inserts or replaces the row for e.TaskID.
func (ix *Index) Record(ctx context.Context, e Entry) error {
	if e.TaskID == "" {
		return fmt.Errorf("manifest: entry has no task id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO samples
		 (task_id, run_id, left_weights, right_weights, left_sum, right_sum, winner, frames, target_angle, dir, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TaskID, e.RunID, joinInts(e.Weights.Left), joinInts(e.Weights.Right),
		e.Outcome.LeftSum, e.Outcome.RightSum, e.Outcome.Winner.String(),
		e.Frames, e.TargetAngle, e.Dir, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

const selectCols = `SELECT task_id, run_id, left_weights, right_weights, left_sum, right_sum, winner, frames, target_angle, dir, created_at FROM samples`

// List returns every entry ordered by task id.
func (ix *Index) List(ctx context.Context) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, selectCols+` ORDER BY task_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (ix *Index) Get(ctx context.Context, taskID string) (Entry, error) {
	e, err := scan(ix.db.QueryRowContext(ctx, selectCols+` WHERE task_id = ?`, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	return e, err
}

// Count returns how many samples a run recorded.
func (ix *Index) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (Entry, error) {
	var e Entry
	var left, right, winner, created string
	if err := s.Scan(&e.TaskID, &e.RunID, &left, &right, &e.Outcome.LeftSum, &e.Outcome.RightSum,
		&winner, &e.Frames, &e.TargetAngle, &e.Dir, &created); err != nil {
		return Entry{}, err
	}

	var err error
	if e.Weights.Left, err = splitInts(left); err != nil {
		return Entry{}, fmt.Errorf("manifest %s left_weights: %w", e.TaskID, err)
	}
	if e.Weights.Right, err = splitInts(right); err != nil {
		return Entry{}, fmt.Errorf("manifest %s right_weights: %w", e.TaskID, err)
	}
	if e.Outcome.Winner, err = dynamo.ParseSide(winner); err != nil {
		return Entry{}, fmt.Errorf("manifest %s: %w", e.TaskID, err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return e, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
