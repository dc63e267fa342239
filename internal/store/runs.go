package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored row matches a query.
var ErrNotFound = errors.New("not found")

// Run is one solve of an instance.
type Run struct {
	ID           string        `json:"id"`
	Kind         string        `json:"kind"`
	Instance     string        `json:"instance"`
	InstanceHash string        `json:"instance_hash"`
	StartedAt    time.Time     `json:"started_at"`
	Finished     bool          `json:"finished"`
	Found        bool          `json:"found"`
	Objective    int           `json:"objective,omitempty"`
	Optimal      bool          `json:"optimal"`
	Nodes        int           `json:"nodes"`
	Failures     int           `json:"failures"`
	Restarts     int           `json:"restarts"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Solution is an improving solution recorded during a run.
type Solution struct {
	RunID     string `json:"run_id"`
	Objective int    `json:"objective"`
	Restart   int    `json:"restart"`
	Values    []int  `json:"values"`
}

// CreateRun records the start of a run and returns it with a fresh
// time-ordered ID.
func (s *Store) CreateRun(ctx context.Context, kind, instance, hash string) (*Run, error) {
	r := &Run{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Kind:         kind,
		Instance:     instance,
		InstanceHash: hash,
		StartedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, instance, instance_hash, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Instance, r.InstanceHash, r.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

// FinishRun stores the outcome of r.
func (s *Store) FinishRun(ctx context.Context, r *Run) error {
	r.Finished = true
	var objective any
	if r.Found {
		objective = r.Objective
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished = 1, found = ?, objective = ?, optimal = ?,
		    nodes = ?, failures = ?, restarts = ?, elapsed_ms = ?
		WHERE id = ?
	`, r.Found, objective, r.Optimal, r.Nodes, r.Failures, r.Restarts,
		r.Elapsed.Milliseconds(), r.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// AddSolution records an improving solution of a run.
func (s *Store) AddSolution(ctx context.Context, sol Solution) error {
	vals, err := json.Marshal(sol.Values)
	if err != nil {
		return fmt.Errorf("add solution: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO solutions (run_id, objective, restart, vals)
		VALUES (?, ?, ?, ?)
	`, sol.RunID, sol.Objective, sol.Restart, string(vals))
	if err != nil {
		return fmt.Errorf("add solution: %w", err)
	}
	return nil
}

// ListRuns returns the runs, most recent first. If hash is not empty only
// the runs of that instance are listed. A limit of zero means no limit.
func (s *Store) ListRuns(ctx context.Context, hash string, limit int) ([]Run, error) {
	query := `
		SELECT id, kind, instance, instance_hash, started_at, finished, found,
		       objective, optimal, nodes, failures, restarts, elapsed_ms
		FROM runs`
	var args []any
	if hash != "" {
		query += " WHERE instance_hash = ?"
		args = append(args, hash)
	}
	// UUIDv7 IDs sort by creation time.
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r         Run
		started   string
		objective sql.NullInt64
		elapsedMS int64
	)
	err := rows.Scan(&r.ID, &r.Kind, &r.Instance, &r.InstanceHash, &started,
		&r.Finished, &r.Found, &objective, &r.Optimal, &r.Nodes, &r.Failures,
		&r.Restarts, &elapsedMS)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("scan run %s: bad start time: %w", r.ID, err)
	}
	r.Objective = int(objective.Int64)
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}

// Solutions returns the improving solutions of a run in the order they
// were found.
func (s *Store) Solutions(ctx context.Context, runID string) ([]Solution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, objective, restart, vals
		FROM solutions
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	defer rows.Close()

	sols := []Solution{}
	for rows.Next() {
		sol, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		sols = append(sols, sol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}
	return sols, nil
}

// BestSolution returns the solution of smallest objective stored for an
// instance, or ErrNotFound.
func (s *Store) BestSolution(ctx context.Context, hash string) (Solution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.run_id, s.objective, s.restart, s.vals
		FROM solutions s JOIN runs r ON r.id = s.run_id
		WHERE r.instance_hash = ?
		ORDER BY s.objective ASC, s.id ASC
		LIMIT 1
	`, hash)
	if err != nil {
		return Solution{}, fmt.Errorf("query best solution: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Solution{}, fmt.Errorf("query best solution: %w", err)
		}
		return Solution{}, ErrNotFound
	}
	return scanSolution(rows)
}

func scanSolution(rows *sql.Rows) (Solution, error) {
	var (
		sol  Solution
		vals string
	)
	if err := rows.Scan(&sol.RunID, &sol.Objective, &sol.Restart, &vals); err != nil {
		return Solution{}, fmt.Errorf("scan solution: %w", err)
	}
	if err := json.Unmarshal([]byte(vals), &sol.Values); err != nil {
		return Solution{}, fmt.Errorf("scan solution of run %s: %w", sol.RunID, err)
	}
	return sol, nil
}
