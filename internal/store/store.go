package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store persists runs, iterations, events, and cache entries.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Run statuses.
const (
	RunStatusRunning      = "running"
	RunStatusAccepted     = "accepted"
	RunStatusForcedAccept = "forced_accept"
	RunStatusFailed       = "failed"
)

// RunRecord summarizes one plan-generation run.
type RunRecord struct {
	RunID           string
	CreatedAt       string
	Task            string
	Status          string
	IterationCount  int
	MaxIterations   int
	Readiness       string
	CoverageScore   float64
	ConfidenceScore float64
	FinalPlan       string
}

// IterationRecord is one persisted reflection iteration.
type IterationRecord struct {
	RunID     string
	Iteration int
	Draft     string
	Critique  string
	Reasoning string
	Accepted  bool
	CreatedAt string
}

// CreateRun inserts the run record and a run_started event.
func (s *Store) CreateRun(ctx context.Context, runID, task string, maxIterations int) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs(run_id, created_at, task, status, iteration_count, max_iterations)
		VALUES(?, ?, ?, ?, 0, ?)`,
		runID, createdAt, task, RunStatusRunning, maxIterations); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}
	if err := s.insertEvent(ctx, tx, runID, "run_started", "run started", ""); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create run: %w", err)
	}
	return nil
}

// CommitIteration inserts one iteration and bumps the run's counter in a
// single transaction.
func (s *Store) CommitIteration(ctx context.Context, it IterationRecord) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin commit iteration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO iterations(run_id, iteration, draft, critique, reasoning, accepted, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		it.RunID, it.Iteration, it.Draft, it.Critique, it.Reasoning, boolInt(it.Accepted), it.CreatedAt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert iteration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET iteration_count=? WHERE run_id=?`, it.Iteration, it.RunID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update run iteration count: %w", err)
	}
	if err := s.insertEvent(ctx, tx, it.RunID, "iteration_committed",
		fmt.Sprintf("iteration %d committed", it.Iteration), ""); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit iteration: %w", err)
	}
	return nil
}

// FinishRun records the terminal status, report scores, and final plan.
func (s *Store) FinishRun(ctx context.Context, runID, status, readiness string, coverage, confidence float64, finalPlan string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin finish run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET status=?, readiness=?, coverage_score=?, confidence_score=?, final_plan=? WHERE run_id=?`,
		status, readiness, coverage, confidence, nullableString(finalPlan), runID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update run: %w", err)
	}
	if err := s.insertEvent(ctx, tx, runID, "run_finished", "run finished: "+status, ""); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first, without final plan bodies.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, task, status, iteration_count, max_iterations,
		COALESCE(readiness, ''), COALESCE(coverage_score, 0), COALESCE(confidence_score, 0)
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Task, &r.Status, &r.IterationCount, &r.MaxIterations,
			&r.Readiness, &r.CoverageScore, &r.ConfidenceScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run including its final plan, or false if missing.
func (s *Store) GetRun(ctx context.Context, runID string) (RunRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, created_at, task, status, iteration_count, max_iterations,
		COALESCE(readiness, ''), COALESCE(coverage_score, 0), COALESCE(confidence_score, 0), COALESCE(final_plan, '')
		FROM runs WHERE run_id=?`, runID)
	var r RunRecord
	if err := row.Scan(&r.RunID, &r.CreatedAt, &r.Task, &r.Status, &r.IterationCount, &r.MaxIterations,
		&r.Readiness, &r.CoverageScore, &r.ConfidenceScore, &r.FinalPlan); err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, fmt.Errorf("read run: %w", err)
	}
	return r, true, nil
}

// ListIterations returns a run's iterations in order.
func (s *Store) ListIterations(ctx context.Context, runID string) ([]IterationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, iteration, draft, COALESCE(critique, ''), COALESCE(reasoning, ''), accepted, created_at
		FROM iterations WHERE run_id=? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("list iterations: %w", err)
	}
	defer rows.Close()

	var out []IterationRecord
	for rows.Next() {
		var it IterationRecord
		var accepted int
		if err := rows.Scan(&it.RunID, &it.Iteration, &it.Draft, &it.Critique, &it.Reasoning, &accepted, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		it.Accepted = accepted != 0
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) insertEvent(ctx context.Context, tx *sql.Tx, runID, typ, message, dataJSON string) error {
	seq, err := s.nextSeq(ctx, tx, runID)
	if err != nil {
		return err
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO events(run_id, seq, ts, type, message, data_json) VALUES(?, ?, ?, ?, ?, ?)`,
		runID, seq, ts, typ, message, nullableString(dataJSON)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) nextSeq(ctx context.Context, tx *sql.Tx, runID string) (int, error) {
	var seq int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id=?`, runID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read event seq: %w", err)
	}
	return seq + 1, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
