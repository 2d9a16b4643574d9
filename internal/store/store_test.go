package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "planloom.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRun(ctx, "run-1", "build the service", 3))

	now := time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, s.CommitIteration(ctx, IterationRecord{
		RunID: "run-1", Iteration: 1, Draft: "draft 1", Critique: "thin", Reasoning: "needs work", CreatedAt: now,
	}))
	require.NoError(t, s.CommitIteration(ctx, IterationRecord{
		RunID: "run-1", Iteration: 2, Draft: "draft 2", Critique: "fine", Reasoning: "ready", Accepted: true, CreatedAt: now,
	}))
	require.NoError(t, s.FinishRun(ctx, "run-1", RunStatusAccepted, "high", 0.9, 0.8, "draft 2"))

	run, ok, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RunStatusAccepted, run.Status)
	assert.Equal(t, 2, run.IterationCount)
	assert.Equal(t, 3, run.MaxIterations)
	assert.Equal(t, "high", run.Readiness)
	assert.InDelta(t, 0.9, run.CoverageScore, 1e-9)
	assert.Equal(t, "draft 2", run.FinalPlan)

	iterations, err := s.ListIterations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, iterations, 2)
	assert.Equal(t, "draft 1", iterations[0].Draft)
	assert.False(t, iterations[0].Accepted)
	assert.True(t, iterations[1].Accepted)
}

func TestListRuns_NewestFirstWithoutPlanBody(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRun(ctx, "run-a", "task a", 2))
	// created_at has second precision, force distinct ordering keys.
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, s.CreateRun(ctx, "run-b", "task b", 2))
	require.NoError(t, s.FinishRun(ctx, "run-a", RunStatusForcedAccept, "low", 0.3, 0.2, "plan body"))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.Equal(t, "run-a", runs[1].RunID)
	assert.Empty(t, runs[1].FinalPlan)
	assert.Equal(t, RunStatusForcedAccept, runs[1].Status)
}

func TestGetRun_Missing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.GetRun(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinishRun_Failed_NoFinalPlan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRun(ctx, "run-f", "task", 1))
	require.NoError(t, s.FinishRun(ctx, "run-f", RunStatusFailed, "", 0, 0, ""))

	run, ok, err := s.GetRun(ctx, "run-f")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Empty(t, run.FinalPlan)
}

func TestEventsSequencePerRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRun(ctx, "run-1", "task", 2))
	require.NoError(t, s.CreateRun(ctx, "run-2", "task", 2))
	now := time.Now().UTC().Format(time.RFC3339)
	require.NoError(t, s.CommitIteration(ctx, IterationRecord{RunID: "run-1", Iteration: 1, Draft: "d", CreatedAt: now}))

	var maxSeq1, maxSeq2 int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events WHERE run_id='run-1'`).Scan(&maxSeq1))
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events WHERE run_id='run-2'`).Scan(&maxSeq2))
	assert.Equal(t, 2, maxSeq1)
	assert.Equal(t, 1, maxSeq2)
}

func TestCacheReadWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, hit, err := s.CacheRead(ctx, CacheClassification, "hash-1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.CacheWrite(ctx, CacheClassification, "hash-1", `{"v":1}`))
	data, hit, err := s.CacheRead(ctx, CacheClassification, "hash-1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, `{"v":1}`, data)

	// Same key, new payload: last write wins.
	require.NoError(t, s.CacheWrite(ctx, CacheClassification, "hash-1", `{"v":2}`))
	data, hit, err = s.CacheRead(ctx, CacheClassification, "hash-1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, `{"v":2}`, data)

	// Kinds are separate namespaces.
	_, hit, err = s.CacheRead(ctx, CacheExtraction, "hash-1")
	require.NoError(t, err)
	assert.False(t, hit)
}
