package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotTasks(t *testing.T, env *testEnv) domain.MultiCycleTasks {
	t.Helper()

	tasks, err := env.sequences.Snapshot(context.Background())
	require.NoError(t, err)
	return tasks
}

func TestSequenceEngineCreateSetsCurrentOnlyWhenNoneIs(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Setup", Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)
	second, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Later", Tasks: []domain.SequenceTask{"b"}})
	require.NoError(t, err)

	assert.Contains(t, first.ID, "seq_")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.SequencePending, first.Status)
	assert.Equal(t, domain.PriorityMedium, first.Priority)

	tasks := snapshotTasks(t, env)
	assert.Equal(t, first.ID, tasks.CurrentID())
	assert.Len(t, tasks.ActiveSequences, 2)
}

func TestSequenceEngineCreateRequiresName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.sequences.Create(context.Background(), CreateSequenceInput{Name: "  "})
	require.Error(t, err)
	assert.Empty(t, snapshotTasks(t, env).ActiveSequences)
}

func TestSequenceEngineEmptySequenceCompletesOnCheck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	seq, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Nothing"})
	require.NoError(t, err)

	check, err := env.sequences.Check(ctx)
	require.NoError(t, err)
	assert.False(t, check.Active)
	require.Len(t, check.Archived, 1)
	assert.Equal(t, seq.ID, check.Archived[0].ID)

	tasks := snapshotTasks(t, env)
	assert.Empty(t, tasks.ActiveSequences)
	assert.Empty(t, tasks.CurrentID())
	archived := tasks.CompletedSequences[seq.ID]
	assert.Equal(t, domain.SequenceCompleted, archived.Status)
	assert.Empty(t, archived.CompletedTasks)
}

func TestSequenceEngineCheckDoesNotAdvance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	seq, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Setup", Tasks: []domain.SequenceTask{"step A", "step B"}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		check, err := env.sequences.Check(ctx)
		require.NoError(t, err)
		require.True(t, check.Active)
		assert.Equal(t, domain.SequenceTask("step A"), check.Task)
		assert.Equal(t, domain.SequenceInProgress, check.Sequence.Status)
	}

	assert.Equal(t, 0, snapshotTasks(t, env).ActiveSequences[seq.ID].CurrentTaskIndex)
}

func TestSequenceEngineAdvanceIsMonotonicAndArchivesOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	seq, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Setup", Tasks: []domain.SequenceTask{"a", "b", "c"}})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		env.clock.Advance(time.Minute)
		updated, completed, err := env.sequences.Advance(ctx, seq.ID, "ok")
		require.NoError(t, err)
		assert.Equal(t, i, updated.CurrentTaskIndex)
		assert.Len(t, updated.CompletedTasks, i)
		assert.Equal(t, i == 3, completed)
	}

	tasks := snapshotTasks(t, env)
	assert.Empty(t, tasks.ActiveSequences)
	assert.Empty(t, tasks.CurrentID())
	require.Contains(t, tasks.CompletedSequences, seq.ID)
	assert.Equal(t, domain.SequenceCompleted, tasks.CompletedSequences[seq.ID].Status)

	_, _, err = env.sequences.Advance(ctx, seq.ID, "again")
	require.ErrorIs(t, err, domain.ErrSequenceNotFound)
	assert.Len(t, snapshotTasks(t, env).CompletedSequences, 1)
}

func TestSequenceEngineRecordFailureFailsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	engine := NewSequenceEngine(env.store, WithSequenceClock(env.clock), WithMaxAttempts(2))

	seq, err := engine.Create(ctx, CreateSequenceInput{Name: "Flaky", Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)

	updated, failed, err := engine.RecordFailure(ctx, seq.ID, errors.New("model offline"))
	require.NoError(t, err)
	assert.False(t, failed)
	assert.Equal(t, 1, updated.Attempts)
	assert.Equal(t, "model offline", updated.LastError)
	assert.Equal(t, 0, updated.CurrentTaskIndex)

	updated, failed, err = engine.RecordFailure(ctx, seq.ID, errors.New("model offline"))
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, domain.SequenceFailed, updated.Status)

	tasks := snapshotTasks(t, env)
	assert.Empty(t, tasks.ActiveSequences)
	assert.Empty(t, tasks.CurrentID())
	assert.Equal(t, domain.SequenceFailed, tasks.CompletedSequences[seq.ID].Status)
}

func TestSequenceEngineAdvanceResetsAttempts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	seq, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Retry", Tasks: []domain.SequenceTask{"a", "b"}})
	require.NoError(t, err)

	_, _, err = env.sequences.RecordFailure(ctx, seq.ID, errors.New("boom"))
	require.NoError(t, err)
	updated, _, err := env.sequences.Advance(ctx, seq.ID, "ok")
	require.NoError(t, err)

	assert.Zero(t, updated.Attempts)
	assert.Empty(t, updated.LastError)
}

func TestSequenceEngineFail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	seq, err := env.sequences.Create(ctx, CreateSequenceInput{Name: "Abandon", Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)

	failed, err := env.sequences.Fail(ctx, seq.ID, "cancelled by user")
	require.NoError(t, err)
	assert.Equal(t, domain.SequenceFailed, failed.Status)
	assert.Equal(t, "cancelled by user", failed.LastError)

	_, err = env.sequences.Fail(ctx, "seq_missing", "")
	require.ErrorIs(t, err, domain.ErrSequenceNotFound)
}

func TestSequenceEngineCheckClearsDanglingPointer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.Mutate(ctx, domain.DocumentSystem, func(doc domain.Document) error {
		return doc.SetPath([]string{domain.KeyMultiCycleTasks, "current_sequence_id"}, "seq_gone")
	})
	require.NoError(t, err)

	check, err := env.sequences.Check(ctx)
	require.NoError(t, err)
	assert.False(t, check.Active)
	assert.Empty(t, snapshotTasks(t, env).CurrentID())
}

func TestSequenceEngineCheckPromotesHighestPriority(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	ids := []string{"seq_01", "seq_02", "seq_03"}
	engine := NewSequenceEngine(env.store, WithSequenceClock(env.clock), WithSequenceIDs(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first, err := engine.Create(ctx, CreateSequenceInput{Name: "low", Priority: domain.PriorityLow, Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)
	_, err = engine.Create(ctx, CreateSequenceInput{Name: "medium", Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)
	high, err := engine.Create(ctx, CreateSequenceInput{Name: "high", Priority: domain.PriorityHigh, Tasks: []domain.SequenceTask{"a"}})
	require.NoError(t, err)

	_, err = engine.Fail(ctx, first.ID, "")
	require.NoError(t, err)

	check, err := engine.Check(ctx)
	require.NoError(t, err)
	require.True(t, check.Active)
	assert.Equal(t, high.ID, check.Sequence.ID)
	assert.Equal(t, high.ID, snapshotTasks(t, env).CurrentID())
}

func TestProgress(t *testing.T) {
	t.Parallel()

	seq := domain.Sequence{Name: "Setup", Tasks: []domain.SequenceTask{"step A", "step B"}, CurrentTaskIndex: 1}
	assert.Equal(t, "Setup: step 2 of 2 (step B)", Progress(seq))

	seq.CurrentTaskIndex = 2
	seq.CompletedTasks = []domain.CompletedStep{{Task: "step A"}, {Task: "step B"}}
	assert.Equal(t, "Setup: 2 of 2 steps done", Progress(seq))
}

func TestSequenceEngineStampsTimesFromItsClock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	at := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(at)

	engine := NewSequenceEngine(env.store,
		WithSequenceClock(clock),
		WithSequenceIDs(func() string { return "seq_fixed" }),
	)

	seq, err := engine.Create(context.Background(), CreateSequenceInput{
		Name:  "Taxes",
		Tasks: []domain.SequenceTask{"gather receipts"},
	})
	require.NoError(t, err)
	assert.Equal(t, "seq_fixed", seq.ID)
	assert.Equal(t, domain.FormatTimestamp(at), seq.CreatedAt)

	archived, done, err := engine.Advance(context.Background(), seq.ID, "receipts gathered")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, domain.FormatTimestamp(at), archived.FinishedAt)
}
