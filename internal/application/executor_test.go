package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecutorMemoryActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	records := env.executor.ExecuteAll(ctx, []domain.Action{
		{Type: domain.ActionUpdateMemory, Args: map[string]any{"key": "personal_info.profile.full_name", "value": "Jane"}},
		{Type: domain.ActionUpdateMemory, Args: map[string]any{"personal_info": map[string]any{"profile": map[string]any{"age": 30}}}},
		{Type: domain.ActionUpdateNested, Args: map[string]any{"path": []any{"work_and_projects", "current"}, "value": "garden"}},
		{Type: domain.ActionAppendToList, Args: map[string]any{"path": "health_and_wellness.habits", "value": "run"}},
		{Type: domain.ActionRemoveFromList, Args: map[string]any{"path": "health_and_wellness.habits", "value": "smoke"}},
		{Type: domain.ActionRetrieveData, Args: map[string]any{"path": "personal_info.profile"}},
	})
	require.Len(t, records, 6)
	for _, record := range records {
		assert.True(t, record.Success, "%s: %s", record.Type, record.Error)
	}

	assert.Equal(t, "Memory updated", records[0].Result)
	assert.Equal(t, "Updated work_and_projects.current", records[2].Result)
	assert.Equal(t, "Appended to health_and_wellness.habits", records[3].Result)
	assert.Equal(t, "Value not found in health_and_wellness.habits", records[4].Result)

	profile, ok := records[5].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane", profile["full_name"])
	assert.EqualValues(t, 30, profile["age"])
}

func TestExecutorPartialFailureKeepsGoing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	records := env.executor.ExecuteAll(ctx, []domain.Action{
		{Type: "launch_rocket"},
		{Type: domain.ActionUpdateNested, Args: map[string]any{"value": "x"}},
		{Type: domain.ActionAddTask, Args: map[string]any{"task": "buy milk"}},
	})
	require.Len(t, records, 3)

	assert.False(t, records[0].Success)
	assert.Contains(t, records[0].Error, domain.ErrUnknownAction.Error())
	assert.False(t, records[1].Success)
	assert.Contains(t, records[1].Error, domain.ErrEmptyPath.Error())
	assert.True(t, records[2].Success)
	assert.Equal(t, 2, domain.FailedActions(records))

	entries, err := env.changes.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "launch_rocket", entries[0].ActionType)
	assert.False(t, entries[0].Success)
	assert.True(t, strings.HasPrefix(entries[0].Result, "Error: "))
	assert.Equal(t, "Added task: buy milk", entries[2].Result)
	assert.Contains(t, entries[2].Action, `"type":"add_task"`)
}

func TestExecutorTaskListActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	records := env.executor.ExecuteAll(ctx, []domain.Action{
		{Type: domain.ActionAddTask, Args: map[string]any{"task": "call mom"}},
		{Type: domain.ActionCompleteTask, Args: map[string]any{"task": "call mom"}},
		{Type: domain.ActionCompleteTask, Args: map[string]any{"task": "walk dog"}},
		{Type: domain.ActionRetrieveData, Args: map[string]any{"data_type": "tasks"}},
	})

	assert.Equal(t, "Added task: call mom", records[0].Result)
	assert.Equal(t, "Completed task: call mom", records[1].Result)
	assert.Equal(t, "Task not found: walk dog", records[2].Result)
	assert.Contains(t, records[3].Result, "- [x] call mom")
}

func TestExecutorSequenceAndQueueActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	records := env.executor.ExecuteAll(ctx, []domain.Action{
		{Type: domain.ActionCreateTaskSequence, Args: map[string]any{"sequence_name": "Move", "tasks": []any{"pack", map[string]any{"description": "ship"}}}},
		{Type: domain.ActionQueueTask, Args: map[string]any{"description": "renew passport", "priority": "high"}},
		{Type: domain.ActionAddConstantTask, Args: map[string]any{"description": "check mail", "interval": "daily"}},
		{Type: domain.ActionAddConstantTask, Args: map[string]any{"description": "check mail"}},
	})
	for _, record := range records {
		require.True(t, record.Success, "%s: %s", record.Type, record.Error)
	}

	created, ok := records[0].Result.(map[string]any)
	require.True(t, ok)
	id, _ := created["sequence_id"].(string)
	seq := snapshotTasks(t, env).ActiveSequences[id]
	assert.Equal(t, []domain.SequenceTask{"pack", "ship"}, seq.Tasks)

	assert.Equal(t, "Queued task: renew passport", records[1].Result)
	buffered, err := env.channel.DrainTaskBuffer(ctx)
	require.NoError(t, err)
	require.Len(t, buffered, 1)
	assert.Equal(t, domain.PriorityHigh, buffered[0].Priority)

	assert.Equal(t, "Added constant task: check mail (daily)", records[2].Result)
	assert.Equal(t, "Constant task already exists: check mail", records[3].Result)
}

func TestExecutorRemindAndTime(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	records := env.executor.ExecuteAll(ctx, []domain.Action{
		{Type: domain.ActionRemind, Args: map[string]any{"task": "dentist", "time_str": "tomorrow 9am"}},
		{Type: domain.ActionGetTime},
	})

	assert.Equal(t, "Reminder set for 'dentist' at tomorrow 9am.", records[0].Result)
	assert.Equal(t, "2026-03-01 09:00:00", records[1].Result)

	reminders, ok, err := env.memory.Get(ctx, domain.DocumentUser, []string{"calendar_and_events", "reminders"})
	require.NoError(t, err)
	require.True(t, ok)
	list, ok := reminders.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "dentist", list[0].(map[string]any)["task"])
}

func TestExecutorRecoversFromPanickingAction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tasks := mocks.NewMockTaskList(t)
	tasks.EXPECT().Add(mockAnyContext(), "boom").RunAndReturn(func(context.Context, string) (bool, error) {
		panic("disk on fire")
	})
	tasks.EXPECT().Add(mockAnyContext(), "fine").Return(true, nil)
	executor := NewExecutor(ExecutorDeps{Memory: env.memory, TaskList: tasks, ChangeLog: env.changes, Clock: env.clock})

	records := executor.ExecuteAll(context.Background(), []domain.Action{
		{Type: domain.ActionAddTask, Args: map[string]any{"task": "boom"}},
		{Type: domain.ActionAddTask, Args: map[string]any{"task": "fine"}},
	})

	assert.False(t, records[0].Success)
	assert.Equal(t, "panic: disk on fire", records[0].Error)
	assert.True(t, records[1].Success)
}

func TestExecutorChangeLogFailureDoesNotFailAction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	changes := mocks.NewMockChangeLog(t)
	changes.EXPECT().Append(mockAnyContext(), mock.Anything).Return(errors.New("database is locked"))
	executor := NewExecutor(ExecutorDeps{Memory: env.memory, ChangeLog: changes, Clock: env.clock})

	record := executor.Execute(context.Background(), domain.Action{Type: domain.ActionGetTime})
	assert.True(t, record.Success)
}
