package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantTaskServiceAddDeduplicatesByDescription(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	task, added, err := env.constants.Add(ctx, domain.ConstantTask{Description: " stretch "})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "stretch", task.Description)
	assert.Equal(t, domain.IntervalEveryCycle, task.Interval)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Nil(t, task.LastExecuted)

	_, added, err = env.constants.Add(ctx, domain.ConstantTask{Description: "stretch", Interval: domain.IntervalDaily})
	require.NoError(t, err)
	assert.False(t, added)

	tasks, err := env.constants.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.IntervalEveryCycle, tasks[0].Interval)

	_, _, err = env.constants.Add(ctx, domain.ConstantTask{})
	require.Error(t, err)
}

func TestConstantTaskServiceEnqueueDue(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.constants.Add(ctx, domain.ConstantTask{Description: "check inbox"})
	require.NoError(t, err)
	_, _, err = env.constants.Add(ctx, domain.ConstantTask{Description: "review budget", Interval: domain.IntervalHourly})
	require.NoError(t, err)

	due, err := env.constants.EnqueueDue(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	env.clock.Advance(10 * time.Minute)
	due, err = env.constants.EnqueueDue(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "check inbox", due[0].Description)

	buffered, err := env.channel.DrainTaskBuffer(ctx)
	require.NoError(t, err)
	require.Len(t, buffered, 3)
	for _, task := range buffered {
		assert.Equal(t, "constant", task.Type)
	}

	tasks, err := env.constants.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, tasks[1].LastExecuted)
	assert.Equal(t, domain.FormatTimestamp(env.clock.Now().Add(-10*time.Minute)), *tasks[1].LastExecuted)

	lines, err := env.activity.Tail(10)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Executing constant task: check inbox")
}

func TestConstantTaskServiceRunSchedulerStopsOnCancel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, _, err := env.constants.Add(context.Background(), domain.ConstantTask{Description: "ping"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.constants.RunScheduler(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		tasks, err := env.constants.List(context.Background())
		return err == nil && len(tasks) == 1 && tasks[0].LastExecuted != nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
