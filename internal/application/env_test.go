package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/life-assistant/internal/adapters/changelog/sqlite"
	"github.com/bnema/life-assistant/internal/adapters/journal"
	"github.com/bnema/life-assistant/internal/adapters/repo/jsonfile"
	"github.com/bnema/life-assistant/internal/adapters/tasklist/markdown"
	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	cfg       *viper.Viper
	clock     *testClock
	store     *jsonfile.MemoryStore
	channel   *jsonfile.Channel
	tasks     *markdown.TaskList
	changes   *sqlite.Store
	activity  *journal.Activity
	memory    *MemoryService
	queue     *QueueService
	sequences *SequenceEngine
	constants *ConstantTaskService
	executor  *Executor
	status    *StatusQuery
	reasoner  *mocks.MockReasoner
	backend   *Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := viper.New()
	cfg.Set(config.KeyDataDir, t.TempDir())

	env := &testEnv{cfg: cfg, clock: newTestClock()}

	var err error
	env.store, err = jsonfile.NewMemoryStore(cfg, env.clock, nil)
	require.NoError(t, err)
	env.channel, err = jsonfile.NewChannel(cfg, nil)
	require.NoError(t, err)
	env.tasks, err = markdown.NewTaskList(cfg)
	require.NoError(t, err)
	env.activity, err = journal.NewActivity(cfg, env.clock)
	require.NoError(t, err)
	env.changes, err = sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.changes.Close() })

	env.memory = NewMemoryService(env.store, RoleBackend, nil)
	env.queue = NewQueueService(env.store, env.clock, 10*time.Minute)
	env.sequences = NewSequenceEngine(env.store, WithSequenceClock(env.clock))
	env.constants = NewConstantTaskService(env.store, env.channel, env.activity, env.clock, nil)
	env.status = NewStatusQuery(env.store)
	env.executor = NewExecutor(ExecutorDeps{
		Memory:        env.memory,
		Sequences:     env.sequences,
		ConstantTasks: env.constants,
		TaskList:      env.tasks,
		Channel:       env.channel,
		ChangeLog:     env.changes,
		Clock:         env.clock,
	})
	env.reasoner = mocks.NewMockReasoner(t)
	env.backend = NewBackend(BackendDeps{
		Store:     env.store,
		Channel:   env.channel,
		Reasoner:  env.reasoner,
		TaskList:  env.tasks,
		Executor:  env.executor,
		Sequences: env.sequences,
		Queue:     env.queue,
		Status:    env.status,
		Activity:  env.activity,
		Clock:     env.clock,
		IdleSleep: 10 * time.Millisecond,
	})

	return env
}

func mockAnyContext() interface{} {
	return mock.Anything
}
