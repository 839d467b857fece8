package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/life-assistant/internal/adapters/repo/jsonfile"
	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(stdout))

	stdout, _, err = executeCLI(t, t.TempDir(), "version", "--long")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "la "))
	assert.Contains(t, stdout, "go")
}

func TestInvalidLogLevelFailsEveryCommand(t *testing.T) {
	t.Setenv("LA_LOG_LEVEL", "chatty")

	_, _, err := executeCLI(t, t.TempDir(), "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestConfigInitWritesFileOnce(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".life-assistant", "config.toml")
	assert.Contains(t, stdout, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[backend]")
	assert.Contains(t, string(data), "sequence_max_attempts = 3")

	_, _, err = executeCLI(t, home, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file already exists")

	_, _, err = executeCLI(t, home, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowReflectsEnvironment(t *testing.T) {
	t.Setenv("LA_BACKEND_IDLE_SLEEP", "2s")
	t.Setenv("LA_REASONING_FRONTEND_MODEL", "tiny-model")

	stdout, _, err := executeCLI(t, t.TempDir(), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "idle_sleep")
	assert.Contains(t, stdout, "2s")
	assert.Contains(t, stdout, "tiny-model")
}

func TestStatusOnFreshDataDir(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Life Assistant")
	assert.Contains(t, stdout, "No active task sequences.")
	assert.Contains(t, stdout, "Queue is empty.")

	stdout, _, err = executeCLI(t, home, "status", "--format", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"active_sequences"`)

	stdout, _, err = executeCLI(t, home, "status", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cycles_completed: 0")

	_, _, err = executeCLI(t, home, "status", "--format", "xml")
	require.Error(t, err)
}

func TestSequenceCreateListAndFail(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"sequence", "create",
		"--name", "Move flat",
		"--task", "pack boxes",
		"--task", "book van",
		"--priority", "high",
	)
	require.NoError(t, err)
	fields := strings.Fields(stdout)
	require.GreaterOrEqual(t, len(fields), 3)
	id := fields[2]
	assert.True(t, strings.HasPrefix(id, "seq_"))
	assert.Contains(t, stdout, "(2 steps)")

	stdout, _, err = executeCLI(t, home, "sequence", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* "+id)
	assert.Contains(t, stdout, "Move flat: step 1 of 2 (pack boxes)")
	assert.Contains(t, stdout, "high")

	stdout, _, err = executeCLI(t, home, "sequence", "fail", id, "--reason", "plans changed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "marked failed")

	stdout, _, err = executeCLI(t, home, "sequence", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No active task sequences.")
	assert.Contains(t, stdout, id+" [failed]")
}

func TestSequenceCreateRequiresTasks(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "sequence", "create", "--name", "Empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--task")
}

func TestQueueAddWritesTaskBuffer(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "queue", "add", "renew", "passport", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, stdout, "buffered task: renew passport")

	data, err := os.ReadFile(filepath.Join(home, ".life-assistant", "src", jsonfile.TaskBufferFileName))
	require.NoError(t, err)

	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "renew passport", tasks[0].Description)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)

	stdout, _, err = executeCLI(t, home, "queue", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Queue is empty.")
}

func TestQueueCompleteFinishesEntryByIndex(t *testing.T) {
	home := t.TempDir()

	cfg := viper.New()
	cfg.Set(config.KeyDataDir, filepath.Join(home, ".life-assistant"))
	store, err := jsonfile.NewMemoryStore(cfg, nil, nil)
	require.NoError(t, err)
	queue := application.NewQueueService(store, nil, 0)
	for _, description := range []string{"call plumber", "book dentist"} {
		_, err := queue.Enqueue(context.Background(), domain.Task{Description: description, Priority: domain.PriorityMedium})
		require.NoError(t, err)
	}

	stdout, _, err := executeCLI(t, home, "queue", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n1 ")
	assert.Contains(t, stdout, "book dentist")

	stdout, _, err = executeCLI(t, home, "queue", "complete", "1", "--result", "booked for friday")
	require.NoError(t, err)
	assert.Contains(t, stdout, ": book dentist")

	stdout, _, err = executeCLI(t, home, "queue", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "call plumber")
	assert.NotContains(t, stdout, "book dentist")

	_, _, err = executeCLI(t, home, "queue", "complete", "4")
	require.ErrorIs(t, err, domain.ErrQueueItemNotFound)

	_, _, err = executeCLI(t, home, "queue", "complete", "first")
	require.Error(t, err)
}

func TestQueueConstantAddDeduplicates(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "queue", "constant", "add", "check", "inbox", "--interval", "hourly")
	require.NoError(t, err)
	assert.Contains(t, stdout, "added constant task: check inbox (hourly)")

	_, _, err = executeCLI(t, home, "queue", "constant", "add", "check inbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "queue", "constant", "add", "water plants", "--interval", "monthly")
	require.Error(t, err)

	stdout, _, err = executeCLI(t, home, "queue", "constant", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "check inbox [hourly, medium] last run: never")
}

func TestMemorySetThenGet(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "memory", "set", "personal_info.name", "Ada")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "memory", "set", "health_and_wellness.sleep_hours", "7.5")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "memory", "get", "personal_info.name")
	require.NoError(t, err)
	assert.Equal(t, "\"Ada\"\n", stdout)

	stdout, _, err = executeCLI(t, home, "memory", "get", "health_and_wellness", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sleep_hours: 7.5")

	stdout, _, err = executeCLI(t, home, "memory", "search", "ada")
	require.NoError(t, err)
	assert.Contains(t, stdout, "personal_info.name")

	_, _, err = executeCLI(t, home, "memory", "get", "personal_info.missing")
	require.Error(t, err)
}

func TestMemorySetRefusesBackendDocument(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "memory", "set", "processing_queue", "[]", "--kind", "backend")
	require.ErrorIs(t, err, domain.ErrBackendPartition)
}

func TestSendNoWaitThenBackendOnceAnswers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LA_REASONING_ENABLED", "false")

	stdout, _, err := executeCLI(t, home, "send", "--no-wait", `{"action":"get_time"}`)
	require.NoError(t, err)
	id := strings.TrimSpace(stdout)
	require.NotEmpty(t, id)

	channelDir := filepath.Join(home, ".life-assistant", "src")
	data, err := os.ReadFile(filepath.Join(channelDir, jsonfile.RequestFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "get_time")

	stdout, _, err = executeCLI(t, home, "backend", "--once")
	require.NoError(t, err)
	assert.Equal(t, "cycle complete: work done\n", stdout)

	data, err = os.ReadFile(filepath.Join(channelDir, jsonfile.ResponseFileName))
	require.NoError(t, err)
	var resp domain.Response
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, domain.ResponseSuccess, resp.Status)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "get_time", resp.Actions[0].Type)
	assert.True(t, resp.Actions[0].Success)

	stdout, _, err = executeCLI(t, home, "backend", "--once")
	require.NoError(t, err)
	assert.Equal(t, "cycle complete: idle\n", stdout)

	stdout, _, err = executeCLI(t, home, "memory", "changes")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"type":"get_time"`)
}

func TestBackendOnceDrainsBufferedTasks(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LA_REASONING_ENABLED", "false")

	_, _, err := executeCLI(t, home, "queue", "add", "file taxes")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "backend", "--once")
	require.NoError(t, err)

	log, err := os.ReadFile(filepath.Join(home, ".life-assistant", "data-backend", "backend_log.md"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "Received task: file taxes")
}

func TestSendRejectsUnknownType(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "send", "--type", "shout", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported request type")
}

func TestChatHandlesLocalCommands(t *testing.T) {
	stdout, _, err := executeCLIWithInput(t, t.TempDir(), "debug on\n\ndebug off\nquit\n", "chat", "--plain", "--raw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Life assistant ready.")
	assert.Contains(t, stdout, "Debug output enabled.")
	assert.Contains(t, stdout, "Debug output disabled.")
	assert.Contains(t, stdout, "Goodbye.")
}

func TestChatReportsTimeoutWhenBackendIsDown(t *testing.T) {
	t.Setenv("LA_FRONTEND_MAX_WAIT", "50ms")
	t.Setenv("LA_FRONTEND_POLL_INTERVAL", "10ms")

	stdout, _, err := executeCLIWithInput(t, t.TempDir(), "status\nexit\n", "chat", "--plain", "--raw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Assistant: "+application.TimeoutMessage)
	assert.Contains(t, stdout, "Goodbye.")
}

func TestChatEndsOnEOF(t *testing.T) {
	stdout, _, err := executeCLIWithInput(t, t.TempDir(), "", "chat", "--plain")
	require.NoError(t, err)
	assert.Contains(t, stdout, "You: ")
}

func TestWriteReplyDebugListsActions(t *testing.T) {
	out := &bytes.Buffer{}

	err := writeReply(out, nil, domain.Response{
		Status:  domain.ResponseSuccess,
		Content: "Generated 2 actions to fulfill your request.",
		Actions: []domain.ActionRecord{
			{Type: "add_task", Result: "Added task: buy milk", Success: true},
			{Type: "complete_task", Error: "task list unavailable"},
		},
		MultiCycleStatus: domain.MultiCycleStatusActive,
	}, true)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Assistant: Generated 2 actions")
	assert.Contains(t, out.String(), "[ok] add_task: Added task: buy milk")
	assert.Contains(t, out.String(), "[failed] complete_task: task list unavailable")
	assert.Contains(t, out.String(), "sequence: active")
}

func TestRequestContentParsesDirectives(t *testing.T) {
	assert.Equal(t, map[string]any{"action": "get_time"}, requestContent(`{"action":"get_time"}`))
	assert.Equal(t, "{not json", requestContent("{not json"))
	assert.Equal(t, "hello", requestContent("hello"))
	assert.Nil(t, requestContent(""))
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(io.Reader(strings.NewReader(input)))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
