package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

const (
	reminderSection = "calendar_and_events"
	reminderKey     = "reminders"
	timeLayout      = "2006-01-02 15:04:05"
)

type ExecutorDeps struct {
	Memory        *MemoryService
	Sequences     *SequenceEngine
	ConstantTasks *ConstantTaskService
	TaskList      ports.TaskList
	Channel       ports.Channel
	ChangeLog     ports.ChangeLog
	Clock         ports.Clock
	Logger        *zap.Logger
	Thoughts      ports.ThoughtLog
}

// Executor runs planned actions against memory, the task list and the
// queues. One action failing never stops the rest of a batch.
type Executor struct {
	deps     ExecutorDeps
	handlers map[string]func(context.Context, map[string]any) (any, error)
}

func NewExecutor(deps ExecutorDeps) *Executor {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Thoughts == nil {
		deps.Thoughts = ports.NopThoughtLog{}
	}

	e := &Executor{deps: deps}
	e.handlers = map[string]func(context.Context, map[string]any) (any, error){
		domain.ActionUpdateMemory:       e.updateMemory,
		domain.ActionUpdateNested:       e.updateNested,
		domain.ActionAppendToList:       e.appendToList,
		domain.ActionRemoveFromList:     e.removeFromList,
		domain.ActionRetrieveData:       e.retrieveData,
		domain.ActionCreateTaskSequence: e.createTaskSequence,
		domain.ActionAddTask:            e.addTask,
		domain.ActionCompleteTask:       e.completeTask,
		domain.ActionAddConstantTask:    e.addConstantTask,
		domain.ActionQueueTask:          e.queueTask,
		domain.ActionRemind:             e.remind,
		domain.ActionGetTime:            e.getTime,
	}

	return e
}

func (e *Executor) ExecuteAll(ctx context.Context, actions []domain.Action) []domain.ActionRecord {
	records := make([]domain.ActionRecord, 0, len(actions))
	for _, action := range actions {
		records = append(records, e.Execute(ctx, action))
	}

	return records
}

func (e *Executor) Execute(ctx context.Context, action domain.Action) (record domain.ActionRecord) {
	if action.Args == nil {
		action.Args = map[string]any{}
	}
	record = domain.ActionRecord{Type: action.Type, Args: action.Args}

	defer func() {
		if r := recover(); r != nil {
			record.Result = nil
			record.Success = false
			record.Error = fmt.Sprintf("panic: %v", r)
			e.deps.Logger.Error("action panicked", zap.String("action", action.Type), zap.Any("panic", r))
		}
		e.logChange(ctx, action, record)
	}()

	result, err := e.run(ctx, action)
	if err != nil {
		record.Error = err.Error()
		e.deps.Thoughts.Log(domain.ThoughtError, fmt.Sprintf("Action %s failed: %v", action.Type, err))
		return record
	}

	record.Result = result
	record.Success = true
	e.deps.Thoughts.Log(domain.ThoughtAction, fmt.Sprintf("Executed %s", action.Type))
	return record
}

func (e *Executor) run(ctx context.Context, action domain.Action) (any, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	handler, ok := e.handlers[action.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAction, action.Type)
	}

	return handler(ctx, action.Args)
}

func (e *Executor) logChange(ctx context.Context, action domain.Action, record domain.ActionRecord) {
	if e.deps.ChangeLog == nil {
		return
	}

	encoded, err := json.Marshal(action)
	if err != nil {
		encoded = []byte(fmt.Sprintf("{%q:%q}", "type", action.Type))
	}

	result := fmt.Sprint(record.Result)
	if !record.Success {
		result = "Error: " + record.Error
	} else if s, ok := record.Result.(string); ok {
		result = s
	} else if data, err := json.Marshal(record.Result); err == nil {
		result = string(data)
	}

	entry := domain.ChangeEntry{
		RecordedAt: domain.FormatTimestamp(e.deps.Clock.Now()),
		ActionType: action.Type,
		Action:     string(encoded),
		Result:     result,
		Success:    record.Success,
	}
	if err := e.deps.ChangeLog.Append(ctx, entry); err != nil {
		e.deps.Logger.Warn("append change log", zap.String("action", action.Type), zap.Error(err))
	}
}

// update_memory takes either {key: "a.b", value} or a partial user document.
func (e *Executor) updateMemory(ctx context.Context, args map[string]any) (any, error) {
	if key, ok := stringArg(args, "key"); ok {
		value, ok := args["value"]
		if !ok {
			return nil, fmt.Errorf("%w: update_memory needs value with key", domain.ErrInvalidAction)
		}
		path := domain.SplitPath(key)
		if len(path) == 0 {
			return nil, domain.ErrEmptyPath
		}
		if err := e.deps.Memory.SetPath(ctx, domain.DocumentUser, path, value); err != nil {
			return nil, err
		}
		e.deps.Thoughts.Log(domain.ThoughtMemory, "Updated "+strings.Join(path, "."))
		return "Memory updated", nil
	}

	partial := domain.Document{}
	for k, v := range args {
		partial[k] = v
	}
	if len(partial) == 0 {
		return nil, fmt.Errorf("%w: update_memory has nothing to merge", domain.ErrInvalidAction)
	}
	if _, err := e.deps.Memory.Update(ctx, domain.DocumentUser, partial); err != nil {
		return nil, err
	}

	e.deps.Thoughts.Log(domain.ThoughtMemory, "Merged memory update")
	return "Memory updated", nil
}

func (e *Executor) updateNested(ctx context.Context, args map[string]any) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok {
		return nil, fmt.Errorf("%w: update_nested needs value", domain.ErrInvalidAction)
	}
	if err := e.deps.Memory.SetPath(ctx, domain.DocumentUser, path, value); err != nil {
		return nil, err
	}

	return "Updated " + strings.Join(path, "."), nil
}

func (e *Executor) appendToList(ctx context.Context, args map[string]any) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok {
		return nil, fmt.Errorf("%w: append_to_list needs value", domain.ErrInvalidAction)
	}
	if err := e.deps.Memory.AppendToList(ctx, domain.DocumentUser, path, value); err != nil {
		return nil, err
	}

	return "Appended to " + strings.Join(path, "."), nil
}

func (e *Executor) removeFromList(ctx context.Context, args map[string]any) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	removed, err := e.deps.Memory.RemoveFromList(ctx, domain.DocumentUser, path, args["value"])
	if err != nil {
		return nil, err
	}
	if !removed {
		return "Value not found in " + strings.Join(path, "."), nil
	}

	return "Removed from " + strings.Join(path, "."), nil
}

func (e *Executor) retrieveData(ctx context.Context, args map[string]any) (any, error) {
	if dataType, _ := stringArg(args, "data_type"); dataType == "tasks" {
		if e.deps.TaskList == nil {
			return "", nil
		}
		return e.deps.TaskList.Read(ctx)
	}

	if _, ok := args["path"]; ok {
		return e.lookup(ctx, args)
	}
	if _, ok := args["key"]; ok {
		return e.lookup(ctx, args)
	}
	if section, ok := stringArg(args, "section"); ok {
		value, found, err := e.deps.Memory.Get(ctx, domain.DocumentUser, domain.SplitPath(section))
		if err != nil {
			return nil, err
		}
		if !found {
			return map[string]any{}, nil
		}
		return value, nil
	}
	if query, ok := stringArg(args, "query"); ok {
		return e.deps.Memory.Search(ctx, domain.DocumentUser, query)
	}

	return nil, fmt.Errorf("%w: retrieve_data needs path, section, query or data_type", domain.ErrInvalidAction)
}

func (e *Executor) lookup(ctx context.Context, args map[string]any) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	value, found, err := e.deps.Memory.Get(ctx, domain.DocumentUser, path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no data at %s", strings.Join(path, "."))
	}

	return value, nil
}

func (e *Executor) createTaskSequence(ctx context.Context, args map[string]any) (any, error) {
	name, ok := stringArg(args, "sequence_name", "name")
	if !ok {
		return nil, fmt.Errorf("%w: create_task_sequence needs sequence_name", domain.ErrInvalidAction)
	}

	var steps []any
	switch tasks := args["tasks"].(type) {
	case []any:
		steps = tasks
	case []string:
		for _, task := range tasks {
			steps = append(steps, task)
		}
	case nil:
	default:
		return nil, fmt.Errorf("%w: tasks must be a list", domain.ErrInvalidAction)
	}

	description, _ := stringArg(args, "description")
	priority, _ := stringArg(args, "priority")
	seq, err := e.deps.Sequences.Create(ctx, CreateSequenceInput{
		Name:        name,
		Description: description,
		Priority:    domain.ParsePriority(priority),
		Tasks:       domain.SequenceTasksFrom(steps),
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"sequence_id": seq.ID,
		"message":     fmt.Sprintf("Created task sequence '%s' with %d steps", seq.Name, len(seq.Tasks)),
	}, nil
}

func (e *Executor) addTask(ctx context.Context, args map[string]any) (any, error) {
	task, ok := stringArg(args, "task", "description")
	if !ok {
		return nil, fmt.Errorf("%w: add_task needs task", domain.ErrInvalidAction)
	}
	if _, err := e.deps.TaskList.Add(ctx, task); err != nil {
		return nil, err
	}

	return "Added task: " + task, nil
}

func (e *Executor) completeTask(ctx context.Context, args map[string]any) (any, error) {
	task, ok := stringArg(args, "task", "description")
	if !ok {
		return nil, fmt.Errorf("%w: complete_task needs task", domain.ErrInvalidAction)
	}
	done, err := e.deps.TaskList.Complete(ctx, task)
	if err != nil {
		return nil, err
	}
	if !done {
		return "Task not found: " + task, nil
	}

	return "Completed task: " + task, nil
}

func (e *Executor) addConstantTask(ctx context.Context, args map[string]any) (any, error) {
	description, ok := stringArg(args, "description", "task")
	if !ok {
		return nil, fmt.Errorf("%w: add_constant_task needs description", domain.ErrInvalidAction)
	}
	interval, _ := stringArg(args, "interval")
	priority, _ := stringArg(args, "priority")

	task, added, err := e.deps.ConstantTasks.Add(ctx, domain.ConstantTask{
		Description: description,
		Interval:    domain.Interval(interval),
		Priority:    domain.ParsePriority(priority),
	})
	if err != nil {
		return nil, err
	}
	if !added {
		return "Constant task already exists: " + task.Description, nil
	}

	return fmt.Sprintf("Added constant task: %s (%s)", task.Description, task.Interval), nil
}

func (e *Executor) queueTask(ctx context.Context, args map[string]any) (any, error) {
	description, ok := stringArg(args, "description", "task")
	if !ok {
		return nil, fmt.Errorf("%w: queue_task needs description", domain.ErrInvalidAction)
	}
	priority, _ := stringArg(args, "priority")
	taskType, _ := stringArg(args, "type")

	err := e.deps.Channel.AppendTaskBuffer(ctx, domain.Task{
		Description: description,
		Priority:    domain.ParsePriority(priority),
		Type:        taskType,
		AddedAt:     domain.FormatTimestamp(e.deps.Clock.Now()),
		Status:      string(domain.TaskPending),
	})
	if err != nil {
		return nil, err
	}

	return "Queued task: " + description, nil
}

func (e *Executor) remind(ctx context.Context, args map[string]any) (any, error) {
	task, ok := stringArg(args, "task", "description")
	if !ok {
		return nil, fmt.Errorf("%w: remind needs task", domain.ErrInvalidAction)
	}
	when, _ := stringArg(args, "time_str", "time")

	reminder := map[string]any{
		"task":       task,
		"time":       when,
		"created_at": domain.FormatTimestamp(e.deps.Clock.Now()),
	}
	if err := e.deps.Memory.AppendToList(ctx, domain.DocumentUser, []string{reminderSection, reminderKey}, reminder); err != nil {
		return nil, err
	}

	return fmt.Sprintf("Reminder set for '%s' at %s.", task, when), nil
}

func (e *Executor) getTime(context.Context, map[string]any) (any, error) {
	return e.deps.Clock.Now().Format(timeLayout), nil
}

func stringArg(args map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}

// pathArg reads "path" as a list of segments or a dotted string, falling back
// to "key".
func pathArg(args map[string]any) ([]string, error) {
	var path []string
	switch raw := args["path"].(type) {
	case []any:
		for _, segment := range raw {
			s, ok := segment.(string)
			if !ok {
				return nil, fmt.Errorf("%w: path segments must be strings", domain.ErrInvalidAction)
			}
			path = append(path, s)
		}
	case []string:
		path = append(path, raw...)
	case string:
		path = domain.SplitPath(raw)
	default:
		if key, ok := stringArg(args, "key"); ok {
			path = domain.SplitPath(key)
		}
	}

	if len(path) == 0 {
		return nil, domain.ErrEmptyPath
	}

	return path, nil
}
