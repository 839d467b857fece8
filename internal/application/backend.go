package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultIdleSleep           = time.Second
	DefaultSystemCheckInterval = 5 * time.Minute

	noActionsSummary = "I understood your request but couldn't determine specific actions to take."
)

type BackendDeps struct {
	Store     ports.MemoryStore
	Channel   ports.Channel
	Notifier  ports.Notifier
	Reasoner  ports.Reasoner
	TaskList  ports.TaskList
	Executor  *Executor
	Sequences *SequenceEngine
	Queue     *QueueService
	Status    *StatusQuery
	Activity  ports.ActivityLog
	Thoughts  ports.ThoughtLog
	Metrics   ports.Metrics
	Clock     ports.Clock
	Logger    *zap.Logger

	IdleSleep           time.Duration
	SystemCheckInterval time.Duration
}

// Backend is the processing loop. A new request always takes the whole cycle;
// the task buffer and the processing queue are only drained when no request
// is waiting.
type Backend struct {
	deps BackendDeps

	mu              sync.Mutex
	paused          bool
	lastSystemCheck time.Time
}

func NewBackend(deps BackendDeps) *Backend {
	if deps.Notifier == nil {
		deps.Notifier = ports.PollingNotifier{}
	}
	if deps.Activity == nil {
		deps.Activity = ports.NopActivityLog{}
	}
	if deps.Thoughts == nil {
		deps.Thoughts = ports.NopThoughtLog{}
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.IdleSleep <= 0 {
		deps.IdleSleep = DefaultIdleSleep
	}
	if deps.SystemCheckInterval <= 0 {
		deps.SystemCheckInterval = DefaultSystemCheckInterval
	}

	return &Backend{deps: deps}
}

func (b *Backend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Run cycles until ctx is cancelled or a pause request is handled. Cycle
// errors are logged and never end the loop.
func (b *Backend) Run(ctx context.Context) error {
	b.deps.Logger.Info("backend loop started")
	b.deps.Thoughts.Log(domain.ThoughtThinking, "Backend loop started")

	for {
		if ctx.Err() != nil {
			b.deps.Logger.Info("backend loop stopped")
			return nil
		}

		worked, err := b.RunCycle(ctx)
		if err != nil && ctx.Err() == nil {
			b.deps.Logger.Error("backend cycle failed", zap.Error(err))
			b.deps.Thoughts.Log(domain.ThoughtError, "Error in backend cycle: "+err.Error())
		}

		if b.Paused() {
			b.deps.Logger.Info("backend loop paused")
			return nil
		}
		if !worked {
			b.wait(ctx)
		}
	}
}

func (b *Backend) RunCycle(ctx context.Context) (bool, error) {
	defer b.deps.Metrics.CycleCompleted()

	req, ok, err := b.pendingRequest(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		b.ProcessRequest(ctx, req)
		return true, nil
	}

	return b.ProcessBackground(ctx)
}

// ProcessRequest handles req and writes exactly one response for it, an error
// response included when handling fails or panics.
func (b *Backend) ProcessRequest(ctx context.Context, req domain.Request) (resp domain.Response) {
	logger := b.deps.Logger.With(zap.String("request_id", req.ID), zap.String("type", string(req.Type)))
	logger.Info("processing request")
	b.deps.Thoughts.Log(domain.ThoughtThinking, fmt.Sprintf("Processing request %s", req.ID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("request handler panicked", zap.Any("panic", r))
			resp = b.errorResponse(req, fmt.Errorf("panic: %v", r))
		}

		writeCtx := context.WithoutCancel(ctx)
		if err := b.deps.Channel.WriteResponse(writeCtx, resp); err != nil {
			logger.Error("write response", zap.Error(err))
		}
		b.deps.Metrics.RequestProcessed(string(resp.Status))
		if err := b.deps.Activity.Record(writeCtx, fmt.Sprintf("Processed request %s: %s", req.ID, resp.Status)); err != nil {
			logger.Warn("record activity", zap.Error(err))
		}
	}()

	// Nothing runs unless the id is recorded first.
	if err := b.markProcessed(ctx, req); err != nil {
		logger.Error("record request bookkeeping", zap.Error(err))
		b.deps.Thoughts.Log(domain.ThoughtError, "Error processing request: "+err.Error())
		return b.errorResponse(req, fmt.Errorf("record request: %w", err))
	}

	resp, err := b.handle(ctx, req)
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		b.deps.Thoughts.Log(domain.ThoughtError, "Error processing request: "+err.Error())
		return b.errorResponse(req, err)
	}

	b.deps.Thoughts.Log(domain.ThoughtSuccess, fmt.Sprintf("Completed request %s", req.ID))
	return resp
}

func (b *Backend) handle(ctx context.Context, req domain.Request) (domain.Response, error) {
	switch req.Type {
	case domain.RequestTypePause:
		b.mu.Lock()
		b.paused = true
		b.mu.Unlock()
		return b.successResponse(req, "Backend paused."), nil
	case domain.RequestTypeStatus:
		return b.statusResponse(ctx, req)
	default:
		return b.runPipeline(ctx, req)
	}
}

// statusResponse is the fast path: it reports sequence progress without
// reasoning or executing anything.
func (b *Backend) statusResponse(ctx context.Context, req domain.Request) (domain.Response, error) {
	check, err := b.deps.Sequences.Check(ctx)
	if err != nil {
		return domain.Response{}, err
	}
	if check.Active {
		resp := b.successResponse(req, fmt.Sprintf("%s %s", domain.SequenceInProgressMessage, Progress(check.Sequence)))
		resp.MultiCycleStatus = domain.MultiCycleStatusActive
		return resp, nil
	}

	if b.deps.Status == nil {
		return b.successResponse(req, "No active task sequence."), nil
	}
	snapshot, err := b.deps.Status.Snapshot(ctx)
	if err != nil {
		return domain.Response{}, err
	}

	return b.successResponse(req, snapshot.Summary()), nil
}

// runPipeline reasons about the directive and executes the resulting plan. An
// active sequence step is injected first and advanced only once the plan ran.
func (b *Backend) runPipeline(ctx context.Context, req domain.Request) (domain.Response, error) {
	directives := req.Directives()

	check, err := b.deps.Sequences.Check(ctx)
	if err != nil {
		return domain.Response{}, err
	}
	if check.Active {
		directives[domain.DirectiveCurrentTask] = string(check.Task)
	}

	plan, err := b.plan(ctx, directives, check.Active)
	if err != nil {
		if check.Active {
			if _, _, failErr := b.deps.Sequences.RecordFailure(ctx, check.Sequence.ID, err); failErr != nil {
				b.deps.Logger.Warn("record sequence failure", zap.String("sequence_id", check.Sequence.ID), zap.Error(failErr))
			}
		}
		return domain.Response{}, err
	}

	records := b.deps.Executor.ExecuteAll(ctx, plan.Actions)
	if failed := domain.FailedActions(records); failed > 0 {
		b.deps.Logger.Warn("some actions failed", zap.Int("failed", failed), zap.Int("total", len(records)))
	}

	resp := b.successResponse(req, plan.Summary)
	resp.Actions = records

	if check.Active {
		_, completed, err := b.deps.Sequences.Advance(ctx, check.Sequence.ID, records)
		if err != nil {
			b.deps.Logger.Warn("advance sequence", zap.String("sequence_id", check.Sequence.ID), zap.Error(err))
		} else if !completed {
			resp.MultiCycleStatus = domain.MultiCycleStatusActive
		}
	}

	return resp, nil
}

// plan executes a direct directive as-is unless a sequence step needs the
// reasoning call.
func (b *Backend) plan(ctx context.Context, directives domain.Document, stepActive bool) (domain.Plan, error) {
	if !stepActive {
		if action, ok := domain.ActionFromDirective(directives); ok {
			b.deps.Thoughts.Log(domain.ThoughtAction, "Executing direct directive: "+action.Type)
			return domain.Plan{Actions: []domain.Action{action}, Summary: actionsSummary(1)}, nil
		}
	}

	if b.deps.Reasoner == nil {
		return domain.Plan{Summary: noActionsSummary}, nil
	}

	input := domain.ReasoningInput{Directives: directives}
	if b.deps.TaskList != nil {
		text, err := b.deps.TaskList.Read(ctx)
		if err != nil {
			b.deps.Logger.Warn("read task list", zap.Error(err))
		}
		input.TaskList = text
	}
	system, err := b.deps.Store.Load(ctx, domain.DocumentSystem)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("load system memory: %w", err)
	}
	input.System = system

	b.deps.Thoughts.Log(domain.ThoughtThinking, "Reasoning about directive")
	plan, err := b.deps.Reasoner.Reason(ctx, input)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("reason: %w", err)
	}
	if plan.Thoughts != "" {
		b.deps.Thoughts.Log(domain.ThoughtThinking, plan.Thoughts)
	}
	if plan.Summary == "" {
		plan.Summary = actionsSummary(len(plan.Actions))
	}

	return plan, nil
}

// ProcessBackground runs the periodic system check, moves buffered tasks into
// the processing queue and drains the queue.
func (b *Backend) ProcessBackground(ctx context.Context) (bool, error) {
	var errs []error
	worked := false

	if b.systemCheckDue() {
		if err := b.systemCheck(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	tasks, err := b.deps.Channel.DrainTaskBuffer(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("drain task buffer: %w", err))
	}
	for _, task := range tasks {
		if _, err := b.deps.Queue.Enqueue(ctx, task); err != nil {
			b.deps.Logger.Error("dropping buffered task", zap.String("task", task.Description), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		b.record(ctx, "Received task: "+task.Description)
		worked = true
	}

	for ctx.Err() == nil {
		item, ok, err := b.deps.Queue.DequeueNext(ctx)
		if err != nil {
			errs = append(errs, err)
			break
		}
		if !ok {
			break
		}

		result := "Executed task: " + item.Task.Description
		b.deps.Thoughts.Log(domain.ThoughtTask, result)
		if _, err := b.deps.Queue.CompleteByID(ctx, item.ID, result); err != nil {
			errs = append(errs, err)
			break
		}
		b.record(ctx, result)
		b.deps.Metrics.QueueTaskExecuted()
		worked = true
	}

	return worked, errors.Join(errs...)
}

func (b *Backend) pendingRequest(ctx context.Context) (domain.Request, bool, error) {
	req, ok, err := b.deps.Channel.ReadRequest(ctx)
	if err != nil || !ok {
		return domain.Request{}, false, err
	}

	system, err := b.deps.Store.Load(ctx, domain.DocumentSystem)
	if err != nil {
		return domain.Request{}, false, fmt.Errorf("load system memory: %w", err)
	}
	var state domain.InternalState
	if err := system.Decode(domain.KeyInternalState, &state); err != nil {
		return domain.Request{}, false, err
	}

	if state.LastProcessedRequestID == req.ID {
		return domain.Request{}, false, nil
	}

	return req, true, nil
}

// markProcessed stamps the request as consumed before it is handled so a
// crash mid-request never replays it.
func (b *Backend) markProcessed(ctx context.Context, req domain.Request) error {
	_, err := b.deps.Store.Mutate(ctx, domain.DocumentSystem, func(doc domain.Document) error {
		now := domain.FormatTimestamp(b.deps.Clock.Now())
		if err := doc.SetPath([]string{domain.KeyInternalState, "last_processed_request_id"}, req.ID); err != nil {
			return err
		}
		if err := doc.SetPath([]string{domain.KeyInternalState, "last_request_time"}, now); err != nil {
			return err
		}

		var counters domain.SystemCounters
		if err := doc.Decode(domain.KeySystem, &counters); err != nil {
			return err
		}
		return doc.SetPath([]string{domain.KeySystem, "cycles_completed"}, counters.CyclesCompleted+1)
	})

	return err
}

func (b *Backend) systemCheckDue() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.deps.Clock.Now()
	if !b.lastSystemCheck.IsZero() && now.Sub(b.lastSystemCheck) < b.deps.SystemCheckInterval {
		return false
	}
	b.lastSystemCheck = now
	return true
}

func (b *Backend) systemCheck(ctx context.Context) error {
	b.deps.Thoughts.Log(domain.ThoughtThinking, "Performing periodic system check")

	_, err := b.deps.Store.Mutate(ctx, domain.DocumentSystem, func(doc domain.Document) error {
		return doc.SetPath([]string{domain.KeySystem, "last_system_check"}, domain.FormatTimestamp(b.deps.Clock.Now()))
	})
	if err != nil {
		return fmt.Errorf("stamp system check: %w", err)
	}

	requeued, err := b.deps.Queue.RequeueExpired(ctx)
	if err != nil {
		return err
	}
	for _, item := range requeued {
		b.deps.Logger.Warn("requeued expired task", zap.String("id", item.ID), zap.Int("attempts", item.Attempts))
	}

	return nil
}

func (b *Backend) wait(ctx context.Context) {
	timer := time.NewTimer(b.deps.IdleSleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-b.deps.Notifier.Events():
	case <-timer.C:
	}
}

func (b *Backend) record(ctx context.Context, line string) {
	if err := b.deps.Activity.Record(ctx, line); err != nil {
		b.deps.Logger.Warn("record activity", zap.Error(err))
	}
}

func (b *Backend) successResponse(req domain.Request, content any) domain.Response {
	return domain.Response{
		ID:        req.ID,
		Status:    domain.ResponseSuccess,
		Content:   content,
		Timestamp: domain.FormatTimestamp(b.deps.Clock.Now()),
	}
}

func (b *Backend) errorResponse(req domain.Request, err error) domain.Response {
	return domain.Response{
		ID:        req.ID,
		Status:    domain.ResponseError,
		Content:   "Error during request processing: " + err.Error(),
		Timestamp: domain.FormatTimestamp(b.deps.Clock.Now()),
	}
}

func actionsSummary(n int) string {
	if n == 0 {
		return noActionsSummary
	}

	return fmt.Sprintf("Generated %d actions to fulfill your request.", n)
}
