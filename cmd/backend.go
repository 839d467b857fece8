package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/life-assistant/internal/adapters/changelog/sqlite"
	"github.com/bnema/life-assistant/internal/adapters/journal"
	"github.com/bnema/life-assistant/internal/adapters/metrics/prom"
	"github.com/bnema/life-assistant/internal/adapters/notify/fswatch"
	"github.com/bnema/life-assistant/internal/adapters/reasoning/ollama"
	"github.com/bnema/life-assistant/internal/adapters/repo/jsonfile"
	"github.com/bnema/life-assistant/internal/adapters/tasklist/markdown"
	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 5 * time.Second

func newBackendCmd(app *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run the backend processing loop",
		Long:  "Run the backend loop: answer frontend requests, advance task sequences, drain the task buffer and execute queued work until interrupted or paused.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := app.newBackendRuntime()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil {
					rt.logger.Warn("close backend resources", zap.Error(closeErr))
				}
			}()

			if once {
				worked, err := rt.runOnce(ctx)
				if err != nil {
					return err
				}
				state := "idle"
				if worked {
					state = "work done"
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "cycle complete: %s\n", state)
				return err
			}

			if err := rt.run(ctx); err != nil {
				return err
			}
			if rt.backend.Paused() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "backend paused")
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit")

	return cmd
}

type backendRuntime struct {
	backend   *application.Backend
	constants *application.ConstantTaskService
	thoughts  *journal.Thoughts
	watcher   *fswatch.Watcher
	metrics   *prom.Metrics
	logger    *zap.Logger

	metricsAddr      string
	scheduleInterval time.Duration
	closers          []func() error
}

func (a *app) newBackendRuntime() (*backendRuntime, error) {
	cfg := a.cfg
	clock := ports.SystemClock{}
	rt := &backendRuntime{
		metricsAddr:      cfg.GetString(config.KeyMetricsAddr),
		scheduleInterval: config.Duration(cfg, config.KeyScheduleInterval, time.Minute),
	}

	jsonLogPath, err := config.Path(cfg, config.KeyJSONLogPath)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := teeJSONFile(a.logger, a.level, jsonLogPath)
	if err != nil {
		return nil, err
	}
	rt.logger = logger.Named("backend")
	rt.closers = append(rt.closers, closeLog)

	store, err := jsonfile.NewMemoryStore(cfg, clock, rt.logger)
	if err != nil {
		return nil, rt.abort(fmt.Errorf("wire memory store: %w", err))
	}
	channel, err := jsonfile.NewChannel(cfg, rt.logger)
	if err != nil {
		return nil, rt.abort(fmt.Errorf("wire message channel: %w", err))
	}

	changeLog, err := sqlite.NewStore(cfg)
	if err != nil {
		return nil, rt.abort(fmt.Errorf("wire change log: %w", err))
	}
	rt.closers = append(rt.closers, changeLog.Close)

	rt.thoughts, err = journal.NewThoughts(cfg, clock, rt.logger)
	if err != nil {
		return nil, rt.abort(fmt.Errorf("wire thoughts log: %w", err))
	}

	tasks, err := markdown.NewTaskList(cfg)
	if err != nil {
		return nil, rt.abort(fmt.Errorf("wire task list: %w", err))
	}

	rt.metrics = prom.NewMetrics()

	var notifier ports.Notifier = ports.PollingNotifier{}
	watcher, err := fswatch.New(channel.Dir(), []string{jsonfile.RequestFileName, jsonfile.TaskBufferFileName}, rt.logger)
	if err != nil {
		rt.logger.Warn("file notifications unavailable, falling back to polling", zap.Error(err))
	} else {
		rt.watcher = watcher
		rt.closers = append(rt.closers, watcher.Close)
		notifier = watcher
	}

	sequences := application.NewSequenceEngine(store,
		application.WithSequenceClock(clock),
		application.WithMaxAttempts(cfg.GetInt(config.KeySequenceMaxAttempts)),
		application.WithSequenceLogger(rt.logger),
		application.WithSequenceThoughts(rt.thoughts),
		application.WithSequenceMetrics(rt.metrics),
	)
	rt.constants = application.NewConstantTaskService(store, channel, a.activity, clock, rt.logger)

	executor := application.NewExecutor(application.ExecutorDeps{
		Memory:        application.NewMemoryService(store, application.RoleBackend, rt.logger),
		Sequences:     sequences,
		ConstantTasks: rt.constants,
		TaskList:      tasks,
		Channel:       channel,
		ChangeLog:     changeLog,
		Clock:         clock,
		Logger:        rt.logger,
		Thoughts:      rt.thoughts,
	})

	var reasoner ports.Reasoner
	if cfg.GetBool(config.KeyReasoningEnabled) {
		reasoner = ollama.NewReasoner(cfg)
	}

	rt.backend = application.NewBackend(application.BackendDeps{
		Store:     store,
		Channel:   channel,
		Notifier:  notifier,
		Reasoner:  reasoner,
		TaskList:  tasks,
		Executor:  executor,
		Sequences: sequences,
		Queue:     application.NewQueueService(store, clock, config.Duration(cfg, config.KeyQueueLease, application.DefaultQueueLease)),
		Status:    application.NewStatusQuery(store),
		Activity:  a.activity,
		Thoughts:  rt.thoughts,
		Metrics:   rt.metrics,
		Clock:     clock,
		Logger:    rt.logger,

		IdleSleep:           config.Duration(cfg, config.KeyIdleSleep, application.DefaultIdleSleep),
		SystemCheckInterval: config.Duration(cfg, config.KeySystemCheckInterval, application.DefaultSystemCheckInterval),
	})

	return rt, nil
}

func (rt *backendRuntime) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error { return rt.thoughts.Run(loopCtx) })
	if rt.watcher != nil {
		g.Go(func() error { return rt.watcher.Run(loopCtx) })
	}
	g.Go(func() error { return rt.constants.RunScheduler(loopCtx, rt.scheduleInterval) })
	if rt.metricsAddr != "" {
		g.Go(func() error { return serveMetrics(loopCtx, rt.metricsAddr, rt.metrics.Handler(), rt.logger) })
	}
	g.Go(func() error {
		defer cancel()
		rt.logger.Info("backend loop started")
		return rt.backend.Run(loopCtx)
	})

	return g.Wait()
}

func (rt *backendRuntime) runOnce(ctx context.Context) (bool, error) {
	thoughtsCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- rt.thoughts.Run(thoughtsCtx) }()

	if _, err := rt.constants.EnqueueDue(ctx); err != nil {
		rt.logger.Warn("enqueue constant tasks", zap.Error(err))
	}
	worked, err := rt.backend.RunCycle(ctx)

	cancel()
	return worked, errors.Join(err, <-done)
}

func (rt *backendRuntime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil

	return errors.Join(errs...)
}

func (rt *backendRuntime) abort(err error) error {
	return errors.Join(err, rt.Close())
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown metrics server", zap.Error(err))
		}
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
