package cmd

import (
	"fmt"
	"time"

	statusadapter "github.com/bnema/life-assistant/internal/adapters/render/status"
	"github.com/bnema/life-assistant/internal/adapters/journal"
	"github.com/bnema/life-assistant/internal/adapters/reasoning/ollama"
	"github.com/bnema/life-assistant/internal/adapters/repo/jsonfile"
	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg    *viper.Viper
	logger *zap.Logger
	level  zap.AtomicLevel

	store     *jsonfile.MemoryStore
	channel   *jsonfile.Channel
	activity  *journal.Activity
	memory    *application.MemoryService
	queue     *application.QueueService
	sequences *application.SequenceEngine
	constants *application.ConstantTaskService
	status    *application.StatusQuery

	statusRenderer func(application.Status, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, level, err := newLogger(cfg.GetString(config.KeyLogLevel))
	if err != nil {
		return nil, err
	}

	clock := ports.SystemClock{}

	store, err := jsonfile.NewMemoryStore(cfg, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("wire memory store: %w", err)
	}

	channel, err := jsonfile.NewChannel(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire message channel: %w", err)
	}

	activity, err := journal.NewActivity(cfg, clock)
	if err != nil {
		return nil, fmt.Errorf("wire activity log: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		level:     level,
		store:     store,
		channel:   channel,
		activity:  activity,
		memory:    application.NewMemoryService(store, application.RoleFrontend, logger),
		queue:     application.NewQueueService(store, clock, config.Duration(cfg, config.KeyQueueLease, application.DefaultQueueLease)),
		sequences: application.NewSequenceEngine(store, application.WithSequenceLogger(logger), application.WithMaxAttempts(cfg.GetInt(config.KeySequenceMaxAttempts))),
		constants: application.NewConstantTaskService(store, channel, activity, clock, logger),
		status:    application.NewStatusQuery(store),

		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

func (a *app) newFrontend(interpret bool, notifier ports.Notifier) *application.Frontend {
	deps := application.FrontendDeps{
		Channel:      a.channel,
		Notifier:     notifier,
		Memory:       a.memory,
		Logger:       a.logger.Named("frontend"),
		PollInterval: config.Duration(a.cfg, config.KeyPollInterval, application.DefaultPollInterval),
		MaxWait:      config.Duration(a.cfg, config.KeyMaxWait, application.DefaultMaxWait),
	}
	if interpret && a.cfg.GetBool(config.KeyReasoningEnabled) {
		deps.Interpreter = ollama.NewInterpreter(a.cfg)
	}

	return application.NewFrontend(deps)
}
