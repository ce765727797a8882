package app

import (
	"context"
	"fmt"
	"time"

	"autobid/internal/condition"
	"autobid/internal/condition/handlers"
	"autobid/internal/config"
	"autobid/internal/engine"
	"autobid/internal/gateway/auctionhouse"
	"autobid/internal/gateway/notifier"
	"autobid/internal/logger"
	"autobid/internal/scheduler"
	"autobid/internal/store/gormstore"
	"autobid/internal/store/outcomelog"
	"autobid/internal/transport/http/admin"

	"github.com/robfig/cron/v3"
)

// AppBuilder assembles the service from configuration.
type AppBuilder struct {
	cfg *config.Config
}

func NewAppBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	cfg := b.cfg

	agents, err := gormstore.NewAgentStore(cfg.Store.AgentsPath)
	if err != nil {
		return nil, fmt.Errorf("agent store: %w", err)
	}
	outcomes, err := outcomelog.New(cfg.Store.OutcomesPath)
	if err != nil {
		agents.Close()
		return nil, fmt.Errorf("outcome store: %w", err)
	}

	registry := condition.NewRegistry()
	if err := handlers.RegisterDefaults(registry); err != nil {
		return nil, fmt.Errorf("condition handlers: %w", err)
	}
	templates, err := condition.NewTemplateRegistry(cfg.Engine.ConditionsPath)
	if err != nil {
		return nil, fmt.Errorf("condition templates: %w", err)
	}

	client, err := auctionhouse.NewClient(auctionhouse.Config{
		BaseURL:        cfg.AuctionHouse.APIURL,
		APIToken:       cfg.AuctionHouse.APIToken,
		TimeoutSeconds: cfg.AuctionHouse.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	var notify notifier.TextNotifier = notifier.Noop{}
	if cfg.Notify.Telegram.Enabled {
		notify = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	executor := engine.NewExecutor(agents, client, client, registry, engine.Options{
		Workers:          cfg.Engine.Workers,
		PlacementTimeout: time.Duration(cfg.Engine.PlacementTimeoutSeconds) * time.Second,
	})

	interval, _ := scheduler.ParseIntervalDuration(cfg.Engine.CycleInterval)
	sched := scheduler.New("autobid", interval, executor)
	sched.RunImmediately = cfg.Engine.RunImmediately
	sched.OnCycle(recordOutcomes(outcomes))
	sched.OnCycle(notifyOutcomes(notify))

	jobs := cron.New(cron.WithSeconds())
	retention := time.Duration(cfg.Store.OutcomeRetentionDays) * 24 * time.Hour
	if _, err := jobs.AddFunc(cfg.Store.PurgeCron, func() {
		cutoff := time.Now().Add(-retention)
		n, err := outcomes.PurgeOlderThan(context.Background(), cutoff)
		if err != nil {
			logger.Errorf("housekeeping: outcome purge failed: %v", err)
			return
		}
		logger.Infof("housekeeping: purged %d outcome rows older than %s", n, cutoff.Format(time.RFC3339))
	}); err != nil {
		return nil, fmt.Errorf("register purge job: %w", err)
	}

	adminSrv := admin.NewServer(cfg.App.Env, agents, outcomes, templates, registry)

	return &App{
		cfg:      cfg,
		agents:   agents,
		outcomes: outcomes,
		sched:    sched,
		jobs:     jobs,
		admin:    adminSrv,
	}, nil
}
