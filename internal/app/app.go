package app

import (
	"context"
	"time"

	"autobid/internal/config"
	"autobid/internal/logger"
	"autobid/internal/scheduler"
	"autobid/internal/store/gormstore"
	"autobid/internal/store/outcomelog"
	"autobid/internal/transport/http/admin"

	"github.com/robfig/cron/v3"
)

// App owns the running pieces of the service and their shutdown order.
type App struct {
	cfg      *config.Config
	agents   *gormstore.AgentStore
	outcomes *outcomelog.Store
	sched    *scheduler.CycleScheduler
	jobs     *cron.Cron
	admin    *admin.Server
}

// NewApp builds the application from config.
func NewApp(cfg *config.Config) (*App, error) {
	return buildAppWithWire(context.Background(), cfg)
}

// Run blocks until ctx is cancelled, then shuts everything down in order:
// scheduler first (it is the writer), then admin, jobs, and stores.
func (a *App) Run(ctx context.Context) error {
	a.jobs.Start()

	go func() {
		if err := a.admin.Run(a.cfg.App.HTTPAddr); err != nil {
			logger.Errorf("app: admin server: %v", err)
		}
	}()

	// Blocks until ctx is done; waits for the in-flight cycle.
	a.sched.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.admin.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("app: admin shutdown: %v", err)
	}
	<-a.jobs.Stop().Done()

	if err := a.outcomes.Close(); err != nil {
		logger.Warnf("app: outcome store close: %v", err)
	}
	if err := a.agents.Close(); err != nil {
		logger.Warnf("app: agent store close: %v", err)
	}
	logger.Infof("app: stopped")
	return nil
}
