package cron

import (
	"context"
	"time"

	"packetlog/config"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewStoreHealthJob, NewCron)

const defaultHealthSpec = "*/15 * * * * *"

type Cron struct {
	logger    *zap.Logger
	server    *cron.Cron
	spec      string
	healthJob *StoreHealthJob
}

// NewCron builds a scheduler whose specs include a seconds field.
func NewCron(logger *zap.Logger, conf *config.Configuration, healthJob *StoreHealthJob) *Cron {
	spec := conf.Database.HealthCheckSpec
	if spec == "" {
		spec = defaultHealthSpec
	}
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Cron{
		logger:    logger,
		server:    server,
		spec:      spec,
		healthJob: healthJob,
	}
}

// Run schedules the jobs, checks the store once so readiness is accurate
// before the first tick, then starts the scheduler.
func (c *Cron) Run() error {
	if _, err := c.server.AddJob(c.spec, c.healthJob); err != nil {
		return err
	}
	c.healthJob.Run()
	c.server.Start()
	c.logger.Info("cron jobs scheduled", zap.String("storeHealth", c.spec))
	return nil
}

// Stop waits for running jobs until ctx expires.
func (c *Cron) Stop(ctx context.Context) error {
	done := c.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pingTimeout bounds a single store ping.
const pingTimeout = 5 * time.Second
