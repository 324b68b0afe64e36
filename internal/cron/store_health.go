package cron

import (
	"context"

	"packetlog/internal/database/sql/repository"
	"packetlog/internal/service"

	"go.uber.org/zap"
)

// StoreHealthJob pings the log store and feeds readiness.
type StoreHealthJob struct {
	logger        *zap.Logger
	logRepository *repository.LogRepository
	healthService *service.HealthService
}

func NewStoreHealthJob(
	logger *zap.Logger,
	logRepository *repository.LogRepository,
	healthService *service.HealthService,
) *StoreHealthJob {
	return &StoreHealthJob{
		logger:        logger,
		logRepository: logRepository,
		healthService: healthService,
	}
}

func (job *StoreHealthJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	wasReady := job.healthService.IsReady()
	err := job.logRepository.Ping(ctx)
	job.healthService.ReportStore(err)

	switch {
	case err != nil && wasReady:
		job.logger.Error("store unreachable, marking not ready", zap.Error(err))
	case err != nil:
		job.logger.Warn("store still unreachable", zap.Error(err))
	case !wasReady:
		job.logger.Info("store reachable, marking ready")
	}
}
