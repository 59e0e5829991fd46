/**
 * @description
 * Cron scheduler wiring for the daily batch. The HTTP trigger endpoint can
 * still start out-of-band runs; the soft idempotency check in the
 * coordinator keeps the two from double-processing a day in normal operation.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rentfolio/finance-service/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron        *cron.Cron
	coordinator *Coordinator
	logger      *slog.Logger
	config      config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(coordinator *Coordinator, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:        c,
		coordinator: coordinator,
		logger:      logger,
		config:      cfg,
	}
}

// Start registers the daily batch job and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.DailyBatchSchedule, s.runDailyBatch); err != nil {
		s.logger.Error("failed to schedule daily batch job", "error", err)
	} else {
		s.logger.Info("scheduled daily batch job", "schedule", s.config.DailyBatchSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runDailyBatch() {
	report := s.coordinator.RunDailyBatch(context.Background(), time.Now().UTC(), false)
	if !report.OverallSuccess {
		s.logger.Error("scheduled daily batch finished with errors",
			"item_errors", len(report.ItemErrors),
			"critical_errors", len(report.CriticalErrors))
	}
}
