package ingest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
)

// Scheduler handles periodic knowledge base re-ingestion so guideline
// edits on disk reach the live index without a restart.
type Scheduler struct {
	coordinator *Coordinator
	cron        *cron.Cron
	logger      arbor.ILogger
}

// NewScheduler creates a re-ingestion scheduler
func NewScheduler(coordinator *Coordinator, logger arbor.ILogger) *Scheduler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Scheduler{
		coordinator: coordinator,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger,
	}
}

// Start begins scheduled rebuilds. An empty schedule disables
// scheduled re-ingestion; rebuilds then only happen at startup and
// via the API trigger.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info().Msg("Scheduled re-ingestion disabled")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runRebuild()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Re-ingestion scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Re-ingestion scheduler stopped")
}

// RunNow triggers an immediate rebuild
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate rebuild")
	go s.runRebuild()
}

func (s *Scheduler) runRebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := s.coordinator.Rebuild(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled rebuild failed")
		return
	}

	s.logger.Info().
		Int("documents", len(result.Documents)).
		Int("chunks", len(result.Chunks)).
		Int("failures", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("Scheduled rebuild complete")
}
