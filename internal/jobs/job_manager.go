package jobs

import (
	"fmt"

	"fulfillment/internal/core/application/usecases/commands"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	offerRefreshJob *OfferRefreshJob
}

// NewJobManager creates a job manager with every scheduled job wired to its handler.
func NewJobManager(
	refreshOffersHandler commands.RefreshOffersCommandHandler,
	refreshSchedule string,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		offerRefreshJob: NewOfferRefreshJob(refreshOffersHandler, refreshSchedule, logger),
	}
}

// StartAll starts all scheduled jobs and runs the offer refresh once right away,
// so the pool is filled without waiting for the first tick.
func (jm *JobManager) StartAll() error {
	if err := jm.offerRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start offer refresh job: %w", err)
	}
	go jm.offerRefreshJob.Run()
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.offerRefreshJob.Stop()
}
