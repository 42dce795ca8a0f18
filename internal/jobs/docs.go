// Package jobs provides scheduled background tasks for the delivery agent.
//
// Jobs are built on github.com/robfig/cron/v3 and log through zap.
//
// # Available Jobs
//
// 1. OfferRefreshJob - pulls open offers from the order service (every 30s by default)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(refreshOffersHandler, cfg.RefreshSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules accept standard five-field cron expressions, an optional leading
// seconds field, and descriptors such as "@every 30s". Runs never overlap: the
// cron chain skips a tick while the previous run is still going, and the pool
// itself refuses concurrent refreshes.
//
// # Error Handling
//
// - A refresh refused because another is in flight is logged at debug level
// - Every other failure is logged and retried on the next tick, never sooner
package jobs
