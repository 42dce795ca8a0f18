package jobs

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/application/dispatch"
	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRefreshSchedule pulls offers every 30 seconds.
const DefaultRefreshSchedule = "@every 30s"

// scheduleParser reads standard five-field specs, six-field specs with a
// leading seconds field, and descriptors such as "@every 30s".
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// OfferRefreshJob pulls open offers from the order service on a schedule.
// A run that is still going when the next one is due makes that one a no-op.
type OfferRefreshJob struct {
	handler  commands.RefreshOffersCommandHandler
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewOfferRefreshJob accepts any schedule robfig/cron understands, with an
// optional seconds field. Empty means DefaultRefreshSchedule.
func NewOfferRefreshJob(
	handler commands.RefreshOffersCommandHandler,
	schedule string,
	logger *zap.Logger,
) *OfferRefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "offer_refresh_job"))

	cl := cronLogger{logger: logger}
	return &OfferRefreshJob{
		handler:  handler,
		schedule: schedule,
		timeout:  20 * time.Second,
		cron: cron.New(
			cron.WithParser(scheduleParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. It fails on a malformed schedule.
func (j *OfferRefreshJob) Start() error {
	if _, err := j.cron.AddJob(j.schedule, j); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("offer refresh job started", zap.String("schedule", j.schedule))
	return nil
}

// Run performs one refresh. It satisfies cron.Job.
func (j *OfferRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	err := j.handler.Handle(ctx, commands.NewRefreshOffersCommand())
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrRefreshInProgress):
		j.logger.Debug("offer refresh skipped, previous refresh still running")
	default:
		// Transient failures wait for the next tick.
		j.logger.Warn("offer refresh job failed", zap.Error(err))
	}
}

// Stop halts the scheduler and waits for a running refresh to return.
func (j *OfferRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("offer refresh job stopped")
}

// cronLogger routes robfig/cron's logging through zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
