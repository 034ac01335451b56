package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultResyncSchedule runs the resync every thirty seconds.
const DefaultResyncSchedule = "*/30 * * * * *"

// Resyncer re-reads authoritative state into a projection.
// Satisfied by client.Synchronizer.
type Resyncer interface {
	Resync(ctx context.Context) error
}

// ProjectionResyncJob trues the client projection up against authoritative
// state on a fixed schedule, bounding the staleness a dropped feed event can
// cause.
type ProjectionResyncJob struct {
	resyncer Resyncer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewProjectionResyncJob creates the resync job. An empty schedule falls back
// to DefaultResyncSchedule.
func NewProjectionResyncJob(resyncer Resyncer, schedule string, logger *slog.Logger) *ProjectionResyncJob {
	if schedule == "" {
		schedule = DefaultResyncSchedule
	}
	return &ProjectionResyncJob{
		resyncer: resyncer,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "projection_resync_job"),
	}
}

// Start begins the periodic resync.
func (j *ProjectionResyncJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if err := j.resyncer.Resync(ctx); err != nil {
			// The projection keeps serving its previous state until the next tick
			j.logger.ErrorContext(ctx, "Projection resync failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Projection resync job started", "schedule", j.schedule)
	return nil
}

// Stop stops the resync job.
func (j *ProjectionResyncJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Projection resync job stopped")
}
