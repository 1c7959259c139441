// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"errors"

	"github.com/magicstocks/calendar/internal/pipeline"
	"github.com/magicstocks/calendar/pkg/logger"
)

// RetrainJob rebuilds and republishes the seasonal calendar on a schedule.
type RetrainJob struct {
	runner   *pipeline.Runner
	logger   *logger.Logger
	schedule string
}

// NewRetrainJob creates the scheduled retrain job. schedule is a cron
// expression with seconds, evaluated in UTC.
func NewRetrainJob(runner *pipeline.Runner, log *logger.Logger, schedule string) *RetrainJob {
	return &RetrainJob{
		runner:   runner,
		logger:   log.WithField("job", "retrain_calendar"),
		schedule: schedule,
	}
}

// Name returns the job name.
func (j *RetrainJob) Name() string {
	return "retrain_calendar"
}

// Schedule returns the cron expression.
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run executes one full retrain. A run already in flight is a skip, not a
// failure, so it must not trigger the scheduler's retry loop.
func (j *RetrainJob) Run(ctx context.Context) error {
	_, err := j.runner.Run(ctx, pipeline.Options{})
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		j.logger.Warn("Previous retrain still running, skipping this trigger")
		return nil
	}
	return err
}
