// Package jobs schedules background housekeeping with cron expressions.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner wraps a cron scheduler with structured logging around each job.
type Runner struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{
		cron:   cron.New(),
		logger: logger.With().Str("component", "jobs").Logger(),
	}
}

// Register schedules fn under the given cron spec. Job errors are logged,
// never fatal.
func (r *Runner) Register(spec, name string, fn func(ctx context.Context) error) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.logger.Info().Str("job", name).Msg("job started")
		if err := fn(context.Background()); err != nil {
			r.logger.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		r.logger.Info().Str("job", name).Msg("job finished")
	})
	return err
}

// Start launches the scheduler in its own goroutine.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
