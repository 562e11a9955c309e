package sched

import (
	"context"
	"log/slog"
	"time"

	"rentable/internal/app/commands"
	rentalhandlers "rentable/internal/app/handlers/rental"
	"rentable/internal/app/schedule"
)

// Runner drains due deferred tasks and dispatches the matching command for
// each. A task is removed only after its command succeeds, so transient
// failures are retried on the next tick.
type Runner struct {
	Store    schedule.TaskStore
	Bus      commands.Bus
	Logger   *slog.Logger
	Interval time.Duration
	Batch    int
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.processOnce(ctx)
		}
	}
}

func (r *Runner) processOnce(ctx context.Context) {
	due, err := r.Store.Due(ctx, time.Now().UTC(), r.batch())
	if err != nil {
		r.logger().Warn("deferred task poll failed", "error", err)
		return
	}
	for _, task := range due {
		if err := r.dispatch(ctx, task); err != nil {
			r.logger().Warn("deferred task failed", "task_id", task.ID, "kind", task.Kind, "error", err)
			continue
		}
		if err := r.Store.MarkDone(ctx, task.ID); err != nil {
			r.logger().Warn("deferred task ack failed", "task_id", task.ID, "error", err)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, task schedule.Task) error {
	switch task.Kind {
	case rentalhandlers.TaskKindExpireRental:
		_, err := r.Bus.Dispatch(ctx, rentalhandlers.ExpireRentalCommand{RentalID: task.SubjectID})
		return err
	default:
		r.logger().Warn("unknown deferred task kind dropped", "task_id", task.ID, "kind", task.Kind)
		return nil
	}
}

func (r *Runner) interval() time.Duration {
	if r.Interval <= 0 {
		return time.Minute
	}
	return r.Interval
}

func (r *Runner) batch() int {
	if r.Batch <= 0 {
		return 100
	}
	return r.Batch
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ActivationSweep periodically dispatches the due-rental activation command so
// approved rentals flip to active once their window starts.
type ActivationSweep struct {
	Bus      commands.Bus
	Logger   *slog.Logger
	Interval time.Duration
}

func (s *ActivationSweep) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Bus.Dispatch(ctx, rentalhandlers.ActivateDueRentalsCommand{Now: time.Now().UTC()}); err != nil {
				logger := s.Logger
				if logger == nil {
					logger = slog.Default()
				}
				logger.Warn("activation sweep failed", "error", err)
			}
		}
	}
}
