package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// minScheduleInterval is the smallest allowed gap between scheduled runs. A
// full suite run takes minutes; anything tighter would stack runs.
const minScheduleInterval = 5 * time.Minute

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks that expr is a parseable cron expression whose
// consecutive firings are at least minScheduleInterval apart.
func ValidateSchedule(expr string) error {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	first := schedule.Next(time.Now())
	second := schedule.Next(first)
	if second.Sub(first) < minScheduleInterval {
		return fmt.Errorf("schedule %q fires every %s, minimum interval is %s", expr, second.Sub(first), minScheduleInterval)
	}
	return nil
}

// RunScheduled runs the suites on the given cron schedule until the context is
// cancelled. Overlapping firings are skipped while a run is in progress.
func (r *Runner) RunScheduled(ctx context.Context, expr string) error {
	if err := ValidateSchedule(expr); err != nil {
		return err
	}

	running := make(chan struct{}, 1)

	c := cron.New(cron.WithParser(cronParser))
	_, err := c.AddFunc(expr, func() {
		select {
		case running <- struct{}{}:
		default:
			r.logger.Warn().Msg("Previous run still in progress, skipping scheduled firing")
			return
		}
		defer func() { <-running }()

		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error().Err(err).Msg("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register schedule: %w", err)
	}

	r.logger.Info().Str("schedule", expr).Msg("Runner entering scheduled mode")
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		r.logger.Warn().Msg("Timed out waiting for scheduled run to finish")
	}
	return ctx.Err()
}
