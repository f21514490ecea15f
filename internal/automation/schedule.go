package automation

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunOnSchedule executes Run on the given cron spec until the context is
// canceled. Overlapping runs are skipped rather than queued.
func RunOnSchedule(ctx context.Context, deps Deps, spec string) error {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := c.AddFunc(spec, func() {
		Run(ctx, deps)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	deps.Logger.Info("scheduler started", zap.String("spec", spec))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
