// Package jobs schedules background database maintenance.
package jobs

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/robfig/cron/v3"

	"github.com/yi-nology/showcase/pkg/config"
)

// Maintainer runs the maintenance tasks.
type Maintainer interface {
	Compact(ctx context.Context) error
	PurgeChallenges(ctx context.Context) (int64, error)
}

// Schedule registers compaction and challenge purging and starts the
// scheduler. It stops when ctx is done. An empty spec disables its job.
func Schedule(ctx context.Context, m Maintainer, cfg config.JobsConfig) (*cron.Cron, error) {
	logger := cron.PrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if cfg.Compaction != "" {
		if _, err := c.AddFunc(cfg.Compaction, func() { compact(ctx, m) }); err != nil {
			return nil, fmt.Errorf("schedule compaction %q: %w", cfg.Compaction, err)
		}
	}
	if cfg.ChallengePurge != "" {
		if _, err := c.AddFunc(cfg.ChallengePurge, func() { purge(ctx, m) }); err != nil {
			return nil, fmt.Errorf("schedule challenge purge %q: %w", cfg.ChallengePurge, err)
		}
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

func compact(ctx context.Context, m Maintainer) {
	if err := m.Compact(ctx); err != nil {
		hlog.CtxErrorf(ctx, "scheduled compaction failed: %v", err)
	}
}

func purge(ctx context.Context, m Maintainer) {
	if _, err := m.PurgeChallenges(ctx); err != nil {
		hlog.CtxErrorf(ctx, "challenge purge failed: %v", err)
	}
}
