package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/yi-nology/showcase/pkg/config"
)

type fakeMaintainer struct {
	compactions atomic.Int32
	purges      atomic.Int32
	err         error
}

func (f *fakeMaintainer) Compact(context.Context) error {
	f.compactions.Add(1)
	return f.err
}

func (f *fakeMaintainer) PurgeChallenges(context.Context) (int64, error) {
	f.purges.Add(1)
	return 3, f.err
}

func TestScheduleRegistersJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := Schedule(ctx, &fakeMaintainer{}, config.JobsConfig{Compaction: "0 3 * * *", ChallengePurge: "@every 1h"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if n := len(c.Entries()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestScheduleSkipsEmptySpecs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := Schedule(ctx, &fakeMaintainer{}, config.JobsConfig{Compaction: "@daily"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if n := len(c.Entries()); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	if _, err := Schedule(context.Background(), &fakeMaintainer{}, config.JobsConfig{Compaction: "whenever"}); err == nil {
		t.Fatal("expected invalid cron spec to fail")
	}
}

func TestJobsSwallowErrors(t *testing.T) {
	m := &fakeMaintainer{err: errors.New("database is locked")}
	compact(context.Background(), m)
	purge(context.Background(), m)
	if m.compactions.Load() != 1 || m.purges.Load() != 1 {
		t.Fatalf("unexpected calls: compact=%d purge=%d", m.compactions.Load(), m.purges.Load())
	}
}
