package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(0)

	id, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	t.Run("HeldLockFailsFast", func(t *testing.T) {
		if _, err := l.Acquire(ctx); !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("ForeignReleaseKeepsLock", func(t *testing.T) {
		if err := l.Release(ctx, "someone-else"); err == nil {
			t.Fatal("expected release by non-owner to fail")
		}
		if _, err := l.Acquire(ctx); err == nil {
			t.Fatal("lock should still be held")
		}
	})

	if err := l.Release(ctx, id); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
}

func TestLocalLockWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(time.Second)

	id, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = l.Release(ctx, id)
	}()
	if _, err := l.Acquire(ctx); err != nil {
		t.Fatalf("expected second Acquire to succeed after release: %v", err)
	}
}
