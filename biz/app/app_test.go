package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yi-nology/showcase/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(dir, "portfolio.db")
	cfg.Storage.Local.BasePath = filepath.Join(dir, "objects")
	cfg.Log.AuditFile = filepath.Join(dir, "logs", "audit.log")
	cfg.Email.CheckMX = false
	return cfg
}

func TestBuildWiresServiceWithoutRedis(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if a.Service == nil || a.Alerter == nil {
		t.Fatal("expected service and alerter to be wired")
	}
	if a.Limiter == nil {
		t.Fatal("expected in-memory limiter")
	}
	if a.Locker == nil {
		t.Fatal("expected local write lock")
	}

	ctx := context.Background()
	id, err := a.Locker.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := a.Locker.Release(ctx, id); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestBuildRejectsUnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "ftp"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("expected unsupported storage type to fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
