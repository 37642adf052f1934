package service

import (
	"bytes"
	"compress/zlib"
	"context"
	"testing"
	"time"

	"github.com/yi-nology/showcase/biz/dal/db"
	"github.com/yi-nology/showcase/pkg/codec"
)

func TestRecompressLegacyRows(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := db.CreateTestFile(t, env.db, "Legacy", 2021)

	var legacy bytes.Buffer
	w := zlib.NewWriter(&legacy)
	_, _ = w.Write([]byte("legacy glb"))
	_ = w.Close()
	if err := db.NewFileDAO().Update(ctx, env.db, file.ID, map[string]any{"glb_data": legacy.Bytes()}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	report, err := env.svc.Recompress(ctx)
	if err != nil {
		t.Fatalf("Recompress: %v", err)
	}
	if report.Files != 1 {
		t.Fatalf("expected one file rewritten, got %+v", report)
	}

	stored, err := db.NewFileDAO().GetByID(ctx, env.db, file.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if f, _ := codec.Inspect(stored.Model.Data); f == codec.FormatLegacy {
		t.Fatal("expected model payload in the current envelope")
	}
	res, err := env.svc.ModelPayload(ctx, file.ID)
	if err != nil || string(res.Data) != "legacy glb" {
		t.Fatalf("ModelPayload = %q, %v", res.Data, err)
	}

	again, err := env.svc.Recompress(ctx)
	if err != nil {
		t.Fatalf("second Recompress: %v", err)
	}
	if again.Files != 0 {
		t.Fatalf("expected nothing left to rewrite, got %+v", again)
	}
}

func TestPurgeChallenges(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	admin := db.CreateTestAdmin(t, env.db, "admin@example.com", "hash")
	db.CreateTestChallenge(t, env.db, admin.ID, "111111", -time.Minute)
	db.CreateTestChallenge(t, env.db, admin.ID, "222222", time.Minute)

	n, err := env.svc.PurgeChallenges(ctx)
	if err != nil {
		t.Fatalf("PurgeChallenges: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expired challenge purged, got %d", n)
	}
}

func TestCompactAndStatus(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	db.CreateTestFile(t, env.db, "Counted", 2024)

	if err := env.svc.Compact(ctx); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	dialect, tables, err := env.svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if dialect != "sqlite" {
		t.Fatalf("expected sqlite, got %s", dialect)
	}
	for _, ts := range tables {
		if ts.Table == "files" && ts.Rows != 1 {
			t.Fatalf("expected 1 file row, got %d", ts.Rows)
		}
	}
}
