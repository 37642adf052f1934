package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
)

func TestStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := "assets/0b7d1c2e"
	payload := []byte("offloaded payload")

	if err := s.PutObject(ctx, key, bytes.NewReader(payload), "application/octet-stream", int64(len(payload))); err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	exists, err := s.ObjectExists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("ObjectExists = %v, %v", exists, err)
	}

	rc, err := s.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}

	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("second DeleteObject should be a no-op: %v", err)
	}
	if _, err := s.GetObject(ctx, key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist after delete, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"", "../escape", "assets/../../etc/passwd"} {
		if err := s.PutObject(context.Background(), key, bytes.NewReader(nil), "", 0); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}
