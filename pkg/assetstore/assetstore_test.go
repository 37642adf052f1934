package assetstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/codec"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/storage/local"
)

type stubFetcher struct {
	calls int
	url   string
	mime  string
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL, mimeType string) (*fetcher.Result, error) {
	f.calls++
	f.url, f.mime = rawURL, mimeType
	if f.err != nil {
		return nil, f.err
	}
	return &fetcher.Result{Data: []byte("remote"), MimeType: mimeType}, nil
}

func newStore(t *testing.T, threshold int64) (*Store, *stubFetcher, string) {
	t.Helper()
	dir := t.TempDir()
	objects, err := local.New(dir)
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	f := &stubFetcher{}
	return New(codec.New(codec.DefaultLevel), objects, f, threshold), f, dir
}

func TestEncodeVariants(t *testing.T) {
	s, _, _ := newStore(t, 0)
	ctx := context.Background()

	t.Run("Inline", func(t *testing.T) {
		slot, err := s.Encode(ctx, []byte("png bytes"), "image/png", "")
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if slot.Content().Kind != model.ContentInline || slot.URL != "" {
			t.Fatalf("expected inline slot, got %+v", slot)
		}
	})

	t.Run("ExternalIgnoresData", func(t *testing.T) {
		slot, err := s.Encode(ctx, []byte("ignored"), "", " https://example.com/a.glb ")
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if slot.Content().Kind != model.ContentExternal || len(slot.Data) != 0 || slot.URL != "https://example.com/a.glb" {
			t.Fatalf("expected external slot, got %+v", slot)
		}
	})

	t.Run("Absent", func(t *testing.T) {
		slot, err := s.Encode(ctx, nil, "image/png", "")
		if err != nil || !slot.IsZero() {
			t.Fatalf("expected absent slot, got %+v, %v", slot, err)
		}
	})

	t.Run("InvalidURL", func(t *testing.T) {
		for _, raw := range []string{"ftp://example.com/a", "/relative/path", "javascript:alert(1)"} {
			if _, err := s.Encode(ctx, nil, "", raw); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Encode(%q) error = %v, want ErrInvalidURL", raw, err)
			}
		}
	})
}

func TestResolve(t *testing.T) {
	s, f, _ := newStore(t, 0)
	ctx := context.Background()

	inline, _ := s.Encode(ctx, bytes.Repeat([]byte("x"), 1000), "", "")
	res, err := s.Resolve(ctx, inline, Policy{FallbackMime: "image/jpeg"})
	if err != nil {
		t.Fatalf("Resolve inline: %v", err)
	}
	if len(res.Data) != 1000 || res.MimeType != "image/jpeg" {
		t.Fatalf("unexpected inline resolution: %d bytes, %s", len(res.Data), res.MimeType)
	}

	external := model.Slot{URL: "https://example.com/banner.png"}
	res, err = s.Resolve(ctx, external, Policy{External: Redirect})
	if err != nil || res.Redirect != external.URL || f.calls != 0 {
		t.Fatalf("expected redirect without fetch, got %+v, %v (calls=%d)", res, err, f.calls)
	}

	res, err = s.Resolve(ctx, model.Slot{URL: "https://example.com/m.glb"}, Policy{External: Proxy, FallbackMime: "model/gltf-binary"})
	if err != nil {
		t.Fatalf("Resolve proxy: %v", err)
	}
	if string(res.Data) != "remote" || f.mime != "model/gltf-binary" {
		t.Fatalf("unexpected proxy resolution: %+v (mime %s)", res, f.mime)
	}

	both := model.Slot{Data: inline.Data, URL: "https://example.com/wins.png"}
	if res, _ := s.Resolve(ctx, both, Policy{External: Redirect}); res.Redirect != both.URL {
		t.Fatalf("expected url to win over data, got %+v", res)
	}

	if _, err := s.Resolve(ctx, model.Slot{}, Policy{}); !errors.Is(err, ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent, got %v", err)
	}

	f.err = fetcher.ErrAuthRequired
	if _, err := s.Resolve(ctx, external, Policy{External: Proxy}); !errors.Is(err, fetcher.ErrAuthRequired) {
		t.Fatalf("expected fetch error to surface, got %v", err)
	}
}

func TestOffloadAndRelease(t *testing.T) {
	s, _, dir := newStore(t, 16)
	ctx := context.Background()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	slot, err := s.Encode(ctx, payload, "application/zip", "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	key, ok := codec.ObjectKey(slot.Data)
	if !ok {
		t.Fatalf("expected an object reference, got %d inline bytes", len(slot.Data))
	}
	if _, err := os.Stat(filepath.Join(dir, key)); err != nil {
		t.Fatalf("expected offloaded object on disk: %v", err)
	}

	res, err := s.Resolve(ctx, slot, Policy{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !bytes.Equal(res.Data, payload) {
		t.Fatal("offloaded payload did not round trip")
	}

	s.Release(ctx, slot, model.Slot{Data: []byte("inline")})
	if _, err := os.Stat(filepath.Join(dir, key)); !os.IsNotExist(err) {
		t.Fatalf("expected object to be released, stat err = %v", err)
	}
	if _, err := s.Resolve(ctx, slot, Policy{}); !errors.Is(err, ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent for released object, got %v", err)
	}
}

func TestReencodeLegacy(t *testing.T) {
	s, _, _ := newStore(t, 0)
	ctx := context.Background()

	legacy := model.Slot{Data: []byte("plain legacy bytes"), MimeType: "image/png"}
	out, changed, err := s.Reencode(ctx, legacy)
	if err != nil || !changed {
		t.Fatalf("Reencode = %v, %v", changed, err)
	}
	if f, _ := codec.Inspect(out.Data); f == codec.FormatLegacy {
		t.Fatal("expected enveloped payload after reencode")
	}

	_, changed, err = s.Reencode(ctx, out)
	if err != nil || changed {
		t.Fatalf("expected no change for enveloped payload, got %v, %v", changed, err)
	}
}
