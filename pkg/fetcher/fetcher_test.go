package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://drive.google.com/file/d/abc123/view?usp=sharing", "https://drive.google.com/uc?export=download&id=abc123"},
		{"https://drive.google.com/open?id=XyZ_9", "https://drive.google.com/uc?export=download&id=XyZ_9"},
		{"https://drive.google.com/uc?id=q-1&export=download", "https://drive.google.com/uc?export=download&id=q-1"},
		{"  https://drive.google.com/file/d/trim/  ", "https://drive.google.com/uc?export=download&id=trim"},
		{"https://cdn.example.com/models/robot.glb", "https://cdn.example.com/models/robot.glb"},
		{"https://drive.google.com/drive/folders/xyz", "https://drive.google.com/drive/folders/xyz"},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfirmToken(t *testing.T) {
	cases := []struct {
		page, want string
	}{
		{`<a href="/uc?export=download&amp;confirm=AbC_12&amp;id=1">`, "AbC_12"},
		{`<input type="hidden" name="confirm" value="t0k-en">`, "t0k-en"},
		{`<input type="hidden" value="rev" name="confirm">`, "rev"},
		{`<html><body>Sign in to continue</body></html>`, ""},
	}
	for _, tc := range cases {
		if got := ConfirmToken([]byte(tc.page)); got != tc.want {
			t.Errorf("ConfirmToken(%q) = %q, want %q", tc.page, got, tc.want)
		}
	}
}

func TestFetchBinary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "model/gltf-binary")
		_, _ = w.Write([]byte("glTF-bytes"))
	}))
	defer srv.Close()

	c := New(5 * time.Second)

	t.Run("ResponseContentType", func(t *testing.T) {
		res, err := c.Fetch(context.Background(), srv.URL+"/m.glb", "")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(res.Data) != "glTF-bytes" || res.MimeType != "model/gltf-binary" {
			t.Fatalf("unexpected result %q %s", res.Data, res.MimeType)
		}
	})

	t.Run("DeclaredMimeWins", func(t *testing.T) {
		res, err := c.Fetch(context.Background(), srv.URL+"/m.glb", "application/zip")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if res.MimeType != "application/zip" {
			t.Fatalf("expected declared mimetype, got %s", res.MimeType)
		}
	})
}

func TestFetchFallbackMime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x00, 0x01})
	}))
	defer srv.Close()

	res, err := New(0).Fetch(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.MimeType != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %s", res.MimeType)
	}
}

func TestFetchConfirmRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("confirm") == "tok42" {
			if _, err := r.Cookie("download_warning"); err != nil {
				http.Error(w, "missing cookie", http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write([]byte("PK"))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "download_warning", Value: "1", Path: "/"})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<form><input type="hidden" name="confirm" value="tok42"></form>`))
	}))
	defer srv.Close()

	res, err := New(5*time.Second).Fetch(context.Background(), srv.URL+"/archive", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(res.Data) != "PK" || res.MimeType != "application/zip" {
		t.Fatalf("unexpected result %q %s", res.Data, res.MimeType)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestFetchAuthRequired(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>Sign in</html>"))
	}))
	defer srv.Close()

	_, err := New(5*time.Second).Fetch(context.Background(), srv.URL, "")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two requests, got %d", calls)
	}
}

func TestFetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(5*time.Second).Fetch(context.Background(), srv.URL, ""); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed for 404, got %v", err)
	}

	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := dead.URL
	dead.Close()
	if _, err := New(time.Second).Fetch(context.Background(), addr, ""); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed for closed server, got %v", err)
	}
}
