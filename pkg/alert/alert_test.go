package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yi-nology/showcase/pkg/mailer"
	"github.com/yi-nology/showcase/pkg/metrics"
)

func TestFire(t *testing.T) {
	var audit bytes.Buffer
	rec := &mailer.Recorder{}
	a := New(rec, "owner@example.com", slog.New(slog.NewJSONHandler(&audit, nil)))

	before := testutil.ToFloat64(metrics.SecurityAlerts.WithLabelValues(TypeFailedLogin))
	a.Fire(context.Background(), Alert{
		Type:      TypeFailedLogin,
		Details:   "Username: eve@example.com\nAction: Password check failed.",
		IP:        "203.0.113.9",
		UserAgent: "curl/8.0",
		Path:      "/login/door",
		Method:    "POST",
		Time:      time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	})
	a.Wait()

	sent := rec.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sent))
	}
	if sent[0].To != "owner@example.com" || sent[0].Subject != "SECURITY ALERT: Failed Admin Login" {
		t.Fatalf("unexpected mail header: %+v", sent[0])
	}
	for _, want := range []string{"Time: 2024-05-01 12:30:00 UTC", "IP Address: 203.0.113.9", "Username: eve@example.com", "Method: POST"} {
		if !strings.Contains(sent[0].Body, want) {
			t.Errorf("mail body missing %q:\n%s", want, sent[0].Body)
		}
	}

	var record map[string]any
	if err := json.Unmarshal(audit.Bytes(), &record); err != nil {
		t.Fatalf("audit record is not JSON: %v (%s)", err, audit.String())
	}
	if record["type"] != TypeFailedLogin || record["ip"] != "203.0.113.9" {
		t.Fatalf("unexpected audit record: %v", record)
	}

	if after := testutil.ToFloat64(metrics.SecurityAlerts.WithLabelValues(TypeFailedLogin)); after != before+1 {
		t.Fatalf("expected alert counter to grow by one, got %v -> %v", before, after)
	}
}

func TestFireWithoutRecipient(t *testing.T) {
	rec := &mailer.Recorder{}
	a := New(rec, "", nil)
	a.Fire(context.Background(), Alert{Type: TypeHoneypot})
	a.Wait()
	if len(rec.Sent()) != 0 {
		t.Fatal("expected no mail without recipient")
	}
}
