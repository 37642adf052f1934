// Package alert reports security relevant events to the site owner.
package alert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/showcase/pkg/mailer"
	"github.com/yi-nology/showcase/pkg/metrics"
)

// Alert types.
const (
	TypeCSRF        = "CSRF Violation"
	TypeRateLimit   = "Rate Limit Exceeded"
	TypeFailedLogin = "Failed Admin Login"
	TypeHoneypot    = "Honeypot Triggered"
)

const (
	senderName  = "Portfolio Security"
	sendTimeout = 30 * time.Second
)

// Alert describes one event and the request that caused it.
type Alert struct {
	Type      string
	Details   string
	IP        string
	UserAgent string
	Path      string
	Method    string
	Time      time.Time
}

// Alerter mails alerts, records them in the audit log and counts them.
// Mail delivery happens in the background.
type Alerter struct {
	sender    mailer.Sender
	recipient string
	audit     *slog.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// New builds an Alerter. A nil audit logger discards audit records.
func New(sender mailer.Sender, recipient string, audit *slog.Logger) *Alerter {
	if audit == nil {
		audit = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Alerter{sender: sender, recipient: recipient, audit: audit, now: time.Now}
}

// Fire records the alert and queues its mail.
func (a *Alerter) Fire(ctx context.Context, al Alert) {
	if al.Time.IsZero() {
		al.Time = a.now()
	}
	metrics.SecurityAlerts.WithLabelValues(al.Type).Inc()
	a.audit.LogAttrs(ctx, slog.LevelWarn, "security_alert",
		slog.String("type", al.Type),
		slog.String("ip", al.IP),
		slog.String("path", al.Path),
		slog.String("method", al.Method),
		slog.String("user_agent", al.UserAgent),
		slog.String("details", al.Details),
		slog.Time("time", al.Time.UTC()),
	)

	if a.sender == nil || a.recipient == "" {
		hlog.CtxWarnf(ctx, "security alert %q not mailed: no recipient", al.Type)
		return
	}
	msg := mailer.Message{
		To:         a.recipient,
		Subject:    "SECURITY ALERT: " + al.Type,
		Body:       Body(al),
		SenderName: senderName,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := a.sender.Send(sendCtx, msg); err != nil {
			hlog.CtxErrorf(sendCtx, "failed to send security alert %q: %v", al.Type, err)
		}
	}()
}

// Wait blocks until queued alert mails are sent.
func (a *Alerter) Wait() { a.wg.Wait() }

// Body renders the alert mail.
func Body(al Alert) string {
	return fmt.Sprintf(`SECURITY VIOLATION DETECTED
===========================
Type: %s
Time: %s
IP Address: %s

Details:
%s

User Agent: %s
Path: %s
Method: %s
`, al.Type, al.Time.UTC().Format("2006-01-02 15:04:05 UTC"), al.IP, al.Details, al.UserAgent, al.Path, al.Method)
}

// NewAuditLogger opens the JSON audit stream. An empty path writes to stdout.
func NewAuditLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil)), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
