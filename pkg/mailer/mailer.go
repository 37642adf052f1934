// Package mailer sends plain text mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/wneessen/go-mail"

	"github.com/yi-nology/showcase/pkg/config"
)

// ErrNotConfigured is returned when no SMTP server is set.
var ErrNotConfigured = errors.New("smtp server not configured")

// Message is a plain text mail.
type Message struct {
	To         string
	Subject    string
	Body       string
	SenderName string
	ReplyTo    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP sends through an authenticated STARTTLS connection.
type SMTP struct {
	cfg config.SMTPConfig
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if s.cfg.Server == "" {
		return ErrNotConfigured
	}

	msg := mail.NewMsg()
	name := m.SenderName
	if name == "" {
		name = s.cfg.FromName
	}
	if err := msg.FromFormat(name, s.cfg.User); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}
	return nil
}

// Log writes messages to the server log instead of sending them. It is used
// when SMTP is not configured.
type Log struct{}

func (Log) Send(ctx context.Context, m Message) error {
	hlog.CtxWarnf(ctx, "smtp not configured, dropping mail to %s: %s", m.To, m.Subject)
	return nil
}

// Recorder keeps messages in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (r *Recorder) Send(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, m)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// New picks SMTP when a server is configured and Log otherwise.
func New(cfg config.SMTPConfig) Sender {
	if cfg.Server == "" {
		return Log{}
	}
	return NewSMTP(cfg)
}
