package service

import (
	"context"
	"errors"
	"time"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/cache"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/lock"
	"github.com/yi-nology/showcase/pkg/mailer"

	"gorm.io/gorm"
)

// ValidationError is a client input problem, reported back verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Locator geolocates a client address.
type Locator interface {
	Locate(ctx context.Context, ip string) string
}

// EmailChecker validates a visitor supplied address.
type EmailChecker interface {
	Validate(ctx context.Context, email string) error
}

// Options are the collaborators of a Service. Store, DB and Config are
// required; the rest fall back to no-op implementations.
type Options struct {
	DB      *gorm.DB
	Store   *assetstore.Store
	Mailer  mailer.Sender
	Alerter *alert.Alerter
	Locator Locator
	Emails  EmailChecker
	Locker  lock.Locker
	Config  *config.Config
}

// Service orchestrates the portfolio operations using Logic.
type Service struct {
	logic   *Logic
	store   *assetstore.Store
	mailer  mailer.Sender
	alerter *alert.Alerter
	locator Locator
	emails  EmailChecker
	locker  lock.Locker
	models  *cache.Cache[uint, *ModelDetail]

	auth config.AuthConfig
	smtp config.SMTPConfig
	now  func() time.Time
}

func NewService(opts Options) *Service {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		logic:   NewLogic(opts.DB),
		store:   opts.Store,
		mailer:  opts.Mailer,
		alerter: opts.Alerter,
		locator: opts.Locator,
		emails:  opts.Emails,
		locker:  opts.Locker,
		models:  cache.New[uint, *ModelDetail](cfg.Cache.Size, cfg.Cache.TTL),
		auth:    cfg.Auth,
		smtp:    cfg.SMTP,
		now:     time.Now,
	}
	if s.mailer == nil {
		s.mailer = mailer.Log{}
	}
	if s.alerter == nil {
		s.alerter = alert.New(s.mailer, cfg.SMTP.AlertRecipient, nil)
	}
	if s.locker == nil {
		s.locker = lock.NewLocal(time.Minute)
	}
	return s
}

// Logic exposes the persistence rules, used by the CLI.
func (s *Service) Logic() *Logic { return s.logic }

func (s *Service) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.logic.db.WithContext(ctx).Transaction(fn)
}

func (s *Service) locate(ctx context.Context, ip string) string {
	if s.locator == nil {
		return "Unknown Location"
	}
	return s.locator.Locate(ctx, ip)
}

func (s *Service) checkEmail(ctx context.Context, email string) error {
	if s.emails == nil {
		return nil
	}
	return s.emails.Validate(ctx, email)
}

// release frees offloaded payloads of slots that are no longer referenced.
func (s *Service) release(ctx context.Context, slots ...model.Slot) {
	s.store.Release(context.WithoutCancel(ctx), slots...)
}
