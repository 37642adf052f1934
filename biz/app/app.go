// Package app assembles the service graph shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/codec"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/database"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/geo"
	"github.com/yi-nology/showcase/pkg/lock"
	"github.com/yi-nology/showcase/pkg/mailer"
	"github.com/yi-nology/showcase/pkg/ratelimit"
	"github.com/yi-nology/showcase/pkg/redis"
	"github.com/yi-nology/showcase/pkg/storage"
	"github.com/yi-nology/showcase/pkg/validator"
)

const (
	writeLockTTL     = 10 * time.Minute
	writeLockTimeout = 30 * time.Second
)

// App holds the wired collaborators. Close releases them in reverse order.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Service *service.Service
	Alerter *alert.Alerter
	Limiter ratelimit.Limiter
	// Locker is shared by admin writes and compaction. It is process local
	// unless Redis is enabled.
	Locker lock.Locker

	closers []io.Closer
}

// Build opens the database, migrates it and wires the service.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, closerFunc(func() error { return database.Close(db) }))
	if err := model.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	objects, err := storage.New(cfg.Storage.Config)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	store := assetstore.New(codec.New(cfg.Storage.CompressionLevel), objects, fetcher.New(cfg.Fetcher.Timeout), cfg.Storage.OffloadThreshold)

	sender := mailer.New(cfg.SMTP)
	audit, auditCloser, err := alert.NewAuditLogger(cfg.Log.AuditFile)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	a.closers = append(a.closers, auditCloser)
	a.Alerter = alert.New(sender, cfg.SMTP.AlertRecipient, audit)

	var resolver validator.MXResolver
	if cfg.Email.CheckMX {
		r, err := validator.NewDNSResolver(cfg.Email.Resolver, cfg.Email.Timeout)
		if err != nil {
			return fmt.Errorf("init mx resolver: %w", err)
		}
		resolver = r
	}

	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client != nil {
		a.closers = append(a.closers, client)
		a.Locker = lock.New(client, redis.Key("lock", "write"), writeLockTTL, writeLockTimeout)
	} else {
		a.Locker = lock.NewLocal(writeLockTimeout)
	}
	if a.Limiter, err = ratelimit.New(client); err != nil {
		return fmt.Errorf("init rate limiter: %w", err)
	}

	a.Service = service.NewService(service.Options{
		DB:      db,
		Store:   store,
		Mailer:  sender,
		Alerter: a.Alerter,
		Locator: geo.New(cfg.Geo.Endpoint, cfg.Geo.Timeout),
		Emails:  validator.NewEmailValidator(resolver),
		Locker:  a.Locker,
		Config:  cfg,
	})
	return nil
}

// Close waits for pending alert mails and releases every resource.
func (a *App) Close() error {
	if a.Alerter != nil {
		a.Alerter.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// SetLogLevel maps a config level name onto hlog.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		hlog.SetLevel(hlog.LevelTrace)
	case "debug":
		hlog.SetLevel(hlog.LevelDebug)
	case "warn", "warning":
		hlog.SetLevel(hlog.LevelWarn)
	case "error":
		hlog.SetLevel(hlog.LevelError)
	default:
		hlog.SetLevel(hlog.LevelInfo)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
