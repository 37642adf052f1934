package service

import (
	"context"
	"testing"

	"github.com/yi-nology/showcase/biz/dal/db"
	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/codec"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/mailer"
	"github.com/yi-nology/showcase/pkg/storage/local"
	"github.com/yi-nology/showcase/pkg/validator"

	"gorm.io/gorm"
)

type fixedLocator string

func (l fixedLocator) Locate(context.Context, string) string { return string(l) }

type stubFetcher struct{ data []byte }

func (f stubFetcher) Fetch(_ context.Context, _ string, mimeType string) (*fetcher.Result, error) {
	return &fetcher.Result{Data: f.data, MimeType: mimeType}, nil
}

type testEnv struct {
	svc    *Service
	db     *gorm.DB
	mail   *mailer.Recorder
	alerts *mailer.Recorder
	alert  *alert.Alerter
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	conn := db.SetupTestDB(t)
	t.Cleanup(func() { db.CleanupTestDB(t, conn) })

	objects, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	store := assetstore.New(codec.New(codec.DefaultLevel), objects, stubFetcher{data: []byte("remote glb")}, 0)

	cfg := config.Default()
	cfg.SMTP.User = "owner@example.com"
	cfg.SMTP.AlertRecipient = "owner@example.com"

	env := &testEnv{db: conn, mail: &mailer.Recorder{}, alerts: &mailer.Recorder{}}
	env.alert = alert.New(env.alerts, cfg.SMTP.AlertRecipient, nil)
	env.svc = NewService(Options{
		DB:      conn,
		Store:   store,
		Mailer:  env.mail,
		Alerter: env.alert,
		Locator: fixedLocator("Test City"),
		Emails:  validator.NewEmailValidator(nil),
		Config:  cfg,
	})
	return env
}
