package main

import (
	"context"
	"flag"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/showcase/biz/app"
	"github.com/yi-nology/showcase/biz/handler"
	"github.com/yi-nology/showcase/biz/handler/version"
	"github.com/yi-nology/showcase/biz/jobs"
	"github.com/yi-nology/showcase/biz/router"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/session"
)

// Set via -ldflags "-X main.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	version.AppVersion = Version
	version.AppGitCommit = GitCommit
	version.AppBuildTime = BuildTime

	cfg := config.MustLoad(*configPath)
	app.SetLogLevel(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		hlog.Fatalf("init: %v", err)
	}
	defer a.Close()

	sessions, err := session.NewManager(cfg.Auth.SessionSecret)
	if err != nil {
		hlog.Fatalf("init sessions: %v", err)
	}
	if cfg.Auth.SessionSecret == "" {
		hlog.Warn("auth.session_secret is empty, admin sessions will not survive a restart")
	}

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxBodySize),
	)
	err = router.Register(h.Engine, router.Deps{
		Handler:  handler.NewHandler(a.Service, sessions, cfg),
		Sessions: sessions,
		Alerter:  a.Alerter,
		Limiter:  a.Limiter,
		Locker:   a.Locker,
		Config:   cfg,
	})
	if err != nil {
		hlog.Fatalf("register routes: %v", err)
	}

	if cfg.Jobs.Enabled {
		if _, err := jobs.Schedule(ctx, a.Service, cfg.Jobs); err != nil {
			hlog.Fatalf("schedule jobs: %v", err)
		}
	}
	h.OnShutdown = append(h.OnShutdown, func(context.Context) { cancel() })

	hlog.Infof("showcase %s (%s) listening on %s", Version, GitCommit, cfg.Server.Address)
	h.Spin()
}
