package router

import (
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yi-nology/showcase/biz/handler"
	"github.com/yi-nology/showcase/biz/handler/version"
	"github.com/yi-nology/showcase/biz/middleware"
	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/constants"
	"github.com/yi-nology/showcase/pkg/lock"
	"github.com/yi-nology/showcase/pkg/ratelimit"
	"github.com/yi-nology/showcase/pkg/session"
)

// Deps are the collaborators the routes are wired with. A nil Locker leaves
// admin writes unserialized; a nil Limiter disables rate limiting.
type Deps struct {
	Handler  *handler.Handler
	Sessions *session.Manager
	Alerter  *alert.Alerter
	Limiter  ratelimit.Limiter
	Locker   lock.Locker
	Config   *config.Config
}

type routeLimits struct {
	global, login, verify, rating []ratelimit.Rule
}

func parseLimits(cfg config.RateLimitConfig) (*routeLimits, error) {
	l := &routeLimits{}
	if !cfg.Enabled {
		return l, nil
	}
	var err error
	if l.global, err = ratelimit.ParseRules(cfg.Default); err != nil {
		return nil, err
	}
	if l.login, err = ratelimit.ParseRules([]string{cfg.Login}); err != nil {
		return nil, err
	}
	if l.verify, err = ratelimit.ParseRules([]string{cfg.Verify}); err != nil {
		return nil, err
	}
	if l.rating, err = ratelimit.ParseRules([]string{cfg.Rating}); err != nil {
		return nil, err
	}
	return l, nil
}

// Register configures every route of the site on r.
func Register(r *route.Engine, d Deps) error {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	limits, err := parseLimits(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("rate limits: %w", err)
	}
	limit := func(scope string, rules []ratelimit.Rule) app.HandlerFunc {
		return middleware.RateLimit(d.Limiter, d.Alerter, scope, rules...)
	}

	r.Use(
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(&cfg.CORS),
		middleware.ClientInfo(),
		limit("global", limits.global),
	)
	if cfg.Auth.CSRF {
		r.Use(middleware.CSRF(d.Alerter, cfg.Server.Honeypots...))
	}

	h := d.Handler

	// Public pages and assets.
	r.GET("/", h.Index)
	r.GET("/ping", handler.Ping)
	r.GET("/works", h.Works)
	r.GET("/gallery/:year", h.YearGallery)
	r.GET("/image/:id", h.Banner())
	r.GET("/model/:id", h.RedirectModel)
	r.GET("/load_model/:id", h.LoadModel)
	r.GET("/comments/:file_id", h.Comments)
	r.GET("/youtube_videos", h.Videos)

	api := r.Group("/api")
	api.GET("/model/:id", h.Model())
	api.GET("/hdri", h.HDRIList)
	api.GET("/hdri/:id", h.HDRI())
	api.GET("/hdri/preview/:id", h.HDRIPreview())
	api.GET("/gallery-images/:model_id", h.GalleryImages)
	api.GET("/accomplishments", h.Accomplishments)
	api.GET("/storyline", h.Storyline)
	api.GET("/version", version.GetVersion)
	api.GET("/version/latest", version.GetLatestRelease)

	// Visitor forms.
	r.POST("/comment", h.AddComment)
	r.POST("/like", h.Like)
	r.POST("/download", h.Download)
	r.POST("/rating/submit", limit("rating", limits.rating), h.SubmitRating)
	r.GET("/rating/average", h.RatingAverage)
	r.GET("/rating/all", h.RatingAll)
	r.POST("/subscribe", h.Subscribe)
	r.POST("/unsubscribe", h.Unsubscribe)
	r.POST("/contact", h.Contact)
	r.GET("/csrf-token", h.CSRFToken)

	// Login flow.
	r.GET("/admin/login", h.LoginPage)
	r.POST("/admin/login", limit("login", limits.login), h.Login)
	r.GET("/login/:secret_key", h.SecretLoginPage)
	r.POST("/login/:secret_key", limit("login", limits.login), h.SecretLogin)
	r.GET(constants.PathVerifyCode, h.VerifyPage)
	r.POST(constants.PathVerifyCode, limit("verify", limits.verify), h.VerifyCode)
	r.GET("/logout", h.Logout)
	r.GET(constants.PathUnauthorized, h.Unauthorized)

	// Admin.
	requireAdmin := middleware.RequireAdmin(d.Sessions)
	writes := append([]app.HandlerFunc{requireAdmin}, middleware.WriteLock(d.Locker)...)
	write := func(hf app.HandlerFunc) []app.HandlerFunc {
		return append(append([]app.HandlerFunc{}, writes...), hf)
	}

	r.GET(constants.PathUploadPage, requireAdmin, h.UploadPage)
	r.POST("/upload", write(h.UploadModel)...)
	r.POST("/upload_hdri", write(h.UploadHDRI)...)
	r.POST("/update_file", write(h.UpdateFile)...)

	admin := r.Group("/admin", requireAdmin)
	admin.GET("/manage_all", h.ManageAll)
	admin.GET("/image/:id", h.Banner())
	admin.GET("/gallery_image/:id", h.GalleryImage())
	admin.GET("/preview_hdri/:id", h.HDRIPreview())

	adminWrites := r.Group("/admin", writes...)
	adminWrites.POST("/hdri/:id/update", h.UpdateHDRI)
	adminWrites.POST("/hdri/:id/delete", h.DeleteHDRI())
	adminWrites.POST("/file/:id/delete", h.DeleteFile())
	adminWrites.POST("/gallery", h.AddGallery)
	adminWrites.POST("/gallery/:id/delete", h.DeleteGallery())
	adminWrites.POST("/download/:id/delete", h.DeleteDownload())

	// Operations.
	r.GET("/metrics", adaptor.HertzHandler(promhttp.Handler()))
	for _, path := range cfg.Server.Honeypots {
		r.Any(path, middleware.Honeypot(d.Alerter))
	}
	excluded := append(append([]string{}, constants.SitemapExcludedPrefixes...), cfg.Server.Honeypots...)
	r.GET("/sitemap.xml", handler.Sitemap(r.Routes, cfg.Server.BaseURL, excluded))
	return nil
}
