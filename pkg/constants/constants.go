package constants

// CSRF double-submit names.
const (
	CSRFCookie = "showcase_csrf"
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
)

// Year bounds accepted for uploaded models.
const (
	MinYear = 1900
	MaxYear = 2100
)

// RecentRatingsLimit caps GET /rating/all.
const RecentRatingsLimit = 50

// Offloaded payload key prefix used by the storage layer.
const ObjectKeyPrefix = "assets/"

// Route paths referenced outside the router.
const (
	PathVerifyCode   = "/verify_code"
	PathUnauthorized = "/unauthorized"
	PathUploadPage   = "/upload-page"
	PathLoadModel    = "/load_model/"
)

// SitemapExcludedPrefixes are never listed in sitemap.xml.
var SitemapExcludedPrefixes = []string{
	"/admin",
	"/login",
	"/verify_code",
	"/logout",
	"/upload-page",
	"/unauthorized",
	"/metrics",
	"/csrf-token",
	"/sitemap.xml",
}
