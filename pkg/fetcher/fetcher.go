// Package fetcher downloads externally hosted assets on behalf of clients.
//
// Google Drive share links are rewritten to direct download links, and the
// interstitial "can't scan this file for viruses" page is answered once with
// its confirm token.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 60 * time.Second

	fallbackMime     = "application/octet-stream"
	fallbackConfirm  = "t"
	driveHost        = "drive.google.com"
	driveDownloadURL = "https://drive.google.com/uc?export=download&id="
)

var (
	// ErrAuthRequired means the upstream kept answering with an HTML page.
	ErrAuthRequired = errors.New("external file requires authentication or is not publicly shared")
	// ErrFetchFailed covers transport errors and error statuses.
	ErrFetchFailed = errors.New("failed to fetch external file")

	driveFilePath   = regexp.MustCompile(`^/file/d/([^/]+)`)
	confirmParam    = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)
	confirmInput    = regexp.MustCompile(`name="confirm"\s+value="([0-9A-Za-z_-]+)"`)
	confirmInputAlt = regexp.MustCompile(`value="([0-9A-Za-z_-]+)"\s+name="confirm"`)
)

// Result is a fetched payload.
type Result struct {
	Data     []byte
	MimeType string
}

// Client fetches external assets. It is safe for concurrent use; every fetch
// gets its own cookie jar.
type Client struct {
	timeout time.Duration
}

// New creates a Client. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{timeout: timeout}
}

// Fetch downloads rawURL. The returned mimetype is mimeType when set, then the
// response content type, then application/octet-stream.
func (c *Client) Fetch(ctx context.Context, rawURL, mimeType string) (*Result, error) {
	target := NormalizeURL(rawURL)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %v", ErrFetchFailed, err)
	}
	client := resty.New().
		SetTimeout(c.timeout).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	resp, err := get(ctx, client, target)
	if err != nil {
		return nil, err
	}

	if isHTML(resp) {
		token := ConfirmToken(resp.Body())
		if token == "" {
			token = fallbackConfirm
		}
		resp, err = get(ctx, client, withConfirm(target, token))
		if err != nil {
			return nil, err
		}
		if isHTML(resp) {
			return nil, ErrAuthRequired
		}
	}

	return &Result{Data: resp.Body(), MimeType: pickMime(mimeType, resp.Header().Get("Content-Type"))}, nil
}

func get(ctx context.Context, client *resty.Client, target string) (*resty.Response, error) {
	resp, err := client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrFetchFailed, resp.StatusCode())
	}
	return resp, nil
}

// NormalizeURL rewrites Google Drive share links to direct download links.
// Other URLs are returned unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, driveHost) {
		return raw
	}
	if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
		return driveDownloadURL + url.QueryEscape(m[1])
	}
	if u.Path == "/open" || u.Path == "/uc" {
		if id := u.Query().Get("id"); id != "" {
			return driveDownloadURL + url.QueryEscape(id)
		}
	}
	return raw
}

// ConfirmToken extracts the download confirmation token from an interstitial page.
func ConfirmToken(page []byte) string {
	for _, re := range []*regexp.Regexp{confirmParam, confirmInput, confirmInputAlt} {
		if m := re.FindSubmatch(page); m != nil {
			return string(m[1])
		}
	}
	return ""
}

func withConfirm(target, token string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("confirm", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func isHTML(resp *resty.Response) bool {
	mt, _, _ := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	return mt == "text/html"
}

func pickMime(declared, header string) string {
	if declared != "" {
		return declared
	}
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
	}
	return fallbackMime
}
