// Package geo resolves client IP addresses to a human readable location.
package geo

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-resty/resty/v2"
)

// Unknown is returned whenever a lookup does not succeed.
const Unknown = "Unknown Location"

const (
	DefaultEndpoint = "http://ip-api.com/json/"
	DefaultTimeout  = 5 * time.Second
)

type lookupResponse struct {
	Status     string `json:"status"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
	Country    string `json:"country"`
}

// Locator queries an ip-api.com compatible endpoint.
type Locator struct {
	client   *resty.Client
	endpoint string
}

func New(endpoint string, timeout time.Duration) *Locator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Locator{
		client:   resty.New().SetTimeout(timeout),
		endpoint: endpoint,
	}
}

// Locate returns "City, Region, Country" for ip, or Unknown.
func (l *Locator) Locate(ctx context.Context, ip string) string {
	if ip == "" {
		return Unknown
	}
	var out lookupResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get(l.endpoint + url.PathEscape(ip))
	if err != nil {
		hlog.CtxWarnf(ctx, "geolocation lookup for %s failed: %v", ip, err)
		return Unknown
	}
	if resp.IsError() || out.Status != "success" {
		return Unknown
	}
	return strings.Join([]string{
		orUnknown(out.City),
		orUnknown(out.RegionName),
		orUnknown(out.Country),
	}, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
