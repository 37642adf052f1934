package handler

import (
	"context"
	"encoding/xml"
	"sort"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap lists every parameterless GET route outside the excluded prefixes.
// Routes are read per request so the map always matches the router.
func Sitemap(routes func() route.RoutesInfo, baseURL string, excluded []string) app.HandlerFunc {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return func(ctx context.Context, c *app.RequestContext) {
		paths := SitemapPaths(routes(), excluded)
		set := urlSet{Xmlns: sitemapNS, URLs: make([]sitemapURL, 0, len(paths))}
		for _, p := range paths {
			set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + p})
		}

		body, err := xml.MarshalIndent(set, "", "  ")
		if err != nil {
			fail(ctx, c, err, errorReply)
			return
		}
		c.Data(consts.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
	}
}

// SitemapPaths filters and sorts the listable paths of routes.
func SitemapPaths(routes route.RoutesInfo, excluded []string) []string {
	seen := make(map[string]struct{})
	for _, r := range routes {
		if r.Method != consts.MethodGet || strings.ContainsAny(r.Path, ":*") || isExcluded(r.Path, excluded) {
			continue
		}
		seen[r.Path] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func isExcluded(path string, excluded []string) bool {
	for _, prefix := range excluded {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
