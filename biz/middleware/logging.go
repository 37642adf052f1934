package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/showcase/pkg/metrics"
)

// Logging returns a middleware that logs every request and records its
// latency by route.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		latency := time.Since(start)
		method := string(c.Request.Method())
		path := string(c.Request.URI().Path())
		statusCode := c.Response.StatusCode()

		// Unmatched paths share one label to keep cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.Requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
		metrics.RequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())

		hlog.CtxInfof(ctx, "[%s] %s %s %d %v",
			c.ClientIP(),
			method,
			path,
			statusCode,
			latency,
		)
	}
}
