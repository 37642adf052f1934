package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/metrics"
	"github.com/yi-nology/showcase/pkg/ratelimit"
)

// RateLimit enforces rules per client IP within scope. The first exhausted
// rule rejects the request with 429 and fires an alert. Limiter failures let
// the request through.
func RateLimit(limiter ratelimit.Limiter, alerter *alert.Alerter, scope string, rules ...ratelimit.Rule) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if limiter == nil || len(rules) == 0 {
			c.Next(ctx)
			return
		}

		key := strings.Join([]string{scope, c.ClientIP()}, ":")
		for _, rule := range rules {
			ok, err := limiter.Allow(ctx, key, rule)
			if err != nil {
				hlog.CtxErrorf(ctx, "rate limiter unavailable for %s: %v", scope, err)
				break
			}
			if ok {
				continue
			}

			metrics.RateLimited.WithLabelValues(scope).Inc()
			alerter.Fire(ctx, RequestAlert(c, alert.TypeRateLimit, "Limit Hit: %s", rule))
			c.AbortWithStatusJSON(consts.StatusTooManyRequests,
				common.Failure("Too many requests. Please slow down and try again later."))
			return
		}
		c.Next(ctx)
	}
}
