package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/pkg/alert"
)

// Honeypot answers a scanner-only path with 404 after firing an alert.
func Honeypot(alerter *alert.Alerter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		alerter.Fire(ctx, RequestAlert(c, alert.TypeHoneypot, "Probe for %s", c.Request.URI().Path()))
		c.AbortWithStatus(consts.StatusNotFound)
	}
}
