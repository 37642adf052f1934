package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/session"
)

// ClientInfo stores the client address into the context so services can
// geolocate uploads and downloads.
func ClientInfo() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		ctx = common.ContextWithClientIP(ctx, c.ClientIP())
		c.Next(ctx)
	}
}

// RequireAdmin returns a middleware that enforces an authenticated admin
// session. Requests without a valid session cookie are rejected with 401.
func RequireAdmin(sessions *session.Manager) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token := string(c.Cookie(session.SessionCookie))
		claims, err := sessions.Parse(token, session.StageSession)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) {
				hlog.CtxWarnf(ctx, "session check failed: %v", err)
			}
			c.AbortWithStatusJSON(consts.StatusUnauthorized, common.CommonResponse{
				Code:  consts.StatusUnauthorized,
				Error: "authentication required",
				Msg:   "admin session missing or expired",
			})
			return
		}

		ctx = common.ContextWithAdminID(ctx, claims.AdminID())
		c.Next(ctx)
	}
}

// RequestAlert fills an alert with the details of the current request.
func RequestAlert(c *app.RequestContext, typ, format string, args ...any) alert.Alert {
	return alert.Alert{
		Type:      typ,
		Details:   fmt.Sprintf(format, args...),
		IP:        c.ClientIP(),
		UserAgent: string(c.UserAgent()),
		Path:      string(c.Request.URI().Path()),
		Method:    string(c.Request.Method()),
	}
}
