package middleware

import (
	"context"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/pkg/common"
)

// Recovery returns a middleware that recovers from panics and logs the error.
// The panic value stays in the server log.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				hlog.CtxErrorf(ctx, "panic recovered: %v\n%s", err, string(debug.Stack()))
				c.AbortWithStatusJSON(consts.StatusInternalServerError, common.CommonResponse{
					Code:  consts.StatusInternalServerError,
					Error: "internal server error",
				})
			}
		}()

		c.Next(ctx)
	}
}
