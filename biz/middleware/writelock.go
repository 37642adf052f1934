package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/lock"
)

// WriteLock returns a middleware slice that serializes admin writes through
// l. A nil lock (Redis disabled) returns nil so requests pass through without
// any locking overhead.
func WriteLock(l lock.Locker) []app.HandlerFunc {
	if l == nil {
		return nil
	}
	return []app.HandlerFunc{writeLockHandler(l)}
}

func writeLockHandler(l lock.Locker) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		lockID, err := l.Acquire(ctx)
		if err != nil {
			hlog.CtxWarnf(ctx, "[WriteLock] failed to acquire lock: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, common.CommonResponse{
				Code: http.StatusServiceUnavailable,
				Msg:  "service busy, please retry later",
			})
			return
		}
		defer func() {
			if releaseErr := l.Release(context.WithoutCancel(ctx), lockID); releaseErr != nil {
				hlog.CtxErrorf(ctx, "[WriteLock] failed to release lock: %v", releaseErr)
			}
		}()
		c.Next(ctx)
	}
}
