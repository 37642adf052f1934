package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/constants"
)

const (
	csrfReasonMissing  = "The CSRF token is missing."
	csrfReasonMismatch = "The CSRF tokens do not match."
)

// IssueCSRFToken sets a fresh double-submit cookie and returns its value.
func IssueCSRFToken(c *app.RequestContext, secure bool) string {
	token := uuid.NewString()
	c.SetCookie(constants.CSRFCookie, token, 0, "/", "", protocol.CookieSameSiteStrictMode, secure, false)
	return token
}

// CSRF rejects unsafe requests whose cookie token is not echoed back in the
// X-CSRF-Token header or the csrf_token form field. Routes in exempt are
// matched against the registered path and skip the check.
func CSRF(alerter *alert.Alerter, exempt ...string) app.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, path := range exempt {
		skip[path] = struct{}{}
	}
	return func(ctx context.Context, c *app.RequestContext) {
		switch string(c.Request.Method()) {
		case consts.MethodGet, consts.MethodHead, consts.MethodOptions:
			c.Next(ctx)
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			c.Next(ctx)
			return
		}

		cookie := c.Cookie(constants.CSRFCookie)
		sent := c.GetHeader(constants.CSRFHeader)
		if len(sent) == 0 {
			sent = []byte(c.PostForm(constants.CSRFField))
		}

		reason := ""
		switch {
		case len(cookie) == 0 || len(sent) == 0:
			reason = csrfReasonMissing
		case subtle.ConstantTimeCompare(cookie, sent) != 1:
			reason = csrfReasonMismatch
		}
		if reason != "" {
			alerter.Fire(ctx, RequestAlert(c, alert.TypeCSRF, "Reason: %s", reason))
			c.AbortWithStatusJSON(consts.StatusBadRequest, common.Failure("CSRF validation failed: "+reason))
			return
		}
		c.Next(ctx)
	}
}
