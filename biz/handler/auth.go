package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/biz/middleware"
	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/constants"
	"github.com/yi-nology/showcase/pkg/session"
)

const pathAdminLogin = "/admin/login"

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type verifyForm struct {
	Code string `form:"verification_code"`
}

// LoginPage hands out the CSRF token of the login form. Authenticated admins
// go straight to the dashboard.
func (h *Handler) LoginPage(ctx context.Context, c *app.RequestContext) {
	if _, err := h.sessions.Parse(string(c.Cookie(session.SessionCookie)), session.StageSession); err == nil {
		c.Redirect(consts.StatusFound, []byte(constants.PathUploadPage))
		return
	}
	token := middleware.IssueCSRFToken(c, h.cfg.Auth.SecureCookies)
	c.JSON(consts.StatusOK, map[string]string{
		constants.CSRFField: token,
		"action":            string(c.Request.URI().Path()),
	})
}

// Login checks the password and starts the verification code step.
// @router /admin/login [POST]
func (h *Handler) Login(ctx context.Context, c *app.RequestContext) {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		c.Redirect(consts.StatusFound, []byte(constants.PathUnauthorized))
		return
	}

	admin, err := h.svc.Login(ctx, form.Username, form.Password, requestInfo(c))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			hlog.CtxErrorf(ctx, "admin login failed: %v", err)
		}
		c.Redirect(consts.StatusFound, []byte(constants.PathUnauthorized))
		return
	}

	token, err := h.sessions.Issue(admin.ID, session.StagePending, h.cfg.Auth.PendingTTL)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	h.setCookie(c, session.PendingCookie, token, h.cfg.Auth.PendingTTL)
	c.Redirect(consts.StatusFound, []byte(constants.PathVerifyCode))
}

// SecretLoginPage and SecretLogin only exist for the configured secret key.
// @router /login/:secret_key [GET]
func (h *Handler) SecretLoginPage(ctx context.Context, c *app.RequestContext) {
	if !h.secretKeyMatches(c) {
		c.AbortWithStatus(consts.StatusNotFound)
		return
	}
	h.LoginPage(ctx, c)
}

// @router /login/:secret_key [POST]
func (h *Handler) SecretLogin(ctx context.Context, c *app.RequestContext) {
	if !h.secretKeyMatches(c) {
		c.AbortWithStatus(consts.StatusNotFound)
		return
	}
	h.Login(ctx, c)
}

func (h *Handler) secretKeyMatches(c *app.RequestContext) bool {
	want := h.cfg.Auth.LoginSecretKey
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Param("secret_key")), []byte(want)) == 1
}

// VerifyPage requires a pending login.
// @router /verify_code [GET]
func (h *Handler) VerifyPage(ctx context.Context, c *app.RequestContext) {
	if _, ok := h.pendingAdmin(c); !ok {
		c.Redirect(consts.StatusFound, []byte(pathAdminLogin))
		return
	}
	token := middleware.IssueCSRFToken(c, h.cfg.Auth.SecureCookies)
	c.JSON(consts.StatusOK, map[string]string{
		constants.CSRFField: token,
		"message":           "Enter the verification code sent to your email.",
	})
}

// VerifyCode completes the login with the emailed code.
// @router /verify_code [POST]
func (h *Handler) VerifyCode(ctx context.Context, c *app.RequestContext) {
	adminID, ok := h.pendingAdmin(c)
	if !ok {
		c.Redirect(consts.StatusFound, []byte(pathAdminLogin))
		return
	}
	var form verifyForm
	if err := c.Bind(&form); err != nil {
		c.Redirect(consts.StatusFound, []byte(constants.PathUnauthorized))
		return
	}

	admin, err := h.svc.VerifyCode(ctx, adminID, form.Code)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCode) {
			hlog.CtxErrorf(ctx, "verify code for admin %d: %v", adminID, err)
		}
		c.Redirect(consts.StatusFound, []byte(constants.PathUnauthorized))
		return
	}

	token, err := h.sessions.Issue(admin.ID, session.StageSession, h.cfg.Auth.SessionTTL)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	h.clearCookie(c, session.PendingCookie)
	h.setCookie(c, session.SessionCookie, token, h.cfg.Auth.SessionTTL)
	hlog.CtxInfof(ctx, "admin %s logged in from %s", admin.Username, c.ClientIP())
	c.Redirect(consts.StatusFound, []byte(constants.PathUploadPage))
}

// Logout clears both login cookies.
// @router /logout [GET]
func (h *Handler) Logout(ctx context.Context, c *app.RequestContext) {
	h.clearCookie(c, session.PendingCookie)
	h.clearCookie(c, session.SessionCookie)
	c.Redirect(consts.StatusFound, []byte("/"))
}

// @router /unauthorized [GET]
func (h *Handler) Unauthorized(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusUnauthorized, common.Failure("Unauthorized access."))
}

// UploadPage is the admin dashboard entry.
// @router /upload-page [GET]
func (h *Handler) UploadPage(ctx context.Context, c *app.RequestContext) {
	adminID, _ := common.GetAdminID(ctx)
	admin, err := h.svc.Logic().GetAdmin(ctx, adminID)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	hdris, err := h.svc.HDRIs(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	data := map[string]any{
		"username":  admin.Username,
		"hdri_list": hdris.Items,
	}
	if admin.LastLogin != nil {
		data["last_login"] = admin.LastLogin.UTC().Format(time.RFC3339)
	}
	c.JSON(consts.StatusOK, common.CommonResponse{Code: consts.StatusOK, Data: data})
}

// CSRFToken issues a token for script driven forms.
// @router /csrf-token [GET]
func (h *Handler) CSRFToken(ctx context.Context, c *app.RequestContext) {
	token := middleware.IssueCSRFToken(c, h.cfg.Auth.SecureCookies)
	c.JSON(consts.StatusOK, map[string]string{constants.CSRFField: token})
}

func (h *Handler) pendingAdmin(c *app.RequestContext) (uint, bool) {
	claims, err := h.sessions.Parse(string(c.Cookie(session.PendingCookie)), session.StagePending)
	if err != nil {
		return 0, false
	}
	return claims.AdminID(), true
}

func (h *Handler) setCookie(c *app.RequestContext, name, value string, ttl time.Duration) {
	c.SetCookie(name, value, int(ttl/time.Second), "/", "", protocol.CookieSameSiteLaxMode, h.cfg.Auth.SecureCookies, true)
}

func (h *Handler) clearCookie(c *app.RequestContext, name string) {
	c.SetCookie(name, "", -1, "/", "", protocol.CookieSameSiteLaxMode, h.cfg.Auth.SecureCookies, true)
}
