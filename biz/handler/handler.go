package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/common"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/lock"
	"github.com/yi-nology/showcase/pkg/session"
	"github.com/yi-nology/showcase/pkg/validator"
)

const msgUnexpected = "An unexpected error occurred."

// Handler serves every HTTP route of the site.
type Handler struct {
	svc      *service.Service
	sessions *session.Manager
	cfg      *config.Config
}

func NewHandler(svc *service.Service, sessions *session.Manager, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{svc: svc, sessions: sessions, cfg: cfg}
}

// Ping is the liveness probe.
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, common.CommonResponse{Code: consts.StatusOK, Msg: "pong"})
}

// --------------------- Response helpers ---------------------

// OperateResult is the {"success","message"} body of admin forms.
type OperateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// replyFunc writes one response style.
type replyFunc func(c *app.RequestContext, status int, msg string)

func statusReply(c *app.RequestContext, status int, msg string) {
	if status < consts.StatusBadRequest {
		c.JSON(status, common.Success(msg))
		return
	}
	c.JSON(status, common.Failure(msg))
}

func operateReply(c *app.RequestContext, status int, msg string) {
	c.JSON(status, OperateResult{Success: status < consts.StatusBadRequest, Message: msg})
}

func errorReply(c *app.RequestContext, status int, msg string) {
	c.JSON(status, common.CommonResponse{Code: status, Error: msg})
}

// errorStatus maps service errors to a status code and a client message.
func errorStatus(err error) (int, string) {
	var fe *validator.FieldError
	switch {
	case service.IsValidation(err):
		return consts.StatusBadRequest, err.Error()
	case errors.As(err, &fe):
		return consts.StatusBadRequest, fe.Error()
	case errors.Is(err, validator.ErrInvalidEmail):
		return consts.StatusBadRequest, "Invalid email address."
	case errors.Is(err, service.ErrAlreadySubscribed):
		return consts.StatusBadRequest, "Email is already subscribed."
	case errors.Is(err, service.ErrNotSubscribed):
		return consts.StatusBadRequest, "Email not found in subscription list."
	case errors.Is(err, service.ErrAlreadyLiked):
		return consts.StatusConflict, "You have already liked this model."
	case errors.Is(err, service.ErrFileNotFound):
		return consts.StatusNotFound, "File not found"
	case errors.Is(err, service.ErrHDRINotFound):
		return consts.StatusNotFound, "HDRI not found"
	case errors.Is(err, service.ErrGalleryNotFound):
		return consts.StatusNotFound, "Image not found"
	case errors.Is(err, service.ErrDownloadNotFound):
		return consts.StatusNotFound, "Download not found"
	case errors.Is(err, service.ErrNoArchive):
		return consts.StatusNotFound, "No downloadable archive for this model"
	case errors.Is(err, assetstore.ErrMissingContent):
		return consts.StatusNotFound, "Content not found"
	case errors.Is(err, fetcher.ErrAuthRequired):
		return consts.StatusForbidden, fetcher.ErrAuthRequired.Error()
	case errors.Is(err, fetcher.ErrFetchFailed):
		return consts.StatusInternalServerError, "Failed to fetch external file"
	case errors.Is(err, service.ErrContactFailed):
		return consts.StatusInternalServerError, "Your message could not be sent. Please try again later."
	case errors.Is(err, lock.ErrTimeout):
		return consts.StatusServiceUnavailable, "service busy, please retry later"
	default:
		return consts.StatusInternalServerError, msgUnexpected
	}
}

// fail writes err in the given style. Server errors are logged, never echoed.
func fail(ctx context.Context, c *app.RequestContext, err error, reply replyFunc) {
	status, msg := errorStatus(err)
	if status >= consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "%s %s: %v", c.Request.Method(), c.Request.URI().Path(), err)
	}
	reply(c, status, msg)
}

// sendResolved writes a resolved asset, either as a redirect or inline bytes.
func sendResolved(c *app.RequestContext, res *assetstore.Resolved, attachment string) {
	if res.Redirect != "" {
		c.Redirect(consts.StatusFound, []byte(res.Redirect))
		return
	}
	if attachment != "" {
		c.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
	}
	c.Data(consts.StatusOK, res.MimeType, res.Data)
}

// --------------------- Request helpers ---------------------

// pathID parses a positive numeric path parameter.
func pathID(c *app.RequestContext, name string) (uint, bool) {
	return parseID(c.Param(name))
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindForm binds the request into form and checks its validate tags.
func bindForm(c *app.RequestContext, form any) error {
	if err := c.Bind(form); err != nil {
		return err
	}
	return validator.Struct(form)
}

// uploads returns the multipart files of the request; nil when it is not multipart.
func uploads(c *app.RequestContext) map[string][]*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File
}

// readUpload reads the first non-empty file of field, or nil when absent.
func readUpload(files map[string][]*multipart.FileHeader, field string) (*service.Upload, error) {
	for _, fh := range files[field] {
		if fh.Filename == "" {
			continue
		}
		return readFileHeader(fh)
	}
	return nil, nil
}

// readUploads reads every non-empty file of field.
func readUploads(files map[string][]*multipart.FileHeader, field string) ([]service.Upload, error) {
	var out []service.Upload
	for _, fh := range files[field] {
		if fh.Filename == "" {
			continue
		}
		up, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, *up)
	}
	return out, nil
}

func readFileHeader(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return &service.Upload{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func requestInfo(c *app.RequestContext) service.RequestInfo {
	return service.RequestInfo{
		IP:        c.ClientIP(),
		UserAgent: string(c.UserAgent()),
		Path:      string(c.Request.URI().Path()),
		Method:    string(c.Request.Method()),
	}
}
