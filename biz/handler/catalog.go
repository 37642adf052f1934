package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/constants"
)

type resolveFunc func(ctx context.Context, id uint) (*assetstore.Resolved, error)

// serveAsset resolves the asset named by the path parameter and writes it.
func (h *Handler) serveAsset(param, notFound string, resolve resolveFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id, ok := pathID(c, param)
		if !ok {
			errorReply(c, consts.StatusNotFound, notFound)
			return
		}
		res, err := resolve(ctx, id)
		if err != nil {
			fail(ctx, c, err, errorReply)
			return
		}
		sendResolved(c, res, "")
	}
}

// Model streams the GLB of a model. External models are always proxied.
// @router /api/model/:id [GET]
func (h *Handler) Model() app.HandlerFunc {
	return h.serveAsset("id", "Model not found", h.svc.ModelPayload)
}

// Banner .
// @router /image/:id [GET]
func (h *Handler) Banner() app.HandlerFunc {
	return h.serveAsset("id", "Image not found", h.svc.Banner)
}

// HDRI .
// @router /api/hdri/:id [GET]
func (h *Handler) HDRI() app.HandlerFunc {
	return h.serveAsset("id", "HDRI not found", h.svc.HDRIMap)
}

// HDRIPreview .
// @router /api/hdri/preview/:id [GET]
func (h *Handler) HDRIPreview() app.HandlerFunc {
	return h.serveAsset("id", "Preview not found", h.svc.HDRIPreview)
}

// GalleryImage .
// @router /admin/gallery_image/:id [GET]
func (h *Handler) GalleryImage() app.HandlerFunc {
	return h.serveAsset("id", "Image not found", h.svc.GalleryImage)
}

// HDRIList .
// @router /api/hdri [GET]
func (h *Handler) HDRIList(ctx context.Context, c *app.RequestContext) {
	list, err := h.svc.HDRIs(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, list)
}

// GalleryImages returns the gallery of a model as data URIs.
// @router /api/gallery-images/:model_id [GET]
func (h *Handler) GalleryImages(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c, "model_id")
	if !ok {
		errorReply(c, consts.StatusNotFound, "Model not found")
		return
	}
	images, err := h.svc.GalleryDataURIs(ctx, id)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, images)
}

// YearGallery lists the models of one year.
// @router /gallery/:year [GET]
func (h *Handler) YearGallery(ctx context.Context, c *app.RequestContext) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < constants.MinYear || year > constants.MaxYear {
		errorReply(c, consts.StatusNotFound, "Year not found")
		return
	}
	files, err := h.svc.ModelsByYear(ctx, year)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, map[string]any{"year": year, "files": files})
}

// RedirectModel keeps old model links working.
// @router /model/:id [GET]
func (h *Handler) RedirectModel(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c, "id")
	if !ok {
		errorReply(c, consts.StatusNotFound, "Model not found")
		return
	}
	c.Redirect(consts.StatusFound, []byte(fmt.Sprintf("%s%d", constants.PathLoadModel, id)))
}

// LoadModel returns the model page data.
// @router /load_model/:id [GET]
func (h *Handler) LoadModel(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c, "id")
	if !ok {
		errorReply(c, consts.StatusNotFound, "Model not found")
		return
	}
	detail, err := h.svc.ModelDetail(ctx, id)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, detail)
}

// Works summarizes the portfolio by year.
// @router /works [GET]
func (h *Handler) Works(ctx context.Context, c *app.RequestContext) {
	years, err := h.svc.Works(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, map[string][]service.YearOverview{"years_data": years})
}

// @router /youtube_videos [GET]
func (h *Handler) Videos(ctx context.Context, c *app.RequestContext) {
	videos, err := h.svc.Videos(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, videos)
}

// @router /api/accomplishments [GET]
func (h *Handler) Accomplishments(ctx context.Context, c *app.RequestContext) {
	items, err := h.svc.Accomplishments(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, items)
}

// @router /api/storyline [GET]
func (h *Handler) Storyline(ctx context.Context, c *app.RequestContext) {
	items, err := h.svc.Storyline(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, items)
}

// Index points clients at the browsable sections.
// @router / [GET]
func (h *Handler) Index(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{
		"works":           "/works",
		"hdri":            "/api/hdri",
		"storyline":       "/api/storyline",
		"accomplishments": "/api/accomplishments",
		"videos":          "/youtube_videos",
		"ratings":         "/rating/all",
	})
}
