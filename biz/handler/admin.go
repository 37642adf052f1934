package handler

import (
	"context"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/common"
)

const msgBadUpload = "Uploaded file could not be read"

// uploadSet reads the named file fields of a multipart form.
type uploadSet struct {
	files map[string][]*multipart.FileHeader
	err   error
}

func (u *uploadSet) one(field string) *service.Upload {
	if u.err != nil {
		return nil
	}
	up, err := readUpload(u.files, field)
	u.err = err
	return up
}

func (u *uploadSet) all(field string) []service.Upload {
	if u.err != nil {
		return nil
	}
	ups, err := readUploads(u.files, field)
	u.err = err
	return ups
}

// UploadModel .
// @router /upload [POST]
func (h *Handler) UploadModel(ctx context.Context, c *app.RequestContext) {
	set := &uploadSet{files: uploads(c)}
	in := service.ModelUploadInput{
		Name:       c.PostForm("model_name"),
		Year:       c.PostForm("year"),
		GLB:        set.one("glb_file"),
		GLBURL:     c.PostForm("glb_url"),
		Banner:     set.one("banner"),
		BannerURL:  c.PostForm("banner_url"),
		Archive:    set.one("zip_file"),
		ArchiveURL: c.PostForm("zip_url"),
		Gallery:    set.all("gallery"),
	}
	if set.err != nil {
		hlog.CtxWarnf(ctx, "read model upload: %v", set.err)
		operateReply(c, consts.StatusBadRequest, msgBadUpload)
		return
	}

	file, err := h.svc.UploadModel(ctx, in, h.adminName(ctx), common.GetClientIP(ctx))
	if err != nil {
		fail(ctx, c, err, operateReply)
		return
	}
	c.JSON(consts.StatusOK, map[string]any{
		"success": true,
		"message": "File uploaded successfully.",
		"id":      file.ID,
	})
}

// UploadHDRI .
// @router /upload_hdri [POST]
func (h *Handler) UploadHDRI(ctx context.Context, c *app.RequestContext) {
	set := &uploadSet{files: uploads(c)}
	in := service.HDRIUploadInput{
		Name:       c.PostForm("hdri_name"),
		Map:        set.one("hdri_file"),
		MapURL:     c.PostForm("hdri_url"),
		Preview:    set.one("preview_file"),
		PreviewURL: c.PostForm("preview_url"),
	}
	if in.Preview == nil {
		in.Preview = set.one("preview")
	}
	if set.err != nil {
		hlog.CtxWarnf(ctx, "read hdri upload: %v", set.err)
		operateReply(c, consts.StatusBadRequest, msgBadUpload)
		return
	}

	hdri, err := h.svc.UploadHDRI(ctx, in)
	if err != nil {
		fail(ctx, c, err, operateReply)
		return
	}
	c.JSON(consts.StatusOK, map[string]any{
		"success": true,
		"message": "HDRI and preview uploaded successfully.",
		"id":      hdri.ID,
	})
}

// UpdateFile changes the submitted fields of a model.
// @router /update_file [POST]
func (h *Handler) UpdateFile(ctx context.Context, c *app.RequestContext) {
	var id uint
	if raw := c.PostForm("file_id"); raw != "" {
		var ok bool
		if id, ok = parseID(raw); !ok {
			operateReply(c, consts.StatusBadRequest, "File ID is required")
			return
		}
	}
	set := &uploadSet{files: uploads(c)}
	in := service.ModelUpdateInput{
		ID:         id,
		Name:       c.PostForm("file_name"),
		Year:       c.PostForm("year"),
		GLB:        set.one("glb_file"),
		GLBURL:     c.PostForm("glb_url"),
		Banner:     set.one("banner"),
		BannerURL:  c.PostForm("banner_url"),
		Archive:    set.one("zip_file"),
		ArchiveURL: c.PostForm("zip_url"),
	}
	if set.err != nil {
		hlog.CtxWarnf(ctx, "read model update: %v", set.err)
		operateReply(c, consts.StatusBadRequest, msgBadUpload)
		return
	}
	if err := h.svc.UpdateModel(ctx, in); err != nil {
		fail(ctx, c, err, operateReply)
		return
	}
	operateReply(c, consts.StatusOK, "File updated successfully.")
}

// UpdateHDRI .
// @router /admin/hdri/:id/update [POST]
func (h *Handler) UpdateHDRI(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c, "id")
	if !ok {
		operateReply(c, consts.StatusNotFound, "HDRI not found")
		return
	}
	set := &uploadSet{files: uploads(c)}
	in := service.HDRIUpdateInput{
		ID:         id,
		Name:       c.PostForm("name"),
		Map:        set.one("hdri_file"),
		MapURL:     c.PostForm("hdri_url"),
		Preview:    set.one("preview"),
		PreviewURL: c.PostForm("preview_url"),
	}
	if set.err != nil {
		hlog.CtxWarnf(ctx, "read hdri update: %v", set.err)
		operateReply(c, consts.StatusBadRequest, msgBadUpload)
		return
	}
	if err := h.svc.UpdateHDRI(ctx, in); err != nil {
		fail(ctx, c, err, operateReply)
		return
	}
	operateReply(c, consts.StatusOK, "HDRI updated successfully.")
}

// AddGallery appends gallery images to a model.
// @router /admin/gallery [POST]
func (h *Handler) AddGallery(ctx context.Context, c *app.RequestContext) {
	fileID, ok := parseID(c.PostForm("file_id"))
	if !ok {
		operateReply(c, consts.StatusBadRequest, "File ID is required")
		return
	}
	set := &uploadSet{files: uploads(c)}
	images := set.all("gallery_image")
	if set.err != nil {
		hlog.CtxWarnf(ctx, "read gallery upload: %v", set.err)
		operateReply(c, consts.StatusBadRequest, msgBadUpload)
		return
	}
	n, err := h.svc.AddGalleryImages(ctx, fileID, images)
	if err != nil {
		fail(ctx, c, err, operateReply)
		return
	}
	c.JSON(consts.StatusOK, map[string]any{
		"success": true,
		"message": "Gallery updated successfully.",
		"added":   n,
	})
}

type deleteFunc func(ctx context.Context, id uint) error

func (h *Handler) deleteBy(notFound, done string, del deleteFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id, ok := pathID(c, "id")
		if !ok {
			operateReply(c, consts.StatusNotFound, notFound)
			return
		}
		if err := del(ctx, id); err != nil {
			fail(ctx, c, err, operateReply)
			return
		}
		hlog.CtxInfof(ctx, "%s %d by %s", done, id, h.adminName(ctx))
		operateReply(c, consts.StatusOK, done)
	}
}

// @router /admin/file/:id/delete [POST]
func (h *Handler) DeleteFile() app.HandlerFunc {
	return h.deleteBy("File not found", "File deleted", h.svc.DeleteModel)
}

// @router /admin/hdri/:id/delete [POST]
func (h *Handler) DeleteHDRI() app.HandlerFunc {
	return h.deleteBy("HDRI not found", "HDRI deleted", h.svc.DeleteHDRI)
}

// @router /admin/gallery/:id/delete [POST]
func (h *Handler) DeleteGallery() app.HandlerFunc {
	return h.deleteBy("Image not found", "Gallery image deleted", h.svc.DeleteGalleryImage)
}

// @router /admin/download/:id/delete [POST]
func (h *Handler) DeleteDownload() app.HandlerFunc {
	return h.deleteBy("Download not found", "Download deleted", h.svc.DeleteDownload)
}

// ManageAll lists everything an admin can edit.
// @router /admin/manage_all [GET]
func (h *Handler) ManageAll(ctx context.Context, c *app.RequestContext) {
	inv, err := h.svc.Inventory(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, inv)
}

func (h *Handler) adminName(ctx context.Context) string {
	id, ok := common.GetAdminID(ctx)
	if !ok {
		return "unknown"
	}
	admin, err := h.svc.Logic().GetAdmin(ctx, id)
	if err != nil {
		return "unknown"
	}
	return admin.Username
}
