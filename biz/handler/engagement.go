package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/yi-nology/showcase/biz/service"
	"github.com/yi-nology/showcase/pkg/common"
)

type commentForm struct {
	Email   string `form:"email"`
	FileID  string `form:"file_id"`
	Comment string `form:"comment"`
}

type engagementForm struct {
	Email  string `form:"email"`
	FileID string `form:"file_id"`
}

type ratingForm struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required"`
	Message string `form:"message" validate:"required"`
	Rating  string `form:"rating" validate:"required"`
}

type contactForm struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required"`
	Message string `form:"message" validate:"required"`
}

type emailForm struct {
	Email string `form:"email" validate:"required"`
}

// formFileID parses file_id; a missing or malformed id is left as zero for
// the service to reject.
func formFileID(raw string) (uint, bool) {
	if raw == "" {
		return 0, true
	}
	return parseID(raw)
}

// AddComment .
// @router /comment [POST]
func (h *Handler) AddComment(ctx context.Context, c *app.RequestContext) {
	var form commentForm
	if err := c.Bind(&form); err != nil {
		statusReply(c, consts.StatusBadRequest, "Email, file_id, and comment are required")
		return
	}
	fileID, ok := formFileID(form.FileID)
	if !ok {
		statusReply(c, consts.StatusBadRequest, "Invalid file_id")
		return
	}
	if err := h.svc.AddComment(ctx, form.Email, fileID, form.Comment); err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Comment added successfully")
}

// Like .
// @router /like [POST]
func (h *Handler) Like(ctx context.Context, c *app.RequestContext) {
	var form engagementForm
	if err := c.Bind(&form); err != nil {
		statusReply(c, consts.StatusBadRequest, "Email and file_id are required")
		return
	}
	fileID, ok := formFileID(form.FileID)
	if !ok {
		statusReply(c, consts.StatusBadRequest, "Invalid file_id")
		return
	}
	if err := h.svc.Like(ctx, form.Email, fileID); err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Like added successfully")
}

// Download records the download and sends the archive.
// @router /download [POST]
func (h *Handler) Download(ctx context.Context, c *app.RequestContext) {
	var form engagementForm
	if err := c.Bind(&form); err != nil {
		statusReply(c, consts.StatusBadRequest, "Email and file_id are required")
		return
	}
	fileID, ok := formFileID(form.FileID)
	if !ok {
		statusReply(c, consts.StatusBadRequest, "Invalid file_id")
		return
	}
	archive, err := h.svc.Download(ctx, form.Email, fileID, common.GetClientIP(ctx))
	if err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	sendResolved(c, archive.Resolved, archive.FileName)
}

// Comments .
// @router /comments/:file_id [GET]
func (h *Handler) Comments(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c, "file_id")
	if !ok {
		errorReply(c, consts.StatusNotFound, "File not found")
		return
	}
	view, err := h.svc.Comments(ctx, id)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, view)
}

// SubmitRating .
// @router /rating/submit [POST]
func (h *Handler) SubmitRating(ctx context.Context, c *app.RequestContext) {
	var form ratingForm
	if err := bindForm(c, &form); err != nil {
		statusReply(c, consts.StatusBadRequest, "All fields are required.")
		return
	}
	rating, err := strconv.Atoi(form.Rating)
	if err != nil {
		statusReply(c, consts.StatusBadRequest, "Invalid rating value.")
		return
	}
	err = h.svc.SubmitRating(ctx, service.RatingInput{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
		Rating:  rating,
	})
	if err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Thank you for your rating! Your feedback is valuable to us.")
}

// RatingAverage .
// @router /rating/average [GET]
func (h *Handler) RatingAverage(ctx context.Context, c *app.RequestContext) {
	summary, err := h.svc.RatingSummary(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, summary)
}

// RatingAll lists the most recent ratings.
// @router /rating/all [GET]
func (h *Handler) RatingAll(ctx context.Context, c *app.RequestContext) {
	ratings, err := h.svc.RecentRatings(ctx)
	if err != nil {
		fail(ctx, c, err, errorReply)
		return
	}
	c.JSON(consts.StatusOK, map[string]any{"ratings": ratings})
}

// Subscribe .
// @router /subscribe [POST]
func (h *Handler) Subscribe(ctx context.Context, c *app.RequestContext) {
	var form emailForm
	if err := bindForm(c, &form); err != nil {
		statusReply(c, consts.StatusBadRequest, "Invalid email address.")
		return
	}
	if err := h.svc.Subscribe(ctx, form.Email); err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Successfully subscribed!")
}

// Unsubscribe .
// @router /unsubscribe [POST]
func (h *Handler) Unsubscribe(ctx context.Context, c *app.RequestContext) {
	var form emailForm
	if err := bindForm(c, &form); err != nil {
		statusReply(c, consts.StatusBadRequest, "Invalid email address.")
		return
	}
	if err := h.svc.Unsubscribe(ctx, form.Email); err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Successfully unsubscribed!")
}

// Contact mails the site owner.
// @router /contact [POST]
func (h *Handler) Contact(ctx context.Context, c *app.RequestContext) {
	var form contactForm
	if err := bindForm(c, &form); err != nil {
		statusReply(c, consts.StatusBadRequest, "All fields are required.")
		return
	}
	if err := h.svc.Contact(ctx, form.Name, form.Email, form.Message); err != nil {
		fail(ctx, c, err, statusReply)
		return
	}
	statusReply(c, consts.StatusOK, "Your message has been sent successfully!")
}
