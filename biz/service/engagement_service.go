package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"

	"github.com/yi-nology/showcase/biz/dal/db"
	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/validator"
)

var (
	ErrAlreadyLiked = errors.New("model already liked with this email")
	ErrNoArchive    = errors.New("model has no downloadable archive")
)

// Archive is a model archive ready to be sent or redirected to.
type Archive struct {
	FileName string
	*assetstore.Resolved
}

// CommentsView is a model name with its comments, newest first.
type CommentsView struct {
	FileName string          `json:"file_name"`
	Comments []model.Comment `json:"comments"`
}

// AddComment stores a comment and bumps the comment counter atomically.
func (s *Service) AddComment(ctx context.Context, email string, fileID uint, text string) error {
	email = strings.TrimSpace(email)
	text = strings.TrimSpace(text)
	if email == "" || fileID == 0 || text == "" {
		return invalid("Email, file_id, and comment are required")
	}
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.logic.RequireFile(ctx, tx, fileID); err != nil {
			return err
		}
		if err := s.logic.engagementDAO.CreateComment(ctx, tx, &model.Comment{Email: email, FileID: fileID, Comment: text}); err != nil {
			return err
		}
		return s.logic.IncrementCounter(ctx, tx, fileID, db.CounterComments, 1)
	})
	if err != nil {
		return err
	}
	s.models.Invalidate(fileID)
	return nil
}

// Like records one like per (email, model). A repeated like changes nothing
// and fails with ErrAlreadyLiked.
func (s *Service) Like(ctx context.Context, email string, fileID uint) error {
	email = strings.TrimSpace(email)
	if email == "" || fileID == 0 {
		return invalid("Email and file_id are required")
	}
	if err := s.checkEmail(ctx, email); err != nil {
		return err
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.logic.RequireFile(ctx, tx, fileID); err != nil {
			return err
		}
		liked, err := s.logic.engagementDAO.HasLiked(ctx, tx, email, fileID)
		if err != nil {
			return err
		}
		if liked {
			return ErrAlreadyLiked
		}
		if err := s.logic.engagementDAO.CreateLike(ctx, tx, &model.Like{Email: email, FileID: fileID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		return s.logic.IncrementCounter(ctx, tx, fileID, db.CounterLikes, 1)
	})
	if err != nil {
		return err
	}
	s.models.Invalidate(fileID)
	return nil
}

// Download records the download with the client location and returns the
// archive. External archives resolve to a redirect.
func (s *Service) Download(ctx context.Context, email string, fileID uint, clientIP string) (*Archive, error) {
	email = strings.TrimSpace(email)
	if email == "" || fileID == 0 {
		return nil, invalid("Email and file_id are required")
	}
	if err := s.checkEmail(ctx, email); err != nil {
		return nil, err
	}
	file, err := s.logic.GetFileSlot(ctx, fileID, prefixArchive)
	if err != nil {
		return nil, err
	}
	if file.Archive.IsZero() {
		return nil, ErrNoArchive
	}

	location := s.locate(ctx, clientIP)
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.logic.engagementDAO.CreateDownload(ctx, tx, &model.Download{Email: email, FileID: fileID, Location: location}); err != nil {
			return err
		}
		return s.logic.IncrementCounter(ctx, tx, fileID, db.CounterDownloads, 1)
	})
	if err != nil {
		return nil, err
	}
	s.models.Invalidate(fileID)

	res, err := s.store.Resolve(ctx, file.Archive, assetstore.Policy{External: assetstore.Redirect, FallbackMime: validator.MimeZip})
	if err != nil {
		return nil, err
	}
	if res.Redirect == "" {
		res.MimeType = validator.MimeZip
	}
	return &Archive{FileName: file.FileName + ".zip", Resolved: res}, nil
}

// DeleteDownload removes a download record and decrements the counter.
func (s *Service) DeleteDownload(ctx context.Context, id uint) error {
	var fileID uint
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		d, err := s.logic.engagementDAO.GetDownload(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, ErrDownloadNotFound)
		}
		fileID = d.FileID
		if err := s.logic.engagementDAO.DeleteDownload(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrDownloadNotFound)
		}
		err = s.logic.IncrementCounter(ctx, tx, d.FileID, db.CounterDownloads, -1)
		if errors.Is(err, ErrFileNotFound) {
			hlog.CtxWarnf(ctx, "download %d belongs to missing model %d", id, d.FileID)
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	s.models.Invalidate(fileID)
	return nil
}

// Comments lists the comments of a model, newest first.
func (s *Service) Comments(ctx context.Context, fileID uint) (*CommentsView, error) {
	file, err := s.logic.GetFileSummary(ctx, fileID)
	if err != nil {
		return nil, err
	}
	comments, err := s.logic.engagementDAO.ListComments(ctx, s.logic.db, fileID)
	if err != nil {
		return nil, err
	}
	return &CommentsView{FileName: file.FileName, Comments: comments}, nil
}

// IsEmailError reports whether err came from visitor email validation.
func IsEmailError(err error) bool {
	return errors.Is(err, validator.ErrInvalidEmail)
}
