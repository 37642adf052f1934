package db

import (
	"context"
	"errors"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// EngagementDAO handles downloads, comments and likes.
type EngagementDAO struct{}

func NewEngagementDAO() *EngagementDAO { return &EngagementDAO{} }

func (dao *EngagementDAO) CreateDownload(ctx context.Context, db *gorm.DB, d *model.Download) error {
	if d == nil || d.FileID == 0 {
		return errors.New("download with file_id is required")
	}
	return db.WithContext(ctx).Create(d).Error
}

func (dao *EngagementDAO) GetDownload(ctx context.Context, db *gorm.DB, id uint) (*model.Download, error) {
	var d model.Download
	if err := db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (dao *EngagementDAO) DeleteDownload(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Delete(&model.Download{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *EngagementDAO) ListDownloads(ctx context.Context, db *gorm.DB) ([]model.Download, error) {
	var list []model.Download
	if err := db.WithContext(ctx).Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (dao *EngagementDAO) CreateComment(ctx context.Context, db *gorm.DB, c *model.Comment) error {
	if c == nil || c.FileID == 0 {
		return errors.New("comment with file_id is required")
	}
	return db.WithContext(ctx).Create(c).Error
}

// ListComments returns the comments of a file, newest first.
func (dao *EngagementDAO) ListComments(ctx context.Context, db *gorm.DB, fileID uint) ([]model.Comment, error) {
	var list []model.Comment
	if err := db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (dao *EngagementDAO) CreateLike(ctx context.Context, db *gorm.DB, l *model.Like) error {
	if l == nil || l.FileID == 0 || l.Email == "" {
		return errors.New("like with email and file_id is required")
	}
	return db.WithContext(ctx).Create(l).Error
}

func (dao *EngagementDAO) HasLiked(ctx context.Context, db *gorm.DB, email string, fileID uint) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).
		Model(&model.Like{}).
		Where("email = ? AND file_id = ?", email, fileID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of rows of the given engagement model for a file.
func (dao *EngagementDAO) Count(ctx context.Context, db *gorm.DB, table any, fileID uint) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(table).Where("file_id = ?", fileID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByFile removes every download, comment and like of a file.
func (dao *EngagementDAO) DeleteByFile(ctx context.Context, db *gorm.DB, fileID uint) error {
	for _, table := range []any{&model.Download{}, &model.Comment{}, &model.Like{}} {
		if err := db.WithContext(ctx).Where("file_id = ?", fileID).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
