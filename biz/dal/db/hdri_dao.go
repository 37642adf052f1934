package db

import (
	"context"
	"errors"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// HDRIDAO handles environment maps.
type HDRIDAO struct{}

func NewHDRIDAO() *HDRIDAO { return &HDRIDAO{} }

func (dao *HDRIDAO) Create(ctx context.Context, db *gorm.DB, hdri *model.HDRI) error {
	if hdri == nil {
		return errors.New("hdri must not be nil")
	}
	if hdri.Name == "" {
		return errors.New("name is required")
	}
	return db.WithContext(ctx).Create(hdri).Error
}

func (dao *HDRIDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.HDRI, error) {
	var hdri model.HDRI
	if err := db.WithContext(ctx).First(&hdri, id).Error; err != nil {
		return nil, err
	}
	return &hdri, nil
}

// ListSummaries lists HDRIs without payloads, oldest first.
func (dao *HDRIDAO) ListSummaries(ctx context.Context, db *gorm.DB) ([]model.HDRI, error) {
	var list []model.HDRI
	if err := db.WithContext(ctx).
		Select("id", "name", "file_mimetype", "file_url", "preview_mimetype", "preview_url", "created_at").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (dao *HDRIDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.HDRI{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *HDRIDAO) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Delete(&model.HDRI{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
