package db

import (
	"context"
	"errors"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// GalleryDAO handles gallery images.
type GalleryDAO struct{}

func NewGalleryDAO() *GalleryDAO { return &GalleryDAO{} }

func (dao *GalleryDAO) Create(ctx context.Context, db *gorm.DB, image *model.GalleryImage) error {
	if image == nil {
		return errors.New("gallery image must not be nil")
	}
	if image.FileID == 0 {
		return errors.New("file_id is required")
	}
	return db.WithContext(ctx).Create(image).Error
}

func (dao *GalleryDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.GalleryImage, error) {
	var image model.GalleryImage
	if err := db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (dao *GalleryDAO) ListByFile(ctx context.Context, db *gorm.DB, fileID uint) ([]model.GalleryImage, error) {
	var images []model.GalleryImage
	if err := db.WithContext(ctx).Where("file_id = ?", fileID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// ListSummaries lists gallery images without payloads.
func (dao *GalleryDAO) ListSummaries(ctx context.Context, db *gorm.DB) ([]model.GalleryImage, error) {
	var images []model.GalleryImage
	if err := db.WithContext(ctx).
		Select("id", "file_id", "image_mimetype", "created_at").
		Order("file_id ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (dao *GalleryDAO) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Delete(&model.GalleryImage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *GalleryDAO) DeleteByFile(ctx context.Context, db *gorm.DB, fileID uint) (int64, error) {
	result := db.WithContext(ctx).Where("file_id = ?", fileID).Delete(&model.GalleryImage{})
	return result.RowsAffected, result.Error
}

// UpdateData replaces the encoded payload of an image.
func (dao *GalleryDAO) UpdateData(ctx context.Context, db *gorm.DB, id uint, data []byte) error {
	result := db.WithContext(ctx).Model(&model.GalleryImage{}).Where("id = ?", id).Update("image_data", data)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
