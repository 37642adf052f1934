package db

import (
	"context"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// ShowcaseDAO handles videos, accomplishments and storyline items.
type ShowcaseDAO struct{}

func NewShowcaseDAO() *ShowcaseDAO { return &ShowcaseDAO{} }

func (dao *ShowcaseDAO) ListVideos(ctx context.Context, db *gorm.DB) ([]model.Video, error) {
	var list []model.Video
	if err := db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (dao *ShowcaseDAO) ListAccomplishments(ctx context.Context, db *gorm.DB) ([]model.Accomplishment, error) {
	var list []model.Accomplishment
	if err := db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListStoryline returns storyline items in display order.
func (dao *ShowcaseDAO) ListStoryline(ctx context.Context, db *gorm.DB) ([]model.StorylineItem, error) {
	var list []model.StorylineItem
	if err := db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ReplaceStoryline swaps the whole storyline for items. Call it inside a transaction.
func (dao *ShowcaseDAO) ReplaceStoryline(ctx context.Context, db *gorm.DB, items []model.StorylineItem) error {
	if err := db.WithContext(ctx).Where("1 = 1").Delete(&model.StorylineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
	}
	return db.WithContext(ctx).Create(&items).Error
}
