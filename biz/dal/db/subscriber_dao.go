package db

import (
	"context"
	"strings"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// SubscriberDAO handles newsletter subscribers.
type SubscriberDAO struct{}

func NewSubscriberDAO() *SubscriberDAO { return &SubscriberDAO{} }

// Create inserts the address. It reports false when it was already present.
func (dao *SubscriberDAO) Create(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var existing int64
	if err := db.WithContext(ctx).Model(&model.Subscriber{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	if err := db.WithContext(ctx).Create(&model.Subscriber{Email: email}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (dao *SubscriberDAO) List(ctx context.Context, db *gorm.DB) ([]model.Subscriber, error) {
	var list []model.Subscriber
	if err := db.WithContext(ctx).Order("subscribed_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes the address and returns the number of rows removed.
func (dao *SubscriberDAO) Delete(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	result := db.WithContext(ctx).Where("email = ?", email).Delete(&model.Subscriber{})
	return result.RowsAffected, result.Error
}
