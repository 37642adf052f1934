package db

import (
	"context"
	"errors"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// RatingDAO handles site reviews.
type RatingDAO struct{}

func NewRatingDAO() *RatingDAO { return &RatingDAO{} }

func (dao *RatingDAO) Create(ctx context.Context, db *gorm.DB, r *model.Rating) error {
	if r == nil {
		return errors.New("rating must not be nil")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return db.WithContext(ctx).Create(r).Error
}

// ListRecent returns up to limit ratings, newest first. A non-positive limit
// returns every rating.
func (dao *RatingDAO) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]model.Rating, error) {
	var list []model.Rating
	q := db.WithContext(ctx).Order("date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Summary returns the average rating and the number of ratings.
func (dao *RatingDAO) Summary(ctx context.Context, db *gorm.DB) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	if err := db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Average, row.Total, nil
}
