package db

import (
	"context"
	"errors"
	"time"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// TwoFactorDAO handles one-time login challenges.
type TwoFactorDAO struct{}

func NewTwoFactorDAO() *TwoFactorDAO { return &TwoFactorDAO{} }

func (dao *TwoFactorDAO) Create(ctx context.Context, db *gorm.DB, challenge *model.TwoFactor) error {
	if challenge == nil {
		return errors.New("challenge must not be nil")
	}
	if challenge.UserID == 0 || challenge.VerificationCode == "" {
		return errors.New("user_id and verification_code are required")
	}
	return db.WithContext(ctx).Create(challenge).Error
}

// SupersedeOutstanding retires every unconsumed challenge of the user.
func (dao *TwoFactorDAO) SupersedeOutstanding(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	result := db.WithContext(ctx).
		Model(&model.TwoFactor{}).
		Where("user_id = ? AND is_verified = ? AND superseded = ?", userID, false, false).
		Update("superseded", true)
	return result.RowsAffected, result.Error
}

// FindUsable returns the usable challenge of userID carrying exactly code.
func (dao *TwoFactorDAO) FindUsable(ctx context.Context, db *gorm.DB, userID uint, code string, now time.Time) (*model.TwoFactor, error) {
	var challenge model.TwoFactor
	err := db.WithContext(ctx).
		Where("user_id = ? AND verification_code = ? AND is_verified = ? AND superseded = ? AND expires_at > ?",
			userID, code, false, false, now).
		Order("id DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// MarkVerified consumes the challenge. It fails with gorm.ErrRecordNotFound
// when the challenge was consumed concurrently.
func (dao *TwoFactorDAO) MarkVerified(ctx context.Context, db *gorm.DB, id uint, now time.Time) error {
	result := db.WithContext(ctx).
		Model(&model.TwoFactor{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]any{"is_verified": true, "verified_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LatestUsable returns the newest usable challenge of the user.
func (dao *TwoFactorDAO) LatestUsable(ctx context.Context, db *gorm.DB, userID uint, now time.Time) (*model.TwoFactor, error) {
	var challenge model.TwoFactor
	err := db.WithContext(ctx).
		Where("user_id = ? AND is_verified = ? AND superseded = ? AND expires_at > ?", userID, false, false, now).
		Order("id DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (dao *TwoFactorDAO) ListByUser(ctx context.Context, db *gorm.DB, userID uint) ([]model.TwoFactor, error) {
	var list []model.TwoFactor
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// PurgeStale deletes consumed, superseded and expired challenges.
func (dao *TwoFactorDAO) PurgeStale(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("is_verified = ? OR superseded = ? OR expires_at <= ?", true, true, now).
		Delete(&model.TwoFactor{})
	return result.RowsAffected, result.Error
}
