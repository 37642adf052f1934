package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// AdminDAO handles admin accounts.
type AdminDAO struct{}

func NewAdminDAO() *AdminDAO { return &AdminDAO{} }

func (dao *AdminDAO) Create(ctx context.Context, db *gorm.DB, admin *model.Admin) error {
	if admin == nil {
		return errors.New("admin must not be nil")
	}
	admin.Username = strings.TrimSpace(admin.Username)
	if admin.Username == "" || admin.PasswordHash == "" {
		return errors.New("username and password hash are required")
	}
	return db.WithContext(ctx).Create(admin).Error
}

func (dao *AdminDAO) GetByUsername(ctx context.Context, db *gorm.DB, username string) (*model.Admin, error) {
	var admin model.Admin
	if err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (dao *AdminDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Admin, error) {
	var admin model.Admin
	if err := db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (dao *AdminDAO) UpdatePassword(ctx context.Context, db *gorm.DB, id uint, hash string) error {
	result := db.WithContext(ctx).Model(&model.Admin{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *AdminDAO) TouchLastLogin(ctx context.Context, db *gorm.DB, id uint, at time.Time) error {
	return db.WithContext(ctx).Model(&model.Admin{}).Where("id = ?", id).Update("last_login", at).Error
}

func (dao *AdminDAO) List(ctx context.Context, db *gorm.DB) ([]model.Admin, error) {
	var admins []model.Admin
	if err := db.WithContext(ctx).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
