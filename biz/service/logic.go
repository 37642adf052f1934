package service

import (
	"context"
	"errors"

	"github.com/yi-nology/showcase/biz/dal/db"
	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrHDRINotFound     = errors.New("hdri not found")
	ErrGalleryNotFound  = errors.New("gallery image not found")
	ErrDownloadNotFound = errors.New("download not found")
	ErrAdminNotFound    = errors.New("admin not found")
)

// Logic contains business rules on top of data persistence.
type Logic struct {
	db            *gorm.DB
	fileDAO       *db.FileDAO
	galleryDAO    *db.GalleryDAO
	hdriDAO       *db.HDRIDAO
	engagementDAO *db.EngagementDAO
	ratingDAO     *db.RatingDAO
	subscriberDAO *db.SubscriberDAO
	showcaseDAO   *db.ShowcaseDAO
	adminDAO      *db.AdminDAO
	twoFactorDAO  *db.TwoFactorDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:            dbConn,
		fileDAO:       db.NewFileDAO(),
		galleryDAO:    db.NewGalleryDAO(),
		hdriDAO:       db.NewHDRIDAO(),
		engagementDAO: db.NewEngagementDAO(),
		ratingDAO:     db.NewRatingDAO(),
		subscriberDAO: db.NewSubscriberDAO(),
		showcaseDAO:   db.NewShowcaseDAO(),
		adminDAO:      db.NewAdminDAO(),
		twoFactorDAO:  db.NewTwoFactorDAO(),
	}
}

// DB exposes the connection for callers that open their own transactions.
func (l *Logic) DB() *gorm.DB { return l.db }

// mapNotFound converts gorm.ErrRecordNotFound into the given sentinel.
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// --------------------- File Operations ---------------------

func (l *Logic) GetFile(ctx context.Context, tx *gorm.DB, id uint) (*model.File, error) {
	file, err := l.fileDAO.GetByID(ctx, tx, id)
	return file, mapNotFound(err, ErrFileNotFound)
}

func (l *Logic) GetFileSummary(ctx context.Context, id uint) (*model.File, error) {
	file, err := l.fileDAO.GetSummary(ctx, l.db, id)
	return file, mapNotFound(err, ErrFileNotFound)
}

func (l *Logic) GetFileSlot(ctx context.Context, id uint, prefix string) (*model.File, error) {
	file, err := l.fileDAO.GetSlot(ctx, l.db, id, prefix)
	return file, mapNotFound(err, ErrFileNotFound)
}

func (l *Logic) UpdateFile(ctx context.Context, tx *gorm.DB, id uint, updates map[string]any) error {
	return mapNotFound(l.fileDAO.Update(ctx, tx, id, updates), ErrFileNotFound)
}

func (l *Logic) RequireFile(ctx context.Context, tx *gorm.DB, id uint) error {
	ok, err := l.fileDAO.Exists(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileNotFound
	}
	return nil
}

func (l *Logic) IncrementCounter(ctx context.Context, tx *gorm.DB, id uint, column string, delta int) error {
	return mapNotFound(l.fileDAO.AdjustCounter(ctx, tx, id, column, delta), ErrFileNotFound)
}

// --------------------- HDRI Operations ---------------------

func (l *Logic) GetHDRI(ctx context.Context, tx *gorm.DB, id uint) (*model.HDRI, error) {
	hdri, err := l.hdriDAO.GetByID(ctx, tx, id)
	return hdri, mapNotFound(err, ErrHDRINotFound)
}

func (l *Logic) UpdateHDRI(ctx context.Context, tx *gorm.DB, id uint, updates map[string]any) error {
	return mapNotFound(l.hdriDAO.Update(ctx, tx, id, updates), ErrHDRINotFound)
}

// --------------------- Gallery Operations ---------------------

func (l *Logic) GetGalleryImage(ctx context.Context, tx *gorm.DB, id uint) (*model.GalleryImage, error) {
	image, err := l.galleryDAO.GetByID(ctx, tx, id)
	return image, mapNotFound(err, ErrGalleryNotFound)
}

// --------------------- Admin Operations ---------------------

func (l *Logic) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	admin, err := l.adminDAO.GetByUsername(ctx, l.db, username)
	return admin, mapNotFound(err, ErrAdminNotFound)
}

func (l *Logic) GetAdmin(ctx context.Context, id uint) (*model.Admin, error) {
	admin, err := l.adminDAO.GetByID(ctx, l.db, id)
	return admin, mapNotFound(err, ErrAdminNotFound)
}
