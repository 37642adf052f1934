package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/yi-nology/showcase/biz/dal/model"

	"gorm.io/gorm"
)

// Counter columns denormalized on files.
const (
	CounterLikes     = "like_count"
	CounterComments  = "comment_count"
	CounterDownloads = "download_count"
)

// FileDAO handles published models.
type FileDAO struct{}

func NewFileDAO() *FileDAO { return &FileDAO{} }

func (dao *FileDAO) Create(ctx context.Context, db *gorm.DB, file *model.File) error {
	if file == nil {
		return errors.New("file must not be nil")
	}
	if file.FileName == "" {
		return errors.New("file_name is required")
	}
	return db.WithContext(ctx).Create(file).Error
}

// GetByID loads a file including every payload.
func (dao *FileDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.File, error) {
	var file model.File
	if err := db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetSummary loads a file without payload columns.
func (dao *FileDAO) GetSummary(ctx context.Context, db *gorm.DB, id uint) (*model.File, error) {
	var file model.File
	if err := db.WithContext(ctx).Select(model.FileSummaryColumns).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetSlot loads a single slot (prefix "banner_", "glb_" or "zip_") of a file.
func (dao *FileDAO) GetSlot(ctx context.Context, db *gorm.DB, id uint, prefix string) (*model.File, error) {
	columns := append([]string{"id", "file_name"}, model.Columns(prefix)...)
	var file model.File
	if err := db.WithContext(ctx).Select(columns).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (dao *FileDAO) ListSummaries(ctx context.Context, db *gorm.DB) ([]model.File, error) {
	var files []model.File
	if err := db.WithContext(ctx).Select(model.FileSummaryColumns).Order("id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (dao *FileDAO) ListByYear(ctx context.Context, db *gorm.DB, year int) ([]model.File, error) {
	var files []model.File
	if err := db.WithContext(ctx).
		Select(model.FileSummaryColumns).
		Where("year = ?", year).
		Order("id ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// CountByYear returns the number of files per year.
func (dao *FileDAO) CountByYear(ctx context.Context, db *gorm.DB) (map[int]int64, error) {
	var rows []struct {
		Year  int
		Total int64
	}
	if err := db.WithContext(ctx).
		Model(&model.File{}).
		Select("year, COUNT(*) AS total").
		Group("year").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, r := range rows {
		out[r.Year] = r.Total
	}
	return out, nil
}

// Update writes the given columns of a file.
func (dao *FileDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *FileDAO) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Delete(&model.File{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *FileDAO) Exists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdjustCounter adds delta to a denormalized counter in a single statement.
func (dao *FileDAO) AdjustCounter(ctx context.Context, db *gorm.DB, id uint, column string, delta int) error {
	switch column {
	case CounterLikes, CounterComments, CounterDownloads:
	default:
		return fmt.Errorf("unknown counter column %q", column)
	}
	result := db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasSlot reports whether the slot with prefix carries data or a URL, without
// loading the payload.
func (dao *FileDAO) HasSlot(ctx context.Context, db *gorm.DB, id uint, prefix string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		Where(fmt.Sprintf("(%[1]sdata IS NOT NULL AND length(%[1]sdata) > 0) OR (%[1]surl IS NOT NULL AND %[1]surl <> '')", prefix)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
