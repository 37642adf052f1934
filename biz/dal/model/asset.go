package model

import (
	"time"
)

// File is a published 3D model with its banner, GLB and downloadable archive.
type File struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DateAdded     time.Time `gorm:"column:date_added;autoCreateTime" json:"date_added"`
	UpdatedAt     time.Time `json:"-"`
	FileName      string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	Banner        Slot      `gorm:"embedded;embeddedPrefix:banner_" json:"banner"`
	Model         Slot      `gorm:"embedded;embeddedPrefix:glb_" json:"model"`
	Archive       Slot      `gorm:"embedded;embeddedPrefix:zip_" json:"archive"`
	AddedBy       string    `gorm:"column:added_by;type:varchar(80);not null" json:"added_by"`
	Location      string    `gorm:"column:location;type:varchar(255)" json:"location"`
	Year          int       `gorm:"column:year;index:idx_files_year" json:"year"`
	LikeCount     int       `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CommentCount  int       `gorm:"column:comment_count;not null;default:0" json:"comment_count"`
	DownloadCount int       `gorm:"column:download_count;not null;default:0" json:"download_count"`
}

// TableName overrides gorm to use the files table.
func (File) TableName() string {
	return "files"
}

// FileSummaryColumns lists the columns needed for listings without payloads.
var FileSummaryColumns = []string{
	"id", "date_added", "file_name", "added_by", "location", "year",
	"like_count", "comment_count", "download_count",
}

// GalleryImage is one gallery picture attached to a File.
type GalleryImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileID    uint      `gorm:"column:file_id;not null;index:idx_gallery_file" json:"file_id"`
	Image     Slot      `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides gorm to use the gallery_files table.
func (GalleryImage) TableName() string {
	return "gallery_files"
}

// HDRI is an environment map with an optional preview image.
type HDRI struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Map       Slot      `gorm:"embedded;embeddedPrefix:file_" json:"map"`
	Preview   Slot      `gorm:"embedded;embeddedPrefix:preview_" json:"preview"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides gorm to use the hdri table.
func (HDRI) TableName() string {
	return "hdri"
}
