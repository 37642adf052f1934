package model

// Video is an embedded YouTube video.
type Video struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	VideoID string `gorm:"column:video_id;type:varchar(255);not null" json:"video_id"`
}

func (Video) TableName() string { return "videos" }

// Accomplishment is an entry of the resume timeline.
type Accomplishment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Date        string `gorm:"column:date;type:varchar(100)" json:"date"`
	Category    string `gorm:"column:category;type:varchar(100)" json:"category"`
	Link        string `gorm:"column:link;type:varchar(255)" json:"link"`
}

func (Accomplishment) TableName() string { return "accomplishments" }

// StorylineItem is one step of the storyline page.
type StorylineItem struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	MediaURL    string `gorm:"column:media_url;type:varchar(512)" json:"media_url"`
	IsVideo     bool   `gorm:"column:is_video;not null;default:false" json:"is_video"`
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

func (StorylineItem) TableName() string { return "storyline_items" }
