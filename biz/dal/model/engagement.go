package model

import "time"

// Download records an archive download by a visitor.
type Download struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Email    string    `gorm:"column:email;type:varchar(120);not null" json:"email"`
	FileID   uint      `gorm:"column:file_id;not null;index:idx_downloads_file" json:"file_id"`
	Location string    `gorm:"column:location;type:varchar(255)" json:"location"`
	Date     time.Time `gorm:"column:date;autoCreateTime" json:"date"`
}

func (Download) TableName() string { return "downloads" }

// Comment is a visitor comment on a model.
type Comment struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Email   string    `gorm:"column:email;type:varchar(120);not null" json:"email"`
	FileID  uint      `gorm:"column:file_id;not null;index:idx_comments_file" json:"file_id"`
	Comment string    `gorm:"column:comment;type:text;not null" json:"comment"`
	Date    time.Time `gorm:"column:date;autoCreateTime" json:"date"`
}

func (Comment) TableName() string { return "comments" }

// Like is unique per (email, file).
type Like struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Email  string    `gorm:"column:email;type:varchar(120);not null;uniqueIndex:unique_like" json:"email"`
	FileID uint      `gorm:"column:file_id;not null;uniqueIndex:unique_like" json:"file_id"`
	Date   time.Time `gorm:"column:date;autoCreateTime" json:"date"`
}

func (Like) TableName() string { return "likes" }

// Rating is a 1-5 star site review.
type Rating struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Name    string    `gorm:"column:name;type:varchar(120);not null" json:"name"`
	Email   string    `gorm:"column:email;type:varchar(120);not null" json:"-"`
	Message string    `gorm:"column:message;type:text;not null" json:"message"`
	Rating  int       `gorm:"column:rating;not null" json:"rating"`
	Date    time.Time `gorm:"column:date;autoCreateTime;index" json:"date"`
}

func (Rating) TableName() string { return "ratings" }

// Subscriber is a newsletter address.
type Subscriber struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;autoCreateTime" json:"subscribed_at"`
}

func (Subscriber) TableName() string { return "subscribers" }
