package model

import "gorm.io/gorm"

// All returns every persisted model, in dependency order.
func All() []any {
	return []any{
		&Admin{},
		&TwoFactor{},
		&File{},
		&GalleryImage{},
		&Download{},
		&Comment{},
		&Like{},
		&HDRI{},
		&Rating{},
		&Subscriber{},
		&Video{},
		&Accomplishment{},
		&StorylineItem{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

// Reset drops every table and recreates the schema.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(All()...); err != nil {
		return err
	}
	return Migrate(db)
}
