package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yi-nology/showcase/pkg/config"
)

type sample struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestOpenSQLiteAndCompact(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "portfolio.db")

	db, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: path}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(db)

	if err := db.AutoMigrate(&sample{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := db.Create(&sample{Name: "row"}).Error; err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := db.Where("1 = 1").Delete(&sample{}).Error; err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := Compact(ctx, db); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	dialect, tables, err := Status(ctx, db)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if dialect != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", dialect)
	}
	if len(tables) != 1 || tables[0].Table != "samples" || tables[0].Rows != 0 {
		t.Fatalf("unexpected status: %+v", tables)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for missing mysql dsn")
	}
}
