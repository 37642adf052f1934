package db

import (
	"context"
	"errors"
	"testing"

	"github.com/yi-nology/showcase/biz/dal/model"
	"gorm.io/gorm"
)

func TestEngagementDAO_Likes(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewEngagementDAO()
	ctx := context.Background()

	file := CreateTestFile(t, db, "Liked", 2024)

	if err := dao.CreateLike(ctx, db, &model.Like{Email: "a@example.com", FileID: file.ID}); err != nil {
		t.Fatalf("CreateLike failed: %v", err)
	}
	if err := dao.CreateLike(ctx, db, &model.Like{Email: "a@example.com", FileID: file.ID}); err == nil {
		t.Fatal("Expected unique constraint violation for duplicate like")
	}

	liked, err := dao.HasLiked(ctx, db, "a@example.com", file.ID)
	if err != nil || !liked {
		t.Errorf("HasLiked = %v, %v", liked, err)
	}
	n, err := dao.Count(ctx, db, &model.Like{}, file.ID)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestEngagementDAO_CommentsAndDownloads(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewEngagementDAO()
	ctx := context.Background()

	file := CreateTestFile(t, db, "Commented", 2024)

	for _, text := range []string{"first", "second"} {
		if err := dao.CreateComment(ctx, db, &model.Comment{Email: "c@example.com", FileID: file.ID, Comment: text}); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}
	comments, err := dao.ListComments(ctx, db, file.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].Comment != "second" {
		t.Errorf("Expected newest comment first, got %+v", comments)
	}

	download := &model.Download{Email: "d@example.com", FileID: file.ID, Location: "Berlin, Germany"}
	if err := dao.CreateDownload(ctx, db, download); err != nil {
		t.Fatalf("CreateDownload failed: %v", err)
	}
	if err := dao.CreateLike(ctx, db, &model.Like{Email: "d@example.com", FileID: file.ID}); err != nil {
		t.Fatalf("CreateLike failed: %v", err)
	}

	if err := dao.DeleteByFile(ctx, db, file.ID); err != nil {
		t.Fatalf("DeleteByFile failed: %v", err)
	}
	for _, table := range []any{&model.Comment{}, &model.Download{}, &model.Like{}} {
		if n, _ := dao.Count(ctx, db, table, file.ID); n != 0 {
			t.Errorf("Expected no rows left in %T, got %d", table, n)
		}
	}
	if err := dao.DeleteDownload(ctx, db, download.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestRatingDAO_Summary(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewRatingDAO()
	ctx := context.Background()

	avg, count, err := dao.Summary(ctx, db)
	if err != nil || avg != 0 || count != 0 {
		t.Fatalf("Summary on empty table = %v, %v, %v", avg, count, err)
	}

	for _, r := range []int{5, 4, 4} {
		if err := dao.Create(ctx, db, &model.Rating{Name: "n", Email: "r@example.com", Message: "m", Rating: r}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := dao.Create(ctx, db, &model.Rating{Name: "n", Email: "r@example.com", Message: "m", Rating: 6}); err == nil {
		t.Error("Expected error for out of range rating")
	}

	avg, count, err = dao.Summary(ctx, db)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if count != 3 || avg < 4.33 || avg > 4.34 {
		t.Errorf("Unexpected summary avg=%v count=%d", avg, count)
	}

	recent, err := dao.ListRecent(ctx, db, 2)
	if err != nil || len(recent) != 2 {
		t.Errorf("ListRecent = %d rows, %v", len(recent), err)
	}
}

func TestSubscriberDAO_Create(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewSubscriberDAO()
	ctx := context.Background()

	created, err := dao.Create(ctx, db, "News@Example.com ")
	if err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}
	created, err = dao.Create(ctx, db, "news@example.com")
	if err != nil || created {
		t.Errorf("Expected duplicate to be reported, got %v, %v", created, err)
	}
	n, err := dao.Delete(ctx, db, "news@example.com")
	if err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
}

func TestShowcaseDAO_ReplaceStoryline(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewShowcaseDAO()
	ctx := context.Background()

	items := []model.StorylineItem{
		{Title: "Second", Order: 2},
		{Title: "First", Order: 1},
	}
	if err := dao.ReplaceStoryline(ctx, db, items); err != nil {
		t.Fatalf("ReplaceStoryline failed: %v", err)
	}
	if err := dao.ReplaceStoryline(ctx, db, items); err != nil {
		t.Fatalf("ReplaceStoryline (again) failed: %v", err)
	}
	list, err := dao.ListStoryline(ctx, db)
	if err != nil {
		t.Fatalf("ListStoryline failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "First" {
		t.Errorf("Unexpected storyline: %+v", list)
	}
}
