package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yi-nology/showcase/biz/dal/db"
	"github.com/yi-nology/showcase/pkg/validator"
)

func TestLikeOncePerEmail(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := db.CreateTestFile(t, env.db, "Likeable", 2024)

	if err := env.svc.Like(ctx, "fan@example.com", file.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := env.svc.Like(ctx, "fan@example.com", file.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	detail, err := env.svc.ModelDetail(ctx, file.ID)
	if err != nil {
		t.Fatalf("ModelDetail: %v", err)
	}
	if detail.LikeCount != 1 {
		t.Fatalf("expected like_count 1, got %d", detail.LikeCount)
	}
}

func TestConcurrentLikesKeepCount(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := db.CreateTestFile(t, env.db, "Popular", 2024)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- env.svc.Like(ctx, fmt.Sprintf("fan%d@example.com", i), file.ID)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Like: %v", err)
		}
	}

	got, err := db.NewFileDAO().GetSummary(ctx, env.db, file.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got.LikeCount != n {
		t.Fatalf("expected like_count %d, got %d", n, got.LikeCount)
	}
}

func TestEngagementValidation(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := db.CreateTestFile(t, env.db, "Target", 2024)

	t.Run("missing fields", func(t *testing.T) {
		if err := env.svc.AddComment(ctx, "fan@example.com", file.ID, " "); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if err := env.svc.Like(ctx, "", file.ID); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		if err := env.svc.AddComment(ctx, "not-an-email", file.ID, "hi"); !errors.Is(err, validator.ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		if err := env.svc.AddComment(ctx, "fan@example.com", file.ID+7, "hi"); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound, got %v", err)
		}
		if err := env.svc.Like(ctx, "fan@example.com", file.ID+7); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound, got %v", err)
		}
	})

	view, err := env.svc.Comments(ctx, file.ID)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(view.Comments) != 0 {
		t.Fatalf("expected nothing inserted, got %d comments", len(view.Comments))
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := db.CreateTestFile(t, env.db, "Chatty", 2024)

	for _, text := range []string{"first", "second"} {
		if err := env.svc.AddComment(ctx, "fan@example.com", file.ID, text); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}
	view, err := env.svc.Comments(ctx, file.ID)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if view.FileName != "Chatty" || len(view.Comments) != 2 || view.Comments[0].Comment != "second" {
		t.Fatalf("unexpected comments %+v", view)
	}
	summary, _ := db.NewFileDAO().GetSummary(ctx, env.db, file.ID)
	if summary.CommentCount != 2 {
		t.Fatalf("expected comment_count 2, got %d", summary.CommentCount)
	}
}

func TestDownloadRecordsAndDeletes(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	file := uploadTestModel(t, env, 0)

	archive, err := env.svc.Download(ctx, "fan@example.com", file.ID, "198.51.100.7")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if archive.FileName != "Robot.zip" || archive.MimeType != "application/zip" {
		t.Fatalf("unexpected archive %s %s", archive.FileName, archive.MimeType)
	}
	if string(archive.Data) != "PK\x03\x04 archive" {
		t.Fatalf("unexpected archive payload %q", archive.Data)
	}

	downloads, err := db.NewEngagementDAO().ListDownloads(ctx, env.db)
	if err != nil || len(downloads) != 1 {
		t.Fatalf("ListDownloads = %d, %v", len(downloads), err)
	}
	if downloads[0].Location != "Test City" {
		t.Fatalf("expected location recorded, got %q", downloads[0].Location)
	}

	if err := env.svc.DeleteDownload(ctx, downloads[0].ID); err != nil {
		t.Fatalf("DeleteDownload: %v", err)
	}
	summary, _ := db.NewFileDAO().GetSummary(ctx, env.db, file.ID)
	if summary.DownloadCount != 0 {
		t.Fatalf("expected download_count 0, got %d", summary.DownloadCount)
	}
	if err := env.svc.DeleteDownload(ctx, downloads[0].ID); !errors.Is(err, ErrDownloadNotFound) {
		t.Fatalf("expected ErrDownloadNotFound, got %v", err)
	}
}
