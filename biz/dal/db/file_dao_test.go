package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yi-nology/showcase/biz/dal/model"
	"gorm.io/gorm"
)

func TestFileDAO_Create(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewFileDAO()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		file := CreateTestFile(t, db, "Robot", 2024)
		if file.ID == 0 {
			t.Fatal("Expected ID to be set after creation")
		}

		found, err := dao.GetByID(ctx, db, file.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if string(found.Model.Data) != "glTF" || found.Model.MimeType != "model/gltf-binary" {
			t.Errorf("Unexpected model slot: %+v", found.Model)
		}
		if found.Archive.Content().Kind != model.ContentAbsent {
			t.Errorf("Expected absent archive, got %s", found.Archive.Content().Kind)
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		if err := dao.Create(ctx, db, nil); err == nil || err.Error() != "file must not be nil" {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		if err := dao.Create(ctx, db, &model.File{Year: 2020}); err == nil {
			t.Error("Expected error for empty file name")
		}
	})
}

func TestFileDAO_SummaryOmitsPayloads(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewFileDAO()
	ctx := context.Background()

	file := CreateTestFile(t, db, "Ship", 2023)

	summary, err := dao.GetSummary(ctx, db, file.ID)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.FileName != "Ship" {
		t.Errorf("Expected name Ship, got %s", summary.FileName)
	}
	if len(summary.Model.Data) != 0 || len(summary.Banner.Data) != 0 {
		t.Error("Expected summary to skip payload columns")
	}

	slot, err := dao.GetSlot(ctx, db, file.ID, "banner_")
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if string(slot.Banner.Data) != "banner" || len(slot.Model.Data) != 0 {
		t.Errorf("Expected only banner loaded, got banner=%q model=%q", slot.Banner.Data, slot.Model.Data)
	}
}

func TestFileDAO_ListByYear(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewFileDAO()
	ctx := context.Background()

	CreateTestFile(t, db, "A", 2022)
	CreateTestFile(t, db, "B", 2022)
	CreateTestFile(t, db, "C", 2024)

	files, err := dao.ListByYear(ctx, db, 2022)
	if err != nil {
		t.Fatalf("ListByYear failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}

	counts, err := dao.CountByYear(ctx, db)
	if err != nil {
		t.Fatalf("CountByYear failed: %v", err)
	}
	if counts[2022] != 2 || counts[2024] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestFileDAO_UpdateAndDelete(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewFileDAO()
	ctx := context.Background()

	file := CreateTestFile(t, db, "Old", 2021)

	if err := dao.Update(ctx, db, file.ID, map[string]any{"file_name": "New", "glb_url": "https://example.com/m.glb"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	found, _ := dao.GetByID(ctx, db, file.ID)
	if found.FileName != "New" {
		t.Errorf("Expected name New, got %s", found.FileName)
	}
	if found.Model.Content().Kind != model.ContentExternal {
		t.Errorf("Expected URL to take precedence, got %s", found.Model.Content().Kind)
	}

	if err := dao.Update(ctx, db, 9999, map[string]any{"file_name": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}

	if err := dao.Delete(ctx, db, file.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if exists, _ := dao.Exists(ctx, db, file.ID); exists {
		t.Error("Expected file to be deleted")
	}
	if err := dao.Delete(ctx, db, file.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestFileDAO_AdjustCounter(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewFileDAO()
	ctx := context.Background()

	file := CreateTestFile(t, db, "Counter", 2024)

	t.Run("Concurrent", func(t *testing.T) {
		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- dao.AdjustCounter(ctx, db, file.ID, CounterLikes, 1)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("AdjustCounter failed: %v", err)
			}
		}
		found, _ := dao.GetSummary(ctx, db, file.ID)
		if found.LikeCount != n {
			t.Errorf("Expected like_count %d, got %d", n, found.LikeCount)
		}
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		if err := dao.AdjustCounter(ctx, db, file.ID, "file_name", 1); err == nil {
			t.Error("Expected error for unknown counter column")
		}
	})

	t.Run("UnknownFile", func(t *testing.T) {
		if err := dao.AdjustCounter(ctx, db, 4242, CounterDownloads, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestFileDAO_HasSlot(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	ctx := context.Background()
	dao := NewFileDAO()

	file := CreateTestFile(t, db, "Slots", 2024)

	ok, err := dao.HasSlot(ctx, db, file.ID, "glb_")
	if err != nil || !ok {
		t.Fatalf("expected glb slot present, got %v, %v", ok, err)
	}
	ok, err = dao.HasSlot(ctx, db, file.ID, "zip_")
	if err != nil || ok {
		t.Fatalf("expected zip slot absent, got %v, %v", ok, err)
	}

	if err := dao.Update(ctx, db, file.ID, map[string]any{"zip_url": "https://example.com/a.zip"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	ok, err = dao.HasSlot(ctx, db, file.ID, "zip_")
	if err != nil || !ok {
		t.Fatalf("expected zip url to count, got %v, %v", ok, err)
	}
}
