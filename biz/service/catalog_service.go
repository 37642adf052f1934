package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/yi-nology/showcase/biz/dal/model"
)

// ModelDetail is the cached view of a model page.
type ModelDetail struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Year          int    `json:"year"`
	Location      string `json:"location"`
	LikeCount     int    `json:"like_count"`
	DownloadCount int    `json:"download_count"`
	CommentCount  int    `json:"comment_count"`
	HasArchive    bool   `json:"has_archive"`
	GalleryCount  int    `json:"gallery_count"`
}

// ModelRef is a model listed on a year page.
type ModelRef struct {
	ID       uint   `json:"id"`
	FileName string `json:"file_name"`
}

// YearOverview summarizes one year of work.
type YearOverview struct {
	Year          int    `json:"year"`
	BannerPath    string `json:"banner_path"`
	ProjectsCount int64  `json:"projects_count"`
}

// HDRIRef is an entry of the HDRI picker.
type HDRIRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PreviewPath string `json:"preview_path"`
}

// HDRIList is the HDRI picker with the default selection.
type HDRIList struct {
	Items     []HDRIRef `json:"hdri_list"`
	DefaultID *uint     `json:"default_hdri_id"`
}

// Inventory is everything an admin manages, without payloads.
type Inventory struct {
	Files     []model.File         `json:"files"`
	HDRIs     []model.HDRI         `json:"hdri_items"`
	Gallery   []model.GalleryImage `json:"gallery_files"`
	Downloads []model.Download     `json:"downloads"`
}

// ModelDetail returns the model page data through the model cache.
func (s *Service) ModelDetail(ctx context.Context, id uint) (*ModelDetail, error) {
	return s.models.GetOrLoad(ctx, id, func(ctx context.Context) (*ModelDetail, error) {
		return s.loadModelDetail(ctx, id)
	})
}

func (s *Service) loadModelDetail(ctx context.Context, id uint) (*ModelDetail, error) {
	file, err := s.logic.GetFileSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	hasArchive, err := s.logic.fileDAO.HasSlot(ctx, s.logic.db, id, prefixArchive)
	if err != nil {
		return nil, err
	}
	gallery, err := s.logic.engagementDAO.Count(ctx, s.logic.db, &model.GalleryImage{}, id)
	if err != nil {
		return nil, err
	}
	return &ModelDetail{
		ID:            file.ID,
		Name:          file.FileName,
		Year:          file.Year,
		Location:      file.Location,
		LikeCount:     file.LikeCount,
		DownloadCount: file.DownloadCount,
		CommentCount:  file.CommentCount,
		HasArchive:    hasArchive,
		GalleryCount:  int(gallery),
	}, nil
}

// ModelsByYear lists the models of a year.
func (s *Service) ModelsByYear(ctx context.Context, year int) ([]ModelRef, error) {
	files, err := s.logic.fileDAO.ListByYear(ctx, s.logic.db, year)
	if err != nil {
		return nil, err
	}
	out := make([]ModelRef, 0, len(files))
	for _, f := range files {
		out = append(out, ModelRef{ID: f.ID, FileName: f.FileName})
	}
	return out, nil
}

// Works summarizes every year that has models, oldest first.
func (s *Service) Works(ctx context.Context) ([]YearOverview, error) {
	counts, err := s.logic.fileDAO.CountByYear(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	out := make([]YearOverview, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearOverview{
			Year:          year,
			BannerPath:    fmt.Sprintf("images_years/%d.jpg", year),
			ProjectsCount: n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// HDRIs lists environment maps; the first one is the default.
func (s *Service) HDRIs(ctx context.Context) (*HDRIList, error) {
	list, err := s.logic.hdriDAO.ListSummaries(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	out := &HDRIList{Items: make([]HDRIRef, 0, len(list))}
	for _, h := range list {
		out.Items = append(out.Items, HDRIRef{
			ID:          h.ID,
			Name:        h.Name,
			PreviewPath: fmt.Sprintf("/api/hdri/preview/%d", h.ID),
		})
	}
	if len(out.Items) > 0 {
		id := out.Items[0].ID
		out.DefaultID = &id
	}
	return out, nil
}

func (s *Service) Videos(ctx context.Context) ([]model.Video, error) {
	return s.logic.showcaseDAO.ListVideos(ctx, s.logic.db)
}

func (s *Service) Accomplishments(ctx context.Context) ([]model.Accomplishment, error) {
	return s.logic.showcaseDAO.ListAccomplishments(ctx, s.logic.db)
}

func (s *Service) Storyline(ctx context.Context) ([]model.StorylineItem, error) {
	return s.logic.showcaseDAO.ListStoryline(ctx, s.logic.db)
}

// ReplaceStoryline swaps the storyline in one transaction.
func (s *Service) ReplaceStoryline(ctx context.Context, items []model.StorylineItem) error {
	for i, item := range items {
		if item.Title == "" {
			return invalid(fmt.Sprintf("storyline item %d has no title", i))
		}
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return s.logic.showcaseDAO.ReplaceStoryline(ctx, tx, items)
	})
}

// Inventory lists files, HDRIs, gallery images and downloads for admins.
func (s *Service) Inventory(ctx context.Context) (*Inventory, error) {
	files, err := s.logic.fileDAO.ListSummaries(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	hdris, err := s.logic.hdriDAO.ListSummaries(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	gallery, err := s.logic.galleryDAO.ListSummaries(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	downloads, err := s.logic.engagementDAO.ListDownloads(ctx, s.logic.db)
	if err != nil {
		return nil, err
	}
	return &Inventory{Files: files, HDRIs: hdris, Gallery: gallery, Downloads: downloads}, nil
}
