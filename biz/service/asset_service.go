package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/assetstore"
	"github.com/yi-nology/showcase/pkg/constants"
	"github.com/yi-nology/showcase/pkg/validator"
)

// Slot column prefixes of the files and hdri tables.
const (
	prefixBanner  = "banner_"
	prefixModel   = "glb_"
	prefixArchive = "zip_"
	prefixMap     = "file_"
	prefixPreview = "preview_"
)

// galleryWorkers bounds concurrent gallery image encoding.
const galleryWorkers = 4

// Upload is one uploaded file part.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// ModelUploadInput is the admin form for a new model.
type ModelUploadInput struct {
	Name       string
	Year       string
	GLB        *Upload
	GLBURL     string
	Banner     *Upload
	BannerURL  string
	Archive    *Upload
	ArchiveURL string
	Gallery    []Upload
}

// ModelUpdateInput changes the given fields of a model. Empty fields are kept.
type ModelUpdateInput struct {
	ID         uint
	Name       string
	Year       string
	GLB        *Upload
	GLBURL     string
	Banner     *Upload
	BannerURL  string
	Archive    *Upload
	ArchiveURL string
}

// HDRIUploadInput is the admin form for an environment map.
type HDRIUploadInput struct {
	Name       string
	Map        *Upload
	MapURL     string
	Preview    *Upload
	PreviewURL string
}

// HDRIUpdateInput renames an HDRI or replaces its payloads.
type HDRIUpdateInput struct {
	ID         uint
	Name       string
	Map        *Upload
	MapURL     string
	Preview    *Upload
	PreviewURL string
}

// GalleryDataURI is a gallery image inlined as a data URI.
type GalleryDataURI struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// --------------------- Upload ---------------------

// UploadModel validates and stores a model with its gallery in one transaction.
func (s *Service) UploadModel(ctx context.Context, in ModelUploadInput, addedBy, clientIP string) (*model.File, error) {
	name := strings.TrimSpace(in.Name)
	glbURL := strings.TrimSpace(in.GLBURL)
	if name == "" || strings.TrimSpace(in.Year) == "" || (glbURL == "" && in.GLB == nil) {
		return nil, invalid("Required fields are missing or invalid")
	}
	if glbURL == "" && !validator.AllowedFile(in.GLB.Name, validator.ModelExtensions) {
		return nil, invalid("Required fields are missing or invalid")
	}
	year, err := parseYear(in.Year)
	if err != nil {
		return nil, err
	}
	if err := checkOptional(in.Banner, validator.ImageExtensions, "banner"); err != nil {
		return nil, err
	}
	if err := checkOptional(in.Archive, validator.ArchiveExtensions, "zip_file"); err != nil {
		return nil, err
	}
	for i := range in.Gallery {
		if err := checkOptional(&in.Gallery[i], validator.ImageExtensions, "gallery"); err != nil {
			return nil, err
		}
	}

	file := &model.File{
		FileName: name,
		AddedBy:  addedBy,
		Location: s.locate(ctx, clientIP),
		Year:     year,
	}
	if file.Model, err = s.encodeUpload(ctx, in.GLB, glbURL, validator.MimeGLB); err != nil {
		return nil, err
	}
	if file.Banner, err = s.encodeImage(ctx, in.Banner, in.BannerURL); err != nil {
		s.release(ctx, file.Model)
		return nil, err
	}
	if file.Archive, err = s.encodeUpload(ctx, in.Archive, in.ArchiveURL, validator.MimeZip); err != nil {
		s.release(ctx, file.Model, file.Banner)
		return nil, err
	}
	gallery, err := s.encodeGallery(ctx, in.Gallery)
	if err != nil {
		s.release(ctx, file.Model, file.Banner, file.Archive)
		return nil, err
	}

	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.logic.fileDAO.Create(ctx, tx, file); err != nil {
			return err
		}
		for i := range gallery {
			gallery[i].FileID = file.ID
			if err := s.logic.galleryDAO.Create(ctx, tx, &gallery[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slots := []model.Slot{file.Model, file.Banner, file.Archive}
		for _, g := range gallery {
			slots = append(slots, g.Image)
		}
		s.release(ctx, slots...)
		return nil, fmt.Errorf("save model: %w", err)
	}
	hlog.CtxInfof(ctx, "model %d %q uploaded by %s with %d gallery images", file.ID, file.FileName, addedBy, len(gallery))
	return file, nil
}

// UploadHDRI stores an environment map and its optional preview.
func (s *Service) UploadHDRI(ctx context.Context, in HDRIUploadInput) (*model.HDRI, error) {
	name := strings.TrimSpace(in.Name)
	mapURL := strings.TrimSpace(in.MapURL)
	if name == "" || (in.Map == nil && mapURL == "") {
		return nil, invalid("Required fields are missing or invalid")
	}
	if err := checkOptional(in.Map, validator.HDRIExtensions, "hdri_file"); err != nil {
		return nil, err
	}
	if err := checkOptional(in.Preview, validator.ImageExtensions, "preview"); err != nil {
		return nil, err
	}

	hdri := &model.HDRI{Name: name}
	var err error
	if hdri.Map, err = s.encodeUpload(ctx, in.Map, mapURL, hdriMime(in.Map, mapURL)); err != nil {
		return nil, err
	}
	if hdri.Preview, err = s.encodeImage(ctx, in.Preview, in.PreviewURL); err != nil {
		s.release(ctx, hdri.Map)
		return nil, err
	}
	if err := s.logic.hdriDAO.Create(ctx, s.logic.db, hdri); err != nil {
		s.release(ctx, hdri.Map, hdri.Preview)
		return nil, fmt.Errorf("save hdri: %w", err)
	}
	return hdri, nil
}

// AddGalleryImages appends images to an existing model.
func (s *Service) AddGalleryImages(ctx context.Context, fileID uint, images []Upload) (int, error) {
	if len(images) == 0 {
		return 0, invalid("No gallery image uploaded")
	}
	for i := range images {
		if err := checkOptional(&images[i], validator.ImageExtensions, "gallery_image"); err != nil {
			return 0, err
		}
	}
	if err := s.logic.RequireFile(ctx, s.logic.db, fileID); err != nil {
		return 0, err
	}
	gallery, err := s.encodeGallery(ctx, images)
	if err != nil {
		return 0, err
	}
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.logic.RequireFile(ctx, tx, fileID); err != nil {
			return err
		}
		for i := range gallery {
			gallery[i].FileID = fileID
			if err := s.logic.galleryDAO.Create(ctx, tx, &gallery[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, g := range gallery {
			s.release(ctx, g.Image)
		}
		return 0, err
	}
	s.models.Invalidate(fileID)
	return len(gallery), nil
}

// --------------------- Update ---------------------

// UpdateModel applies the non-empty fields of in. Replaced payloads are
// released after commit.
func (s *Service) UpdateModel(ctx context.Context, in ModelUpdateInput) error {
	if in.ID == 0 {
		return invalid("File ID is required")
	}
	if err := checkOptional(in.GLB, validator.ModelExtensions, "glb_file"); err != nil {
		return err
	}
	if err := checkOptional(in.Banner, validator.ImageExtensions, "banner"); err != nil {
		return err
	}
	if err := checkOptional(in.Archive, validator.ArchiveExtensions, "zip_file"); err != nil {
		return err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["file_name"] = name
	}
	if strings.TrimSpace(in.Year) != "" {
		year, err := parseYear(in.Year)
		if err != nil {
			return err
		}
		updates["year"] = year
	}

	var fresh []model.Slot
	replaced := map[string]bool{}
	encode := func(prefix string, up *Upload, rawURL string, fn func() (model.Slot, error)) error {
		if up == nil && strings.TrimSpace(rawURL) == "" {
			return nil
		}
		slot, err := fn()
		if err != nil {
			return err
		}
		fresh = append(fresh, slot)
		replaced[prefix] = true
		for k, v := range slotColumns(prefix, slot) {
			updates[k] = v
		}
		return nil
	}
	err := errors.Join(
		encode(prefixModel, in.GLB, in.GLBURL, func() (model.Slot, error) {
			return s.encodeUpload(ctx, in.GLB, in.GLBURL, validator.MimeGLB)
		}),
		encode(prefixBanner, in.Banner, in.BannerURL, func() (model.Slot, error) {
			return s.encodeImage(ctx, in.Banner, in.BannerURL)
		}),
		encode(prefixArchive, in.Archive, in.ArchiveURL, func() (model.Slot, error) {
			return s.encodeUpload(ctx, in.Archive, in.ArchiveURL, validator.MimeZip)
		}),
	)
	if err != nil {
		s.release(ctx, fresh...)
		return err
	}

	var old *model.File
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if old, err = s.logic.GetFile(ctx, tx, in.ID); err != nil {
			return err
		}
		return s.logic.UpdateFile(ctx, tx, in.ID, updates)
	})
	if err != nil {
		s.release(ctx, fresh...)
		return err
	}
	var stale []model.Slot
	if replaced[prefixModel] {
		stale = append(stale, old.Model)
	}
	if replaced[prefixBanner] {
		stale = append(stale, old.Banner)
	}
	if replaced[prefixArchive] {
		stale = append(stale, old.Archive)
	}
	s.release(ctx, stale...)
	s.models.Invalidate(in.ID)
	return nil
}

// UpdateHDRI renames an HDRI or replaces its map or preview.
func (s *Service) UpdateHDRI(ctx context.Context, in HDRIUpdateInput) error {
	if err := checkOptional(in.Map, validator.HDRIExtensions, "hdri_file"); err != nil {
		return err
	}
	if err := checkOptional(in.Preview, validator.ImageExtensions, "preview"); err != nil {
		return err
	}
	updates := map[string]any{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	var fresh []model.Slot
	mapChanged := in.Map != nil || strings.TrimSpace(in.MapURL) != ""
	if mapChanged {
		slot, err := s.encodeUpload(ctx, in.Map, in.MapURL, hdriMime(in.Map, in.MapURL))
		if err != nil {
			return err
		}
		fresh = append(fresh, slot)
		for k, v := range slotColumns(prefixMap, slot) {
			updates[k] = v
		}
	}
	previewChanged := in.Preview != nil || strings.TrimSpace(in.PreviewURL) != ""
	if previewChanged {
		slot, err := s.encodeImage(ctx, in.Preview, in.PreviewURL)
		if err != nil {
			s.release(ctx, fresh...)
			return err
		}
		fresh = append(fresh, slot)
		for k, v := range slotColumns(prefixPreview, slot) {
			updates[k] = v
		}
	}

	var old *model.HDRI
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if old, err = s.logic.GetHDRI(ctx, tx, in.ID); err != nil {
			return err
		}
		return s.logic.UpdateHDRI(ctx, tx, in.ID, updates)
	})
	if err != nil {
		s.release(ctx, fresh...)
		return err
	}
	if mapChanged {
		s.release(ctx, old.Map)
	}
	if previewChanged {
		s.release(ctx, old.Preview)
	}
	return nil
}

// --------------------- Delete ---------------------

// DeleteModel removes a model with its gallery, downloads, comments and likes.
// Compaction runs afterwards in the background.
func (s *Service) DeleteModel(ctx context.Context, id uint) error {
	var (
		file    *model.File
		gallery []model.GalleryImage
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if file, err = s.logic.GetFile(ctx, tx, id); err != nil {
			return err
		}
		if gallery, err = s.logic.galleryDAO.ListByFile(ctx, tx, id); err != nil {
			return err
		}
		if _, err := s.logic.galleryDAO.DeleteByFile(ctx, tx, id); err != nil {
			return err
		}
		if err := s.logic.engagementDAO.DeleteByFile(ctx, tx, id); err != nil {
			return err
		}
		return mapNotFound(s.logic.fileDAO.Delete(ctx, tx, id), ErrFileNotFound)
	})
	if err != nil {
		return err
	}
	slots := []model.Slot{file.Model, file.Banner, file.Archive}
	for _, g := range gallery {
		slots = append(slots, g.Image)
	}
	s.release(ctx, slots...)
	s.models.Invalidate(id)
	hlog.CtxInfof(ctx, "model %d deleted with %d gallery images", id, len(gallery))
	s.CompactAsync(ctx)
	return nil
}

func (s *Service) DeleteHDRI(ctx context.Context, id uint) error {
	var hdri *model.HDRI
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if hdri, err = s.logic.GetHDRI(ctx, tx, id); err != nil {
			return err
		}
		return mapNotFound(s.logic.hdriDAO.Delete(ctx, tx, id), ErrHDRINotFound)
	})
	if err != nil {
		return err
	}
	s.release(ctx, hdri.Map, hdri.Preview)
	s.CompactAsync(ctx)
	return nil
}

func (s *Service) DeleteGalleryImage(ctx context.Context, id uint) error {
	var image *model.GalleryImage
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if image, err = s.logic.GetGalleryImage(ctx, tx, id); err != nil {
			return err
		}
		return mapNotFound(s.logic.galleryDAO.Delete(ctx, tx, id), ErrGalleryNotFound)
	})
	if err != nil {
		return err
	}
	s.models.Invalidate(image.FileID)
	s.release(ctx, image.Image)
	s.CompactAsync(ctx)
	return nil
}

// --------------------- Serve ---------------------

// ModelPayload returns the GLB of a model, proxying external URLs.
func (s *Service) ModelPayload(ctx context.Context, id uint) (*assetstore.Resolved, error) {
	file, err := s.logic.GetFileSlot(ctx, id, prefixModel)
	if err != nil {
		return nil, err
	}
	res, err := s.store.Resolve(ctx, file.Model, assetstore.Policy{External: assetstore.Proxy, FallbackMime: validator.MimeGLB})
	if err != nil {
		return nil, err
	}
	res.MimeType = validator.MimeGLB
	return res, nil
}

// Banner returns the banner image of a model; external banners redirect.
func (s *Service) Banner(ctx context.Context, id uint) (*assetstore.Resolved, error) {
	file, err := s.logic.GetFileSlot(ctx, id, prefixBanner)
	if err != nil {
		return nil, err
	}
	return s.store.Resolve(ctx, file.Banner, assetstore.Policy{External: assetstore.Redirect, FallbackMime: validator.MimeJPEG})
}

// HDRIMap returns the environment map, proxying external URLs.
func (s *Service) HDRIMap(ctx context.Context, id uint) (*assetstore.Resolved, error) {
	hdri, err := s.logic.GetHDRI(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	return s.store.Resolve(ctx, hdri.Map, assetstore.Policy{External: assetstore.Proxy, FallbackMime: validator.MimeOctet})
}

// HDRIPreview returns the preview image of an HDRI; external previews redirect.
func (s *Service) HDRIPreview(ctx context.Context, id uint) (*assetstore.Resolved, error) {
	hdri, err := s.logic.GetHDRI(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	return s.store.Resolve(ctx, hdri.Preview, assetstore.Policy{External: assetstore.Redirect, FallbackMime: validator.MimeJPEG})
}

func (s *Service) GalleryImage(ctx context.Context, id uint) (*assetstore.Resolved, error) {
	image, err := s.logic.GetGalleryImage(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	return s.store.Resolve(ctx, image.Image, assetstore.Policy{FallbackMime: validator.MimeJPEG})
}

// GalleryDataURIs inlines every gallery image of a model.
func (s *Service) GalleryDataURIs(ctx context.Context, modelID uint) ([]GalleryDataURI, error) {
	images, err := s.logic.galleryDAO.ListByFile(ctx, s.logic.db, modelID)
	if err != nil {
		return nil, err
	}
	out := make([]GalleryDataURI, 0, len(images))
	for _, img := range images {
		res, err := s.store.Resolve(ctx, img.Image, assetstore.Policy{FallbackMime: validator.MimeJPEG})
		if err != nil {
			if errors.Is(err, assetstore.ErrMissingContent) {
				continue
			}
			return nil, fmt.Errorf("gallery image %d: %w", img.ID, err)
		}
		if res.Redirect != "" {
			out = append(out, GalleryDataURI{Data: res.Redirect, MimeType: res.MimeType})
			continue
		}
		out = append(out, GalleryDataURI{
			Data:     "data:" + res.MimeType + ";base64," + base64.StdEncoding.EncodeToString(res.Data),
			MimeType: res.MimeType,
		})
	}
	return out, nil
}

// --------------------- Helpers ---------------------

func (s *Service) encodeUpload(ctx context.Context, up *Upload, rawURL, mimeType string) (model.Slot, error) {
	var data []byte
	if up != nil {
		data = up.Data
		if up.MimeType != "" && mimeType == "" {
			mimeType = up.MimeType
		}
	}
	slot, err := s.store.Encode(ctx, data, mimeType, rawURL)
	if errors.Is(err, assetstore.ErrInvalidURL) {
		return slot, invalid(err.Error())
	}
	return slot, err
}

func (s *Service) encodeImage(ctx context.Context, up *Upload, rawURL string) (model.Slot, error) {
	if strings.TrimSpace(rawURL) != "" || up == nil {
		return s.encodeUpload(ctx, nil, rawURL, "")
	}
	return s.encodeUpload(ctx, up, "", validator.ImageMime(up.MimeType, up.Data))
}

// encodeGallery encodes images concurrently, preserving order.
func (s *Service) encodeGallery(ctx context.Context, images []Upload) ([]model.GalleryImage, error) {
	out := make([]model.GalleryImage, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(galleryWorkers)
	for i := range images {
		i := i
		g.Go(func() error {
			slot, err := s.encodeImage(gctx, &images[i], "")
			if err != nil {
				return fmt.Errorf("encode gallery image %q: %w", images[i].Name, err)
			}
			out[i] = model.GalleryImage{Image: slot}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, img := range out {
			s.release(ctx, img.Image)
		}
		return nil, err
	}
	return out, nil
}

func checkOptional(up *Upload, extensions []string, field string) error {
	if up == nil {
		return nil
	}
	if len(up.Data) == 0 {
		return invalid(fmt.Sprintf("%s is empty", field))
	}
	if !validator.AllowedFile(up.Name, extensions) {
		return invalid(fmt.Sprintf("%s must be one of %s", field, strings.Join(extensions, ", ")))
	}
	return nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < constants.MinYear || year > constants.MaxYear {
		return 0, invalid("Invalid year. Please provide a valid year between 1900 and 2100.")
	}
	return year, nil
}

func hdriMime(up *Upload, rawURL string) string {
	if up != nil {
		return validator.HDRIMime(up.Name)
	}
	path := strings.SplitN(strings.TrimSpace(rawURL), "?", 2)[0]
	if strings.HasSuffix(strings.ToLower(path), ".exr") || strings.HasSuffix(strings.ToLower(path), ".hdr") {
		return validator.HDRIMime(path)
	}
	return ""
}

// slotColumns maps a slot onto the columns of an embedded prefix.
func slotColumns(prefix string, slot model.Slot) map[string]any {
	return map[string]any{
		prefix + "data":     slot.Data,
		prefix + "mimetype": slot.MimeType,
		prefix + "url":      slot.URL,
	}
}
