package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/database"
	"github.com/yi-nology/showcase/pkg/metrics"
)

const recompressWorkers = 4

// RecompressReport counts rows rewritten by Recompress.
type RecompressReport struct {
	Files   int64
	Gallery int64
	HDRIs   int64
}

// Compact reclaims space, serialized through the compaction lock.
func (s *Service) Compact(ctx context.Context) error {
	lockID, err := s.locker.Acquire(ctx)
	if err != nil {
		metrics.Compactions.WithLabelValues("skipped").Inc()
		return fmt.Errorf("acquire compaction lock: %w", err)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockID); err != nil {
			hlog.CtxWarnf(ctx, "release compaction lock: %v", err)
		}
	}()

	start := time.Now()
	if err := database.Compact(ctx, s.logic.db); err != nil {
		metrics.Compactions.WithLabelValues("error").Inc()
		return err
	}
	metrics.Compactions.WithLabelValues("ok").Inc()
	hlog.CtxInfof(ctx, "database compacted in %s", time.Since(start))
	return nil
}

// CompactAsync runs Compact in the background; failures are only logged.
func (s *Service) CompactAsync(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.Compact(ctx); err != nil {
			hlog.CtxWarnf(ctx, "background compaction failed: %v", err)
		}
	}()
}

// PurgeChallenges deletes consumed, superseded and expired 2FA challenges.
func (s *Service) PurgeChallenges(ctx context.Context) (int64, error) {
	n, err := s.logic.twoFactorDAO.PurgeStale(ctx, s.logic.db, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		hlog.CtxInfof(ctx, "purged %d stale verification codes", n)
	}
	return n, nil
}

// Status reports the dialect and row counts of every table.
func (s *Service) Status(ctx context.Context) (string, []database.TableStatus, error) {
	return database.Status(ctx, s.logic.db)
}

// Recompress rewrites legacy payloads into the current envelope.
func (s *Service) Recompress(ctx context.Context) (*RecompressReport, error) {
	var report RecompressReport
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

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recompressWorkers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			changed, err := s.recompressFile(gctx, f.ID)
			if changed {
				atomic.AddInt64(&report.Files, 1)
			}
			return err
		})
	}
	for _, h := range hdris {
		h := h
		g.Go(func() error {
			changed, err := s.recompressHDRI(gctx, h.ID)
			if changed {
				atomic.AddInt64(&report.HDRIs, 1)
			}
			return err
		})
	}
	for _, img := range gallery {
		img := img
		g.Go(func() error {
			changed, err := s.recompressGallery(gctx, img.ID)
			if changed {
				atomic.AddInt64(&report.Gallery, 1)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return &report, err
	}
	return &report, nil
}

func (s *Service) reencodeInto(ctx context.Context, updates map[string]any, prefix string, slot model.Slot) error {
	out, changed, err := s.store.Reencode(ctx, slot)
	if err != nil {
		return fmt.Errorf("reencode %s: %w", prefix, err)
	}
	if changed {
		updates[prefix+"data"] = out.Data
	}
	return nil
}

func (s *Service) recompressFile(ctx context.Context, id uint) (bool, error) {
	file, err := s.logic.GetFile(ctx, s.logic.db, id)
	if err != nil {
		return false, err
	}
	updates := map[string]any{}
	for prefix, slot := range map[string]model.Slot{prefixModel: file.Model, prefixBanner: file.Banner, prefixArchive: file.Archive} {
		if err := s.reencodeInto(ctx, updates, prefix, slot); err != nil {
			return false, fmt.Errorf("file %d: %w", id, err)
		}
	}
	if len(updates) == 0 {
		return false, nil
	}
	if err := s.logic.UpdateFile(ctx, s.logic.db, id, updates); err != nil {
		return false, err
	}
	s.models.Invalidate(id)
	return true, nil
}

func (s *Service) recompressHDRI(ctx context.Context, id uint) (bool, error) {
	hdri, err := s.logic.GetHDRI(ctx, s.logic.db, id)
	if err != nil {
		return false, err
	}
	updates := map[string]any{}
	for prefix, slot := range map[string]model.Slot{prefixMap: hdri.Map, prefixPreview: hdri.Preview} {
		if err := s.reencodeInto(ctx, updates, prefix, slot); err != nil {
			return false, fmt.Errorf("hdri %d: %w", id, err)
		}
	}
	if len(updates) == 0 {
		return false, nil
	}
	return true, s.logic.UpdateHDRI(ctx, s.logic.db, id, updates)
}

func (s *Service) recompressGallery(ctx context.Context, id uint) (bool, error) {
	image, err := s.logic.GetGalleryImage(ctx, s.logic.db, id)
	if err != nil {
		return false, err
	}
	out, changed, err := s.store.Reencode(ctx, image.Image)
	if err != nil {
		return false, fmt.Errorf("gallery %d: %w", id, err)
	}
	if !changed {
		return false, nil
	}
	if err := s.logic.galleryDAO.UpdateData(ctx, s.logic.db, id, out.Data); err != nil {
		return false, mapNotFound(err, ErrGalleryNotFound)
	}
	return true, nil
}
