package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/seed"
)

const galleryModule = "gallery"

// GalleryService handles gallery CRUD with seed fallback.
type GalleryService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *GalleryService {
	return &GalleryService{db: gdb, mode: mode, seed: content}
}

// ListAll returns gallery items, newest date first.
func (s *GalleryService) ListAll(ctx context.Context) []db.GalleryItem {
	return readAll(ctx, s.db, s.mode, galleryModule, s.seed.Gallery, func(q *gorm.DB) ([]db.GalleryItem, error) {
		var items []db.GalleryItem
		err := q.Order("date desc").Order("created_at desc").Find(&items).Error
		return items, err
	})
}

// Get fetches a gallery item by id.
func (s *GalleryService) Get(ctx context.Context, id string) *db.GalleryItem {
	return readOne(ctx, s.db, s.mode, galleryModule, id, func(id string) (db.GalleryItem, bool) {
		for _, item := range s.seed.Gallery() {
			if item.ID == id {
				return item, true
			}
		}
		return db.GalleryItem{}, false
	})
}

// Stored reports whether the item exists in the backend rather than only in the seed.
func (s *GalleryService) Stored(ctx context.Context, id string) (bool, error) {
	return stored(ctx, s.db, s.mode, galleryModule, &db.GalleryItem{}, id, func(id string) bool {
		for _, item := range s.seed.Gallery() {
			if item.ID == id {
				return true
			}
		}
		return false
	})
}

// Add inserts a new gallery item and returns its id.
func (s *GalleryService) Add(ctx context.Context, item db.GalleryItem) (string, bool) {
	item.ID = ""
	return writeAdd(ctx, s.db, s.mode, galleryModule, func(q *gorm.DB) (string, error) {
		if err := q.Create(&item).Error; err != nil {
			return "", err
		}
		return item.ID, nil
	})
}

// Update applies a partial update.
func (s *GalleryService) Update(ctx context.Context, id string, patch GalleryPatch) bool {
	return writeOp(ctx, s.db, s.mode, galleryModule, "update", id, func(q *gorm.DB) error {
		return applyPatch(q, &db.GalleryItem{}, id, patch.updates())
	})
}

// Delete removes a gallery item.
func (s *GalleryService) Delete(ctx context.Context, id string) bool {
	return writeOp(ctx, s.db, s.mode, galleryModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.GalleryItem{}).Error
	})
}
