package store

import (
	"context"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

// PhotoSummary is a photo row with its tag count computed at read time.
type PhotoSummary struct {
	models.Photo
	TagCount int64 `gorm:"column:tag_count"`
}

// PhotoPatch is a partial photo update.
type PhotoPatch struct {
	Name *string
}

// PhotoUpload carries the metadata and bytes of a new photo.
type PhotoUpload struct {
	AreaID      uint64
	Name        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreatePhoto stores the image bytes in the blob store and inserts the
// photo row under an area owned by ownerID.
func (s *Store) CreatePhoto(ctx context.Context, ownerID uint64, upload PhotoUpload) (*models.Photo, error) {
	name := strings.TrimSpace(upload.Name)
	if name == "" {
		name = strings.TrimSpace(upload.Filename)
	}
	if name == "" {
		return nil, apperr.Validation("missing photo name")
	}
	if upload.Body == nil {
		return nil, apperr.Validation("missing photo file")
	}
	if _, errArea := s.GetArea(ctx, upload.AreaID, ownerID); errArea != nil {
		return nil, errArea
	}

	key, errSave := s.blobs.Save(ctx, "photos", upload.ContentType, upload.Body, upload.Size)
	if errSave != nil {
		return nil, errSave
	}

	photo := models.Photo{
		UserID:      ownerID,
		AreaID:      upload.AreaID,
		Name:        name,
		Filename:    strings.TrimSpace(upload.Filename),
		StorageKey:  key,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	}
	if errCreate := s.db.WithContext(ctx).Create(&photo).Error; errCreate != nil {
		// The row never existed; drop the orphaned blob, best-effort.
		if errRemove := s.blobs.Remove(ctx, key); errRemove != nil {
			log.WithError(errRemove).WithField("key", key).Warn("orphaned photo blob not removed")
		}
		return nil, apperr.Internal("create photo", errCreate)
	}
	return &photo, nil
}

// ListPhotosByArea returns an area's photos newest-first with tag counts.
func (s *Store) ListPhotosByArea(ctx context.Context, areaID, ownerID uint64) ([]PhotoSummary, error) {
	if _, errArea := s.GetArea(ctx, areaID, ownerID); errArea != nil {
		return nil, errArea
	}

	var photos []PhotoSummary
	if errFind := s.db.WithContext(ctx).
		Model(&models.Photo{}).
		Select("photos.*, (SELECT COUNT(*) FROM tags WHERE tags.photo_id = photos.id) AS tag_count").
		Where("photos.area_id = ?", areaID).
		Order("photos.created_at DESC, photos.id DESC").
		Find(&photos).Error; errFind != nil {
		return nil, apperr.Internal("list photos", errFind)
	}
	return photos, nil
}

// ListPhotosByOwner returns every photo of the owner newest-first with
// tag counts.
func (s *Store) ListPhotosByOwner(ctx context.Context, ownerID uint64) ([]PhotoSummary, error) {
	var photos []PhotoSummary
	if errFind := s.db.WithContext(ctx).
		Model(&models.Photo{}).
		Select("photos.*, (SELECT COUNT(*) FROM tags WHERE tags.photo_id = photos.id) AS tag_count").
		Where("photos.user_id = ?", ownerID).
		Order("photos.created_at DESC, photos.id DESC").
		Find(&photos).Error; errFind != nil {
		return nil, apperr.Internal("list photos", errFind)
	}
	return photos, nil
}

// GetPhoto returns the photo when owned by ownerID.
func (s *Store) GetPhoto(ctx context.Context, id, ownerID uint64) (*models.Photo, error) {
	var photo models.Photo
	if errFind := s.db.WithContext(ctx).First(&photo, id).Error; errFind != nil {
		return nil, notFoundOr(errFind, "photo")
	}
	if photo.UserID != ownerID {
		return nil, apperr.Forbidden("photo belongs to another user")
	}
	return &photo, nil
}

// UpdatePhoto applies a partial update when owned by ownerID.
func (s *Store) UpdatePhoto(ctx context.Context, id, ownerID uint64, patch PhotoPatch) (*models.Photo, error) {
	photo, errGet := s.GetPhoto(ctx, id, ownerID)
	if errGet != nil {
		return nil, errGet
	}
	if patch.Name == nil {
		return photo, nil
	}
	name := strings.TrimSpace(*patch.Name)
	if name == "" {
		return nil, apperr.Validation("photo name cannot be empty")
	}
	if errUpdate := s.db.WithContext(ctx).Model(photo).Update("name", name).Error; errUpdate != nil {
		return nil, apperr.Internal("update photo", errUpdate)
	}
	return photo, nil
}

// MovePhoto reassigns the photo to another area of the same owner. The
// owner id never changes on a move.
func (s *Store) MovePhoto(ctx context.Context, id, ownerID, targetAreaID uint64) (*models.Photo, error) {
	photo, errGet := s.GetPhoto(ctx, id, ownerID)
	if errGet != nil {
		return nil, errGet
	}
	if _, errArea := s.GetArea(ctx, targetAreaID, ownerID); errArea != nil {
		return nil, errArea
	}
	if errUpdate := s.db.WithContext(ctx).Model(photo).Update("area_id", targetAreaID).Error; errUpdate != nil {
		return nil, apperr.Internal("move photo", errUpdate)
	}
	return photo, nil
}

// OpenPhotoImage streams the raw image for a photo. Public: the image
// endpoint is exempt from the ownership guard.
func (s *Store) OpenPhotoImage(ctx context.Context, id uint64) (io.ReadCloser, string, error) {
	var photo models.Photo
	if errFind := s.db.WithContext(ctx).First(&photo, id).Error; errFind != nil {
		return nil, "", notFoundOr(errFind, "photo")
	}
	body, contentType, errOpen := s.blobs.Open(ctx, photo.StorageKey)
	if errOpen != nil {
		return nil, "", errOpen
	}
	if contentType == "" {
		contentType = photo.ContentType
	}
	return body, contentType, nil
}

// CountPhotosInArea returns how many photos an area holds.
func (s *Store) CountPhotosInArea(ctx context.Context, areaID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Photo{}).
		Where("area_id = ?", areaID).
		Count(&count).Error; errCount != nil {
		return 0, apperr.Internal("count photos", errCount)
	}
	return count, nil
}
