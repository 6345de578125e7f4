package store

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

// Cascading deletes remove a parent and all of its descendants depth
// first: tags before photos, photos before areas, areas before the
// project. All row deletions of one cascade run inside a single
// transaction, so a failure midway leaves no user-visible orphans. Blob
// removals happen after commit and are best-effort: a storage failure is
// logged and swallowed, leaving at worst an orphaned blob, never a
// dangling row.

// DeleteProject removes the project and every area, photo, and tag under
// it. Returns whether a row was removed; re-deletes are no-ops.
func (s *Store) DeleteProject(ctx context.Context, id, ownerID uint64) (bool, error) {
	var project models.Project
	errFind := s.db.WithContext(ctx).First(&project, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal("query project", errFind)
	}
	if project.UserID != ownerID {
		return false, apperr.Forbidden("project belongs to another user")
	}

	var keys []string
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var areas []models.Area
		if errAreas := tx.Where("project_id = ?", id).Find(&areas).Error; errAreas != nil {
			return errAreas
		}
		for i := range areas {
			areaKeys, errArea := deleteAreaTx(tx, areas[i].ID)
			if errArea != nil {
				return errArea
			}
			keys = append(keys, areaKeys...)
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if errTx != nil {
		return false, apperr.Internal("delete project", errTx)
	}

	s.removeBlobs(ctx, keys)
	return true, nil
}

// DeleteArea removes the area and every photo and tag under it.
func (s *Store) DeleteArea(ctx context.Context, id, ownerID uint64) (bool, error) {
	var area models.Area
	errFind := s.db.WithContext(ctx).First(&area, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal("query area", errFind)
	}
	if area.UserID != ownerID {
		return false, apperr.Forbidden("area belongs to another user")
	}

	var keys []string
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		areaKeys, errArea := deleteAreaTx(tx, id)
		if errArea != nil {
			return errArea
		}
		keys = areaKeys
		return nil
	})
	if errTx != nil {
		return false, apperr.Internal("delete area", errTx)
	}

	s.removeBlobs(ctx, keys)
	return true, nil
}

// DeletePhoto removes the photo and its tags.
func (s *Store) DeletePhoto(ctx context.Context, id, ownerID uint64) (bool, error) {
	var photo models.Photo
	errFind := s.db.WithContext(ctx).First(&photo, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal("query photo", errFind)
	}
	if photo.UserID != ownerID {
		return false, apperr.Forbidden("photo belongs to another user")
	}

	var keys []string
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photoKeys, errPhoto := deletePhotoTx(tx, id)
		if errPhoto != nil {
			return errPhoto
		}
		keys = photoKeys
		return nil
	})
	if errTx != nil {
		return false, apperr.Internal("delete photo", errTx)
	}

	s.removeBlobs(ctx, keys)
	return true, nil
}

// deleteAreaTx removes the area row and its photo subtree, returning the
// blob keys released.
func deleteAreaTx(tx *gorm.DB, areaID uint64) ([]string, error) {
	var photos []models.Photo
	if errPhotos := tx.Where("area_id = ?", areaID).Find(&photos).Error; errPhotos != nil {
		return nil, errPhotos
	}

	var keys []string
	for i := range photos {
		photoKeys, errPhoto := deletePhotoTx(tx, photos[i].ID)
		if errPhoto != nil {
			return nil, errPhoto
		}
		keys = append(keys, photoKeys...)
	}
	if errDelete := tx.Delete(&models.Area{}, areaID).Error; errDelete != nil {
		return nil, errDelete
	}
	return keys, nil
}

// deletePhotoTx removes the photo row and its tags, returning the blob
// keys released.
func deletePhotoTx(tx *gorm.DB, photoID uint64) ([]string, error) {
	var photo models.Photo
	if errFind := tx.First(&photo, photoID).Error; errFind != nil {
		return nil, errFind
	}

	var tagKeys []string
	if errKeys := tx.Model(&models.Tag{}).
		Where("photo_id = ? AND image_storage_key <> ''", photoID).
		Pluck("image_storage_key", &tagKeys).Error; errKeys != nil {
		return nil, errKeys
	}
	if errTags := tx.Where("photo_id = ?", photoID).Delete(&models.Tag{}).Error; errTags != nil {
		return nil, errTags
	}
	if errDelete := tx.Delete(&models.Photo{}, photoID).Error; errDelete != nil {
		return nil, errDelete
	}

	keys := make([]string, 0, len(tagKeys)+1)
	if photo.StorageKey != "" {
		keys = append(keys, photo.StorageKey)
	}
	keys = append(keys, tagKeys...)
	return keys, nil
}

// removeBlobs releases storage objects after the rows are gone. Failures
// are logged and swallowed.
func (s *Store) removeBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if errRemove := s.blobs.Remove(ctx, key); errRemove != nil {
			log.WithError(errRemove).WithField("key", key).Warn("cascade blob cleanup failed")
		}
	}
}
