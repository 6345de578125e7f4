package store

import (
	"context"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

// TagInput carries the fields of a new tag. Image is optional.
type TagInput struct {
	PhotoID     uint64
	Description string
	Details     string
	PositionX   float64
	PositionY   float64

	ImageBody        io.Reader
	ImageContentType string
	ImageSize        int64
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Description *string
	Details     *string
	PositionX   *float64
	PositionY   *float64
}

// CreateTag inserts a positioned annotation on a photo owned by ownerID
// and touches the photo's last-modified timestamp.
func (s *Store) CreateTag(ctx context.Context, ownerID uint64, input TagInput) (*models.Tag, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperr.Validation("missing tag description")
	}
	if errPos := validatePosition(input.PositionX, input.PositionY); errPos != nil {
		return nil, errPos
	}
	if _, errPhoto := s.GetPhoto(ctx, input.PhotoID, ownerID); errPhoto != nil {
		return nil, errPhoto
	}

	var imageKey string
	if input.ImageBody != nil {
		key, errSave := s.blobs.Save(ctx, "tags", input.ImageContentType, input.ImageBody, input.ImageSize)
		if errSave != nil {
			return nil, errSave
		}
		imageKey = key
	}

	tag := models.Tag{
		UserID:          ownerID,
		PhotoID:         input.PhotoID,
		Description:     description,
		Details:         strings.TrimSpace(input.Details),
		ImageStorageKey: imageKey,
		PositionX:       input.PositionX,
		PositionY:       input.PositionY,
	}
	if errCreate := s.db.WithContext(ctx).Create(&tag).Error; errCreate != nil {
		if imageKey != "" {
			if errRemove := s.blobs.Remove(ctx, imageKey); errRemove != nil {
				log.WithError(errRemove).WithField("key", imageKey).Warn("orphaned tag blob not removed")
			}
		}
		return nil, apperr.Internal("create tag", errCreate)
	}

	s.touchPhoto(ctx, input.PhotoID)
	return &tag, nil
}

// ListTagsByPhoto returns a photo's tags in creation order.
func (s *Store) ListTagsByPhoto(ctx context.Context, photoID, ownerID uint64) ([]models.Tag, error) {
	if _, errPhoto := s.GetPhoto(ctx, photoID, ownerID); errPhoto != nil {
		return nil, errPhoto
	}

	var tags []models.Tag
	if errFind := s.db.WithContext(ctx).
		Where("photo_id = ?", photoID).
		Order("created_at ASC, id ASC").
		Find(&tags).Error; errFind != nil {
		return nil, apperr.Internal("list tags", errFind)
	}
	return tags, nil
}

// GetTag returns the tag when owned by ownerID.
func (s *Store) GetTag(ctx context.Context, id, ownerID uint64) (*models.Tag, error) {
	var tag models.Tag
	if errFind := s.db.WithContext(ctx).First(&tag, id).Error; errFind != nil {
		return nil, notFoundOr(errFind, "tag")
	}
	if tag.UserID != ownerID {
		return nil, apperr.Forbidden("tag belongs to another user")
	}
	return &tag, nil
}

// UpdateTag applies a partial update when owned by ownerID and touches
// the parent photo's last-modified timestamp.
func (s *Store) UpdateTag(ctx context.Context, id, ownerID uint64, patch TagPatch) (*models.Tag, error) {
	tag, errGet := s.GetTag(ctx, id, ownerID)
	if errGet != nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperr.Validation("tag description cannot be empty")
		}
		updates["description"] = description
	}
	if patch.Details != nil {
		updates["details"] = strings.TrimSpace(*patch.Details)
	}
	posX, posY := tag.PositionX, tag.PositionY
	if patch.PositionX != nil {
		posX = *patch.PositionX
		updates["position_x"] = posX
	}
	if patch.PositionY != nil {
		posY = *patch.PositionY
		updates["position_y"] = posY
	}
	if errPos := validatePosition(posX, posY); errPos != nil {
		return nil, errPos
	}
	if len(updates) == 0 {
		return tag, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(tag).Updates(updates).Error; errUpdate != nil {
		return nil, apperr.Internal("update tag", errUpdate)
	}
	s.touchPhoto(ctx, tag.PhotoID)
	return tag, nil
}

// DeleteTag removes the tag and its attached image, touching the parent
// photo. Returns whether a row was removed; re-deletes are no-ops.
func (s *Store) DeleteTag(ctx context.Context, id, ownerID uint64) (bool, error) {
	var tag models.Tag
	errFind := s.db.WithContext(ctx).First(&tag, id).Error
	if errFind != nil {
		if apperr.Is(notFoundOr(errFind, "tag"), apperr.KindNotFound) {
			return false, nil
		}
		return false, apperr.Internal("query tag", errFind)
	}
	if tag.UserID != ownerID {
		return false, apperr.Forbidden("tag belongs to another user")
	}

	if errDelete := s.db.WithContext(ctx).Delete(&models.Tag{}, id).Error; errDelete != nil {
		return false, apperr.Internal("delete tag", errDelete)
	}
	if tag.ImageStorageKey != "" {
		if errRemove := s.blobs.Remove(ctx, tag.ImageStorageKey); errRemove != nil {
			log.WithError(errRemove).WithField("key", tag.ImageStorageKey).Warn("tag image blob not removed")
		}
	}
	s.touchPhoto(ctx, tag.PhotoID)
	return true, nil
}

// CountTagsOnPhoto returns how many tags a photo carries.
func (s *Store) CountTagsOnPhoto(ctx context.Context, photoID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("photo_id = ?", photoID).
		Count(&count).Error; errCount != nil {
		return 0, apperr.Internal("count tags", errCount)
	}
	return count, nil
}

// touchPhoto refreshes the parent photo's last-modified timestamp. A tag
// mutation is a change to the photo from the user's point of view.
func (s *Store) touchPhoto(ctx context.Context, photoID uint64) {
	if errTouch := s.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ?", photoID).
		Update("updated_at", time.Now().UTC()).Error; errTouch != nil {
		log.WithError(errTouch).WithField("photo_id", photoID).Warn("touch photo failed")
	}
}

func validatePosition(x, y float64) error {
	if x < 0 || x > 100 || y < 0 || y > 100 {
		return apperr.Validation("tag position must be within [0,100]")
	}
	return nil
}
