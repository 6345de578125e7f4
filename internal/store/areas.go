package store

import (
	"context"
	"strings"

	dbutil "github.com/paintsnap/server/internal/db"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

// AreaSummary is an area row with its photo count computed at read time.
type AreaSummary struct {
	models.Area
	PhotoCount int64 `gorm:"column:photo_count"`
}

// AreaPatch is a partial area update.
type AreaPatch struct {
	Name *string
}

// CreateArea creates an area under the given project, which must belong
// to the owner. A zero projectID targets the owner's default project.
func (s *Store) CreateArea(ctx context.Context, ownerID, projectID uint64, name string) (*models.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("missing area name")
	}

	if projectID == 0 {
		project, errProject := s.EnsureDefaultProject(ctx, ownerID)
		if errProject != nil {
			return nil, errProject
		}
		projectID = project.ID
	} else if _, errProject := s.GetProject(ctx, projectID, ownerID); errProject != nil {
		return nil, errProject
	}

	area := models.Area{
		UserID:    ownerID,
		ProjectID: projectID,
		Name:      name,
	}
	if errCreate := s.db.WithContext(ctx).Create(&area).Error; errCreate != nil {
		return nil, apperr.Internal("create area", errCreate)
	}
	return &area, nil
}

// ListAreas returns the owner's areas alphabetically with photo counts,
// optionally filtered by a case-insensitive name search.
func (s *Store) ListAreas(ctx context.Context, ownerID uint64, search string) ([]AreaSummary, error) {
	q := s.db.WithContext(ctx).
		Model(&models.Area{}).
		Select("areas.*, (SELECT COUNT(*) FROM photos WHERE photos.area_id = areas.id) AS photo_count").
		Where("areas.user_id = ?", ownerID)

	if search = strings.TrimSpace(search); search != "" {
		pattern := dbutil.NormalizeLikePattern(s.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(s.db, "areas.name"), pattern)
	}

	var areas []AreaSummary
	if errFind := q.Order("areas.name ASC").Find(&areas).Error; errFind != nil {
		return nil, apperr.Internal("list areas", errFind)
	}
	return areas, nil
}

// GetArea returns the area when owned by ownerID.
func (s *Store) GetArea(ctx context.Context, id, ownerID uint64) (*models.Area, error) {
	var area models.Area
	if errFind := s.db.WithContext(ctx).First(&area, id).Error; errFind != nil {
		return nil, notFoundOr(errFind, "area")
	}
	if area.UserID != ownerID {
		return nil, apperr.Forbidden("area belongs to another user")
	}
	return &area, nil
}

// UpdateArea applies a partial update when owned by ownerID.
func (s *Store) UpdateArea(ctx context.Context, id, ownerID uint64, patch AreaPatch) (*models.Area, error) {
	area, errGet := s.GetArea(ctx, id, ownerID)
	if errGet != nil {
		return nil, errGet
	}
	if patch.Name == nil {
		return area, nil
	}
	name := strings.TrimSpace(*patch.Name)
	if name == "" {
		return nil, apperr.Validation("area name cannot be empty")
	}
	if errUpdate := s.db.WithContext(ctx).Model(area).Update("name", name).Error; errUpdate != nil {
		return nil, apperr.Internal("update area", errUpdate)
	}
	return area, nil
}

// CountAreas returns how many areas the owner has.
func (s *Store) CountAreas(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Area{}).
		Where("user_id = ?", ownerID).
		Count(&count).Error; errCount != nil {
		return 0, apperr.Internal("count areas", errCount)
	}
	return count, nil
}
