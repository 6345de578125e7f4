// Package quota gates creation operations by plan tier limits.
package quota

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
	"github.com/paintsnap/server/internal/store"
)

// Enforcer checks current child-entity counts against the caller's plan
// before a create is allowed. Checks are best-effort: two concurrent
// creates from the same user can both read the same stale count, which is
// acceptable for single-user-driven usage.
type Enforcer struct {
	db    *gorm.DB
	store *store.Store
}

// New constructs an Enforcer.
func New(st *store.Store) *Enforcer {
	return &Enforcer{db: st.DB(), store: st}
}

// CheckAreaCreate denies the create when the user is at their area limit.
func (e *Enforcer) CheckAreaCreate(ctx context.Context, user *models.User) error {
	plan, errPlan := e.planFor(ctx, user)
	if errPlan != nil {
		return errPlan
	}
	count, errCount := e.store.CountAreas(ctx, user.ID)
	if errCount != nil {
		return errCount
	}
	if count >= int64(plan.MaxAreas) {
		return apperr.QuotaExceeded(fmt.Sprintf("area limit reached (%d); upgrade to add more", plan.MaxAreas))
	}
	return nil
}

// CheckPhotoCreate denies the create when the target area is at its
// photo limit.
func (e *Enforcer) CheckPhotoCreate(ctx context.Context, user *models.User, areaID uint64) error {
	plan, errPlan := e.planFor(ctx, user)
	if errPlan != nil {
		return errPlan
	}
	count, errCount := e.store.CountPhotosInArea(ctx, areaID)
	if errCount != nil {
		return errCount
	}
	if count >= int64(plan.MaxPhotosPerArea) {
		return apperr.QuotaExceeded(fmt.Sprintf("photo limit reached for this area (%d); upgrade to add more", plan.MaxPhotosPerArea))
	}
	return nil
}

// CheckTagCreate denies the create when the target photo is at its tag
// limit.
func (e *Enforcer) CheckTagCreate(ctx context.Context, user *models.User, photoID uint64) error {
	plan, errPlan := e.planFor(ctx, user)
	if errPlan != nil {
		return errPlan
	}
	count, errCount := e.store.CountTagsOnPhoto(ctx, photoID)
	if errCount != nil {
		return errCount
	}
	if count >= int64(plan.MaxTagsPerPhoto) {
		return apperr.QuotaExceeded(fmt.Sprintf("tag limit reached for this photo (%d); upgrade to add more", plan.MaxTagsPerPhoto))
	}
	return nil
}

// planFor resolves the user's plan, falling back to the basic tier for
// accounts created before plans were assigned.
func (e *Enforcer) planFor(ctx context.Context, user *models.User) (*models.Plan, error) {
	if user.Plan != nil {
		return user.Plan, nil
	}
	var plan models.Plan
	q := e.db.WithContext(ctx)
	if user.PlanID != nil {
		q = q.Where("id = ?", *user.PlanID)
	} else {
		q = q.Where("tier = ?", models.TierBasic)
	}
	if errFind := q.First(&plan).Error; errFind != nil {
		return nil, apperr.Internal("resolve plan", errFind)
	}
	return &plan, nil
}
