package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

const defaultProjectName = "My Project"

// ProjectPatch is a partial project update.
type ProjectPatch struct {
	Name        *string
	Description *string
	IsDefault   *bool
}

// EnsureDefaultProject returns the user's default project, creating it
// when missing (registration, first federated sight, first login after a
// manual delete).
func (s *Store) EnsureDefaultProject(ctx context.Context, ownerID uint64) (*models.Project, error) {
	var project models.Project
	errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", ownerID, true).
		First(&project).Error
	if errFind == nil {
		return &project, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("query default project", errFind)
	}

	project = models.Project{
		UserID:    ownerID,
		Name:      defaultProjectName,
		IsDefault: true,
	}
	if errCreate := s.db.WithContext(ctx).Create(&project).Error; errCreate != nil {
		return nil, apperr.Internal("create default project", errCreate)
	}
	return &project, nil
}

// CreateProject creates a project for the owner. Marking it default
// clears the flag on the previous default, best-effort.
func (s *Store) CreateProject(ctx context.Context, ownerID uint64, name, description string, isDefault bool) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("missing project name")
	}

	project := models.Project{
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsDefault:   isDefault,
	}
	if errCreate := s.db.WithContext(ctx).Create(&project).Error; errCreate != nil {
		return nil, apperr.Internal("create project", errCreate)
	}
	if isDefault {
		if errClear := s.clearOtherDefaults(ctx, ownerID, project.ID); errClear != nil {
			return nil, errClear
		}
	}
	return &project, nil
}

// ListProjects returns the owner's projects, default first then by name.
func (s *Store) ListProjects(ctx context.Context, ownerID uint64) ([]models.Project, error) {
	var projects []models.Project
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("is_default DESC, name ASC").
		Find(&projects).Error; errFind != nil {
		return nil, apperr.Internal("list projects", errFind)
	}
	return projects, nil
}

// GetProject returns the project when owned by ownerID.
func (s *Store) GetProject(ctx context.Context, id, ownerID uint64) (*models.Project, error) {
	var project models.Project
	if errFind := s.db.WithContext(ctx).First(&project, id).Error; errFind != nil {
		return nil, notFoundOr(errFind, "project")
	}
	if project.UserID != ownerID {
		return nil, apperr.Forbidden("project belongs to another user")
	}
	return &project, nil
}

// UpdateProject applies a partial update when owned by ownerID.
func (s *Store) UpdateProject(ctx context.Context, id, ownerID uint64, patch ProjectPatch) (*models.Project, error) {
	project, errGet := s.GetProject(ctx, id, ownerID)
	if errGet != nil {
		return nil, errGet
	}

	updates := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("project name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.IsDefault != nil {
		updates["is_default"] = *patch.IsDefault
	}
	if len(updates) == 0 {
		return project, nil
	}

	if errUpdate := s.db.WithContext(ctx).Model(project).Updates(updates).Error; errUpdate != nil {
		return nil, apperr.Internal("update project", errUpdate)
	}
	if patch.IsDefault != nil && *patch.IsDefault {
		if errClear := s.clearOtherDefaults(ctx, ownerID, project.ID); errClear != nil {
			return nil, errClear
		}
	}
	return s.GetProject(ctx, id, ownerID)
}

func (s *Store) clearOtherDefaults(ctx context.Context, ownerID, keepID uint64) error {
	if errClear := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", ownerID, keepID, true).
		Update("is_default", false).Error; errClear != nil {
		return apperr.Internal("clear default projects", errClear)
	}
	return nil
}
