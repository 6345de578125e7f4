package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

// FederatedProfile carries the identity fields extracted from a verified
// federated token.
type FederatedProfile struct {
	SubjectID   string
	Email       string
	DisplayName string
	PhotoURL    string
}

// CreateLocalUser registers a username/password account on the basic plan
// and bootstraps its default project.
func (s *Store) CreateLocalUser(ctx context.Context, username, email, passwordHash, displayName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("missing username")
	}
	if passwordHash == "" {
		return nil, apperr.Validation("missing password")
	}

	plan, errPlan := s.planByTier(ctx, models.TierBasic)
	if errPlan != nil {
		return nil, errPlan
	}

	user := models.User{
		Username:    &username,
		Password:    passwordHash,
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
		PlanID:      &plan.ID,
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			return nil, apperr.Validation("username already taken")
		}
		return nil, apperr.Internal("create user", errCreate)
	}

	if _, errProject := s.EnsureDefaultProject(ctx, user.ID); errProject != nil {
		return nil, errProject
	}
	return &user, nil
}

// EnsureFederatedUser resolves a verified federated subject to its user
// row, creating the account and its default project on first sight. The
// lookup-then-create is idempotent: a concurrent create of the same
// subject loses on the unique index and falls back to the existing row.
func (s *Store) EnsureFederatedUser(ctx context.Context, profile FederatedProfile) (*models.User, error) {
	subject := strings.TrimSpace(profile.SubjectID)
	if subject == "" {
		return nil, apperr.Validation("missing federated subject")
	}

	var user models.User
	errFind := s.db.WithContext(ctx).Where("subject_id = ?", subject).First(&user).Error
	if errFind == nil {
		return &user, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("query user", errFind)
	}

	plan, errPlan := s.planByTier(ctx, models.TierBasic)
	if errPlan != nil {
		return nil, errPlan
	}

	user = models.User{
		SubjectID:   &subject,
		Email:       strings.TrimSpace(profile.Email),
		DisplayName: strings.TrimSpace(profile.DisplayName),
		PhotoURL:    strings.TrimSpace(profile.PhotoURL),
		PlanID:      &plan.ID,
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			var existing models.User
			if errRetry := s.db.WithContext(ctx).Where("subject_id = ?", subject).First(&existing).Error; errRetry == nil {
				return &existing, nil
			}
		}
		return nil, apperr.Internal("create federated user", errCreate)
	}

	if _, errProject := s.EnsureDefaultProject(ctx, user.ID); errProject != nil {
		return nil, errProject
	}
	return &user, nil
}

// GetUserByID returns the user with its plan preloaded.
func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Preload("Plan").First(&user, id).Error; errFind != nil {
		return nil, notFoundOr(errFind, "user")
	}
	return &user, nil
}

// GetUserByLogin looks a local account up by username or email.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if errFind != nil {
		return nil, notFoundOr(errFind, "user")
	}
	return &user, nil
}

// SetTOTPSecret stores (or clears) the user's TOTP secret.
func (s *Store) SetTOTPSecret(ctx context.Context, userID uint64, secret string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("totp_secret", secret)
	if result.Error != nil {
		return apperr.Internal("update totp secret", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// SetUserTier reassigns the user to the plan for the given tier.
func (s *Store) SetUserTier(ctx context.Context, userID uint64, tier string) error {
	plan, errPlan := s.planByTier(ctx, tier)
	if errPlan != nil {
		return errPlan
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("plan_id", plan.ID)
	if result.Error != nil {
		return apperr.Internal("update plan", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (s *Store) planByTier(ctx context.Context, tier string) (*models.Plan, error) {
	var plan models.Plan
	errFind := s.db.WithContext(ctx).
		Where("tier = ? AND is_enabled = ?", tier, true).
		First(&plan).Error
	if errFind != nil {
		return nil, notFoundOr(errFind, "plan")
	}
	return &plan, nil
}

// isDuplicateKey detects unique-index violations across both dialects.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
