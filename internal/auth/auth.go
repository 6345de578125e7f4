// Package auth reconciles the two credential paths, local
// username/password and federated identity tokens, onto one canonical
// user record and issues session tokens.
package auth

import (
	"context"
	"time"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/config"
	"github.com/paintsnap/server/internal/models"
	"github.com/paintsnap/server/internal/security"
	"github.com/paintsnap/server/internal/store"
)

// TokenVerifier validates a federated identity token and extracts the
// stable subject and profile fields.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (store.FederatedProfile, error)
}

// Service implements the dual-auth reconciler.
type Service struct {
	store    *store.Store
	jwtCfg   config.JWTConfig
	verifier TokenVerifier // nil when federated login is disabled
}

// NewService constructs a Service. verifier may be nil.
func NewService(st *store.Store, jwtCfg config.JWTConfig, verifier TokenVerifier) *Service {
	return &Service{store: st, jwtCfg: jwtCfg, verifier: verifier}
}

// LoginResult is the outcome of a successful credential exchange. When
// TOTPRequired is set, Token is a short-lived pending token and the
// session is not yet established.
type LoginResult struct {
	Token        string
	TOTPRequired bool
	User         *models.User
}

// Register creates a local account and logs it in.
func (s *Service) Register(ctx context.Context, username, email, password, displayName string) (*LoginResult, error) {
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return nil, apperr.Internal("hash password", errHash)
	}
	user, errCreate := s.store.CreateLocalUser(ctx, username, email, hash, displayName)
	if errCreate != nil {
		return nil, errCreate
	}
	return s.establishSession(user)
}

// LoginLocal verifies a username/email plus password. The error message
// never reveals whether the account exists.
func (s *Service) LoginLocal(ctx context.Context, login, password string) (*LoginResult, error) {
	user, errFind := s.store.GetUserByLogin(ctx, login)
	if errFind != nil {
		if apperr.Is(errFind, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, errFind
	}
	if user.Password == "" || !security.CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if user.TOTPSecret != "" {
		pending, errSign := security.SignPendingToken(s.jwtCfg.Secret, user.ID)
		if errSign != nil {
			return nil, apperr.Internal("sign pending token", errSign)
		}
		return &LoginResult{Token: pending, TOTPRequired: true, User: user}, nil
	}

	// First local login after a project delete recreates the default.
	if _, errProject := s.store.EnsureDefaultProject(ctx, user.ID); errProject != nil {
		return nil, errProject
	}
	return s.establishSession(user)
}

// CompleteTOTP exchanges a pending token plus a valid TOTP code for a
// full session.
func (s *Service) CompleteTOTP(ctx context.Context, pendingToken, code string) (*LoginResult, error) {
	claims, errParse := security.ParseUserToken(s.jwtCfg.Secret, pendingToken)
	if errParse != nil || claims.Stage != security.StagePending {
		return nil, apperr.Unauthorized("invalid or expired login session")
	}
	user, errFind := s.store.GetUserByID(ctx, claims.UserID)
	if errFind != nil {
		return nil, apperr.Unauthorized("invalid or expired login session")
	}
	if user.TOTPSecret == "" || !security.ValidateTOTP(user.TOTPSecret, code) {
		return nil, apperr.Unauthorized("invalid code")
	}
	if _, errProject := s.store.EnsureDefaultProject(ctx, user.ID); errProject != nil {
		return nil, errProject
	}
	return s.establishSession(user)
}

// verifyTimeout caps the round trip to the identity provider.
const verifyTimeout = 10 * time.Second

// VerifyFederated validates an identity token against the external
// provider and resolves it to the canonical user, creating the account on
// first sight. Verifier error detail is safe to surface; it originates at
// the provider, not from internal state.
func (s *Service) VerifyFederated(ctx context.Context, rawToken string) (*LoginResult, error) {
	if s.verifier == nil {
		return nil, apperr.Unauthorized("federated login is not configured")
	}
	if rawToken == "" {
		return nil, apperr.Validation("missing token")
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	profile, errVerify := s.verifier.Verify(ctx, rawToken)
	if errVerify != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperr.DependencyTimeout("identity provider timeout", errVerify)
		}
		return nil, apperr.Unauthorized("token verification failed: " + errVerify.Error())
	}

	user, errEnsure := s.store.EnsureFederatedUser(ctx, profile)
	if errEnsure != nil {
		return nil, errEnsure
	}
	return s.establishSession(user)
}

// CurrentUser resolves a session token to its user.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims, errParse := security.ParseUserToken(s.jwtCfg.Secret, token)
	if errParse != nil || claims.Stage != security.StageSession {
		return nil, apperr.Unauthorized("invalid session")
	}
	user, errFind := s.store.GetUserByID(ctx, claims.UserID)
	if errFind != nil {
		return nil, apperr.Unauthorized("invalid session")
	}
	return user, nil
}

func (s *Service) establishSession(user *models.User) (*LoginResult, error) {
	token, errSign := security.SignSessionToken(s.jwtCfg.Secret, s.jwtCfg.Expiry, user.ID)
	if errSign != nil {
		return nil, apperr.Internal("sign session token", errSign)
	}
	return &LoginResult{Token: token, User: user}, nil
}
