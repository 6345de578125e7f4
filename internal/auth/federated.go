package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/paintsnap/server/internal/config"
	"github.com/paintsnap/server/internal/store"
)

// OIDCVerifier validates identity tokens against an OIDC provider's
// published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider and prepares a verifier for the
// configured audience.
func NewOIDCVerifier(ctx context.Context, cfg config.IdentityConfig) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("auth: create oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Audience}),
	}, nil
}

// Verify checks the token signature, issuer, audience, and expiry, then
// extracts the subject and profile claims.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (store.FederatedProfile, error) {
	idToken, errVerify := v.verifier.Verify(ctx, rawToken)
	if errVerify != nil {
		return store.FederatedProfile{}, errVerify
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if errClaims := idToken.Claims(&claims); errClaims != nil {
		return store.FederatedProfile{}, fmt.Errorf("parse token claims: %w", errClaims)
	}

	return store.FederatedProfile{
		SubjectID:   idToken.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}
