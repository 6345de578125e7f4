package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token stages. A pending token is issued after a correct password when
// the account still owes a TOTP code; it grants nothing but the TOTP step.
const (
	StageSession = "session"
	StagePending = "totp-pending"
)

// pendingTokenExpiry bounds the window between password and TOTP steps.
const pendingTokenExpiry = 5 * time.Minute

// UserClaims are the JWT claims carried by session and pending tokens.
type UserClaims struct {
	UserID uint64 `json:"uid"`
	Stage  string `json:"stage"`
	jwt.RegisteredClaims
}

// SignSessionToken issues a full session token for the user.
func SignSessionToken(secret string, expiry time.Duration, userID uint64) (string, error) {
	return signToken(secret, expiry, userID, StageSession)
}

// SignPendingToken issues a short-lived token awaiting TOTP confirmation.
func SignPendingToken(secret string, userID uint64) (string, error) {
	return signToken(secret, pendingTokenExpiry, userID, StagePending)
}

func signToken(secret string, expiry time.Duration, userID uint64, stage string) (string, error) {
	if secret == "" {
		return "", errors.New("security: empty jwt secret")
	}
	now := time.Now().UTC()
	claims := UserClaims{
		UserID: userID,
		Stage:  stage,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseUserToken validates a token and returns its claims.
func ParseUserToken(secret, raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("security: unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("security: invalid token")
	}
	return claims, nil
}
