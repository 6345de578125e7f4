package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/auth"
	"github.com/paintsnap/server/internal/config"
)

// SessionCookie is the HTTP-only cookie carrying the session token.
const SessionCookie = "paintsnap_session"

// AuthHandler serves registration, login, and session endpoints.
type AuthHandler struct {
	svc    *auth.Service
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{svc: svc, jwtCfg: jwtCfg}
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register creates a local account and starts its session.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	result, errRegister := h.svc.Register(c.Request.Context(), body.Username, body.Email, body.Password, body.DisplayName)
	if errRegister != nil {
		respondError(c, errRegister)
		return
	}
	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

// loginRequest defines the request body for local login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies local credentials. Accounts with TOTP enabled receive a
// pending token and must call the TOTP step to finish.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	result, errLogin := h.svc.LoginLocal(c.Request.Context(), body.Username, body.Password)
	if errLogin != nil {
		respondError(c, errLogin)
		return
	}
	if result.TOTPRequired {
		c.JSON(http.StatusOK, gin.H{"totp_required": true, "pending_token": result.Token})
		return
	}
	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

// loginTOTPRequest defines the request body for the TOTP login step.
type loginTOTPRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

// LoginTOTP finishes a two-step login.
func (h *AuthHandler) LoginTOTP(c *gin.Context) {
	var body loginTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	result, errTOTP := h.svc.CompleteTOTP(c.Request.Context(), body.PendingToken, body.Code)
	if errTOTP != nil {
		respondError(c, errTOTP)
		return
	}
	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

// verifyTokenRequest defines the request body for federated login.
type verifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyToken validates a federated identity token and establishes a
// session for the canonical user, creating it on first sight.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var body verifyTokenRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	result, errVerify := h.svc.VerifyFederated(c.Request.Context(), strings.TrimSpace(body.Token))
	if errVerify != nil {
		respondError(c, errVerify)
		return
	}
	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": userJSON(result.User)})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(user)})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.jwtCfg.Expiry.Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
}
