package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/models"
	"github.com/paintsnap/server/internal/security"
	"github.com/paintsnap/server/internal/store"
)

// AccountHandler serves plan listing, usage, and TOTP management.
type AccountHandler struct {
	store *store.Store
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(st *store.Store) *AccountHandler {
	return &AccountHandler{store: st}
}

// Plans returns the assignable plans ordered for display.
func (h *AccountHandler) Plans(c *gin.Context) {
	var plans []models.Plan
	if errFind := h.store.DB().WithContext(c.Request.Context()).
		Where("is_enabled = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&plans).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	out := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		out = append(out, gin.H{
			"tier":                plan.Tier,
			"name":                plan.Name,
			"month_price":         plan.MonthPrice,
			"description":         plan.Description,
			"features":            plan.Features,
			"max_areas":           plan.MaxAreas,
			"max_photos_per_area": plan.MaxPhotosPerArea,
			"max_tags_per_photo":  plan.MaxTagsPerPhoto,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Usage reports the caller's area count against their plan limit.
func (h *AccountHandler) Usage(c *gin.Context) {
	user := CurrentUser(c)
	count, errCount := h.store.CountAreas(c.Request.Context(), user.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	out := gin.H{"areas": count}
	if user.Plan != nil {
		out["max_areas"] = user.Plan.MaxAreas
		out["tier"] = user.Plan.Tier
	}
	c.JSON(http.StatusOK, gin.H{"usage": out})
}

// PrepareTOTP provisions a TOTP secret; Confirm must follow with a valid
// code before the second step is enforced at login.
func (h *AccountHandler) PrepareTOTP(c *gin.Context) {
	user := CurrentUser(c)
	if user.TOTPSecret != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "totp already enabled"})
		return
	}
	account := user.Email
	if user.Username != nil {
		account = *user.Username
	}
	secret, url, errGenerate := security.GenerateTOTPSecret(account)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "otpauth_url": url})
}

// confirmTOTPRequest defines the request body for TOTP confirmation.
type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP verifies the first code and enables the second login step.
func (h *AccountHandler) ConfirmTOTP(c *gin.Context) {
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.Secret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if !security.ValidateTOTP(body.Secret, body.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid code"})
		return
	}
	if errSet := h.store.SetTOTPSecret(c.Request.Context(), CurrentUser(c).ID, body.Secret); errSet != nil {
		respondError(c, errSet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

// DisableTOTP turns the second login step off.
func (h *AccountHandler) DisableTOTP(c *gin.Context) {
	if errClear := h.store.SetTOTPSecret(c.Request.Context(), CurrentUser(c).ID, ""); errClear != nil {
		respondError(c, errClear)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}
