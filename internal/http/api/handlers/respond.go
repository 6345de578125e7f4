package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
	"github.com/paintsnap/server/internal/store"
)

// userKey is the gin context key holding the authenticated user.
const userKey = "paintsnap.user"

// CurrentUser returns the authenticated user set by the auth middleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}

// respondError maps tagged application errors onto HTTP responses. 4xx
// bodies carry the variant message; 5xx and dependency failures are
// logged with full detail and return a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	switch appErr.Kind {
	case apperr.KindInternal:
		log.WithError(appErr).Error("request failed")
		c.JSON(appErr.HTTPStatus(), gin.H{"message": "internal server error"})
	case apperr.KindDependency, apperr.KindDependencyTimeout:
		log.WithError(appErr).Warn("dependency failure")
		c.JSON(appErr.HTTPStatus(), gin.H{"message": appErr.Message})
	case apperr.KindQuotaExceeded:
		c.JSON(appErr.HTTPStatus(), gin.H{"message": appErr.Message, "upgrade": true})
	default:
		c.JSON(appErr.HTTPStatus(), gin.H{"message": appErr.Message})
	}
}

func userJSON(user *models.User) gin.H {
	out := gin.H{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"email":        user.Email,
		"photo_url":    user.PhotoURL,
		"totp_enabled": user.TOTPSecret != "",
		"created_at":   user.CreatedAt,
	}
	if user.Username != nil {
		out["username"] = *user.Username
	}
	if user.Plan != nil {
		out["tier"] = user.Plan.Tier
	}
	return out
}

func projectJSON(project *models.Project) gin.H {
	return gin.H{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"is_default":  project.IsDefault,
		"created_at":  project.CreatedAt,
		"updated_at":  project.UpdatedAt,
	}
}

func areaJSON(area *models.Area, photoCount int64) gin.H {
	return gin.H{
		"id":          area.ID,
		"project_id":  area.ProjectID,
		"name":        area.Name,
		"photo_count": photoCount,
		"created_at":  area.CreatedAt,
		"updated_at":  area.UpdatedAt,
	}
}

func photoJSON(photo *models.Photo, tagCount int64) gin.H {
	return gin.H{
		"id":            photo.ID,
		"area_id":       photo.AreaID,
		"name":          photo.Name,
		"filename":      photo.Filename,
		"content_type":  photo.ContentType,
		"size":          photo.Size,
		"tag_count":     tagCount,
		"image_url":     "/photos/" + itoa(photo.ID) + "/image",
		"uploaded_at":   photo.CreatedAt,
		"last_modified": photo.UpdatedAt,
	}
}

func tagJSON(tag *models.Tag) gin.H {
	return gin.H{
		"id":          tag.ID,
		"photo_id":    tag.PhotoID,
		"description": tag.Description,
		"details":     tag.Details,
		"has_image":   tag.ImageStorageKey != "",
		"position_x":  tag.PositionX,
		"position_y":  tag.PositionY,
		"created_at":  tag.CreatedAt,
		"updated_at":  tag.UpdatedAt,
	}
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func photoSummariesJSON(photos []store.PhotoSummary) []gin.H {
	out := make([]gin.H, 0, len(photos))
	for i := range photos {
		out = append(out, photoJSON(&photos[i].Photo, photos[i].TagCount))
	}
	return out
}
