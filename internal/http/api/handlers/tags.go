package handlers

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/quota"
	"github.com/paintsnap/server/internal/store"
)

// TagHandler serves tag endpoints nested under photos.
type TagHandler struct {
	store *store.Store
	quota *quota.Enforcer
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(st *store.Store, enforcer *quota.Enforcer) *TagHandler {
	return &TagHandler{store: st, quota: enforcer}
}

// createTagRequest defines the request body for tag creation. ImageData
// optionally attaches a small image (base64) to the annotation.
type createTagRequest struct {
	Description      string  `json:"description"`
	Details          string  `json:"details"`
	PositionX        float64 `json:"position_x"`
	PositionY        float64 `json:"position_y"`
	ImageData        string  `json:"image_data"`
	ImageContentType string  `json:"image_content_type"`
}

// Create adds a positioned annotation to a photo, gated by the caller's
// plan quota.
func (h *TagHandler) Create(c *gin.Context) {
	photoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body createTagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	input := store.TagInput{
		PhotoID:     photoID,
		Description: body.Description,
		Details:     body.Details,
		PositionX:   body.PositionX,
		PositionY:   body.PositionY,
	}
	if body.ImageData != "" {
		if !allowedImageTypes[body.ImageContentType] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported image type; use JPEG, PNG, or WebP"})
			return
		}
		data, errDecode := base64.StdEncoding.DecodeString(body.ImageData)
		if errDecode != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid image data"})
			return
		}
		if len(data) > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"message": "image exceeds 10MB limit"})
			return
		}
		input.ImageBody = bytes.NewReader(data)
		input.ImageContentType = body.ImageContentType
		input.ImageSize = int64(len(data))
	}

	user := CurrentUser(c)
	if errQuota := h.quota.CheckTagCreate(c.Request.Context(), user, photoID); errQuota != nil {
		respondError(c, errQuota)
		return
	}
	tag, errCreate := h.store.CreateTag(c.Request.Context(), user.ID, input)
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tagJSON(tag)})
}

// List returns a photo's tags in creation order.
func (h *TagHandler) List(c *gin.Context) {
	photoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tags, errList := h.store.ListTagsByPhoto(c.Request.Context(), photoID, CurrentUser(c).ID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(tags))
	for i := range tags {
		out = append(out, tagJSON(&tags[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

// updateTagRequest defines the request body for tag updates.
type updateTagRequest struct {
	Description *string  `json:"description"`
	Details     *string  `json:"details"`
	PositionX   *float64 `json:"position_x"`
	PositionY   *float64 `json:"position_y"`
}

// Update applies a partial update to a tag.
func (h *TagHandler) Update(c *gin.Context) {
	if _, ok := pathID(c, "id"); !ok {
		return
	}
	tagID, ok := pathID(c, "tagId")
	if !ok {
		return
	}
	var body updateTagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	tag, errUpdate := h.store.UpdateTag(c.Request.Context(), tagID, CurrentUser(c).ID, store.TagPatch{
		Description: body.Description,
		Details:     body.Details,
		PositionX:   body.PositionX,
		PositionY:   body.PositionY,
	})
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tagJSON(tag)})
}

// Delete removes a tag.
func (h *TagHandler) Delete(c *gin.Context) {
	if _, ok := pathID(c, "id"); !ok {
		return
	}
	tagID, ok := pathID(c, "tagId")
	if !ok {
		return
	}
	removed, errDelete := h.store.DeleteTag(c.Request.Context(), tagID, CurrentUser(c).ID)
	if errDelete != nil {
		respondError(c, errDelete)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "tag not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
