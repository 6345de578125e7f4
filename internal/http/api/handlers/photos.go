package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/quota"
	"github.com/paintsnap/server/internal/store"
)

// maxUploadSize is the hard ceiling for uploaded images.
const maxUploadSize = 10 << 20

// allowedImageTypes is the MIME allow-list for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotoHandler serves photo endpoints.
type PhotoHandler struct {
	store *store.Store
	quota *quota.Enforcer
}

// NewPhotoHandler constructs a PhotoHandler.
func NewPhotoHandler(st *store.Store, enforcer *quota.Enforcer) *PhotoHandler {
	return &PhotoHandler{store: st, quota: enforcer}
}

// Create uploads a photo into an area. Multipart form: `file` holds the
// image, `area_id` the target area, `name` an optional display name.
func (h *PhotoHandler) Create(c *gin.Context) {
	areaID, errParse := strconv.ParseUint(strings.TrimSpace(c.PostForm("area_id")), 10, 64)
	if errParse != nil || areaID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid area_id"})
		return
	}

	fileHeader, errFile := c.FormFile("file")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing file"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file exceeds 10MB limit"})
		return
	}

	file, errOpen := fileHeader.Open()
	if errOpen != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
		return
	}
	defer file.Close()

	// Sniff the real content type rather than trusting the part header.
	head := make([]byte, 512)
	n, errRead := file.Read(head)
	if errRead != nil && errRead != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported image type; use JPEG, PNG, or WebP"})
		return
	}
	body := io.MultiReader(strings.NewReader(string(head[:n])), file)

	user := CurrentUser(c)
	if errQuota := h.quota.CheckPhotoCreate(c.Request.Context(), user, areaID); errQuota != nil {
		respondError(c, errQuota)
		return
	}

	photo, errCreate := h.store.CreatePhoto(c.Request.Context(), user.ID, store.PhotoUpload{
		AreaID:      areaID,
		Name:        c.PostForm("name"),
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        body,
	})
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo": photoJSON(photo, 0)})
}

// List returns the caller's photos, optionally scoped to one area.
func (h *PhotoHandler) List(c *gin.Context) {
	user := CurrentUser(c)
	ctx := c.Request.Context()

	if areaQ := strings.TrimSpace(c.Query("area_id")); areaQ != "" {
		areaID, errParse := strconv.ParseUint(areaQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid area_id"})
			return
		}
		photos, errList := h.store.ListPhotosByArea(ctx, areaID, user.ID)
		if errList != nil {
			respondError(c, errList)
			return
		}
		c.JSON(http.StatusOK, gin.H{"photos": photoSummariesJSON(photos)})
		return
	}

	photos, errList := h.store.ListPhotosByOwner(ctx, user.ID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photoSummariesJSON(photos)})
}

// Get returns one photo with its tag count.
func (h *PhotoHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	photo, errGet := h.store.GetPhoto(c.Request.Context(), id, CurrentUser(c).ID)
	if errGet != nil {
		respondError(c, errGet)
		return
	}
	count, errCount := h.store.CountTagsOnPhoto(c.Request.Context(), photo.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photoJSON(photo, count)})
}

// updatePhotoRequest defines the request body for photo updates.
type updatePhotoRequest struct {
	Name *string `json:"name"`
}

// Update renames a photo.
func (h *PhotoHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body updatePhotoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	photo, errUpdate := h.store.UpdatePhoto(c.Request.Context(), id, CurrentUser(c).ID, store.PhotoPatch{Name: body.Name})
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	count, errCount := h.store.CountTagsOnPhoto(c.Request.Context(), photo.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photoJSON(photo, count)})
}

// movePhotoRequest defines the request body for moving a photo.
type movePhotoRequest struct {
	AreaID uint64 `json:"area_id"`
}

// Move reassigns a photo to another area of the same owner.
func (h *PhotoHandler) Move(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body movePhotoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.AreaID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid area_id"})
		return
	}
	photo, errMove := h.store.MovePhoto(c.Request.Context(), id, CurrentUser(c).ID, body.AreaID)
	if errMove != nil {
		respondError(c, errMove)
		return
	}
	count, errCount := h.store.CountTagsOnPhoto(c.Request.Context(), photo.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photoJSON(photo, count)})
}

// Delete removes a photo and its tags.
func (h *PhotoHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, errDelete := h.store.DeletePhoto(c.Request.Context(), id, CurrentUser(c).ID)
	if errDelete != nil {
		respondError(c, errDelete)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Image streams the raw image bytes. Public by design: no session and no
// ownership check.
func (h *PhotoHandler) Image(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	body, contentType, errOpen := h.store.OpenPhotoImage(c.Request.Context(), id)
	if errOpen != nil {
		respondError(c, errOpen)
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Status(http.StatusOK)
	if _, errCopy := io.Copy(c.Writer, body); errCopy != nil {
		// Headers are gone; nothing left to do but abort the stream.
		c.Abort()
	}
}
