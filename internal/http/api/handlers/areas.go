package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/quota"
	"github.com/paintsnap/server/internal/store"
)

// AreaHandler serves area endpoints.
type AreaHandler struct {
	store *store.Store
	quota *quota.Enforcer
}

// NewAreaHandler constructs an AreaHandler.
func NewAreaHandler(st *store.Store, enforcer *quota.Enforcer) *AreaHandler {
	return &AreaHandler{store: st, quota: enforcer}
}

// createAreaRequest defines the request body for area creation.
type createAreaRequest struct {
	Name      string `json:"name"`
	ProjectID uint64 `json:"project_id"`
}

// Create creates an area, gated by the caller's plan quota. Omitting
// project_id targets the default project.
func (h *AreaHandler) Create(c *gin.Context) {
	var body createAreaRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	user := CurrentUser(c)
	if errQuota := h.quota.CheckAreaCreate(c.Request.Context(), user); errQuota != nil {
		respondError(c, errQuota)
		return
	}
	area, errCreate := h.store.CreateArea(c.Request.Context(), user.ID, body.ProjectID, body.Name)
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"area": areaJSON(area, 0)})
}

// List returns the caller's areas alphabetically, with photo counts and
// an optional name search.
func (h *AreaHandler) List(c *gin.Context) {
	areas, errList := h.store.ListAreas(c.Request.Context(), CurrentUser(c).ID, c.Query("search"))
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(areas))
	for i := range areas {
		out = append(out, areaJSON(&areas[i].Area, areas[i].PhotoCount))
	}
	c.JSON(http.StatusOK, gin.H{"areas": out})
}

// Get returns one area with its photo count.
func (h *AreaHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	area, errGet := h.store.GetArea(c.Request.Context(), id, CurrentUser(c).ID)
	if errGet != nil {
		respondError(c, errGet)
		return
	}
	count, errCount := h.store.CountPhotosInArea(c.Request.Context(), area.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": areaJSON(area, count)})
}

// updateAreaRequest defines the request body for area updates.
type updateAreaRequest struct {
	Name *string `json:"name"`
}

// Update renames an area.
func (h *AreaHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body updateAreaRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	area, errUpdate := h.store.UpdateArea(c.Request.Context(), id, CurrentUser(c).ID, store.AreaPatch{Name: body.Name})
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	count, errCount := h.store.CountPhotosInArea(c.Request.Context(), area.ID)
	if errCount != nil {
		respondError(c, errCount)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": areaJSON(area, count)})
}

// Delete removes an area and every photo and tag under it.
func (h *AreaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, errDelete := h.store.DeleteArea(c.Request.Context(), id, CurrentUser(c).ID)
	if errDelete != nil {
		respondError(c, errDelete)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "area not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListPhotos returns an area's photos newest-first.
func (h *AreaHandler) ListPhotos(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	photos, errList := h.store.ListPhotosByArea(c.Request.Context(), id, CurrentUser(c).ID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photoSummariesJSON(photos)})
}
