package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paintsnap/server/internal/store"
)

// ProjectHandler serves project endpoints.
type ProjectHandler struct {
	store *store.Store
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(st *store.Store) *ProjectHandler {
	return &ProjectHandler{store: st}
}

// createProjectRequest defines the request body for project creation.
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

// Create creates a project for the caller.
func (h *ProjectHandler) Create(c *gin.Context) {
	var body createProjectRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	project, errCreate := h.store.CreateProject(c.Request.Context(), CurrentUser(c).ID, body.Name, body.Description, body.IsDefault)
	if errCreate != nil {
		respondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": projectJSON(project)})
}

// List returns the caller's projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, errList := h.store.ListProjects(c.Request.Context(), CurrentUser(c).ID)
	if errList != nil {
		respondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(projects))
	for i := range projects {
		out = append(out, projectJSON(&projects[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// Get returns one project.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	project, errGet := h.store.GetProject(c.Request.Context(), id, CurrentUser(c).ID)
	if errGet != nil {
		respondError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": projectJSON(project)})
}

// updateProjectRequest defines the request body for project updates.
type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsDefault   *bool   `json:"is_default"`
}

// Update applies a partial update to a project.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body updateProjectRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	project, errUpdate := h.store.UpdateProject(c.Request.Context(), id, CurrentUser(c).ID, store.ProjectPatch{
		Name:        body.Name,
		Description: body.Description,
		IsDefault:   body.IsDefault,
	})
	if errUpdate != nil {
		respondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": projectJSON(project)})
}

// Delete removes a project and everything under it.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, errDelete := h.store.DeleteProject(c.Request.Context(), id, CurrentUser(c).ID)
	if errDelete != nil {
		respondError(c, errDelete)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// pathID parses a numeric path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}
