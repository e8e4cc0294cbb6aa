package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type projectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// idParam parses the :id route segment. A non-numeric id is a request-shape
// problem, reported as 422 before any service call.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "name is required",
		})
		return
	}

	project, err := s.projects.Create(c.Request.Context(), principal(c), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.projects.List(c.Request.Context(), principal(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	project, err := s.projects.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "invalid request body",
		})
		return
	}

	project, err := s.projects.Update(c.Request.Context(), principal(c), id, req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.projects.Delete(c.Request.Context(), principal(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
