package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/server/models"
)

type modelResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Version     string    `json:"version"`
	Status      string    `json:"status"`
	Description *string   `json:"description"`
	ArtifactKey *string   `json:"artifact_key"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toModelResponse(m *models.Model) modelResponse {
	return modelResponse{
		ID:          m.ID,
		Name:        m.Name,
		Type:        m.Type,
		Version:     m.Version,
		Status:      m.Status,
		Description: m.Description,
		ArtifactKey: m.ArtifactKey,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type createModelRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Version     string  `json:"version" binding:"required"`
	Description *string `json:"description"`
}

func (s *Server) handleCreateModel(c *gin.Context) {
	var req createModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "name, type and version are required",
		})
		return
	}

	model, err := s.models.Create(c.Request.Context(), principal(c), req.Name, req.Type, req.Version, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toModelResponse(model))
}

func (s *Server) handleListModels(c *gin.Context) {
	items, err := s.models.List(c.Request.Context(), principal(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]modelResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toModelResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetModel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	model, err := s.models.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toModelResponse(model))
}

type updateModelRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Version     *string `json:"version"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

func (s *Server) handleUpdateModel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "invalid request body",
		})
		return
	}

	model, err := s.models.Update(c.Request.Context(), principal(c), id, req.Name, req.Type, req.Version, req.Status, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toModelResponse(model))
}

func (s *Server) handleDeleteModel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.models.Delete(c.Request.Context(), principal(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleArtifactUploadURL(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	url, err := s.models.GetArtifactUploadURL(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": url})
}

func (s *Server) handleArtifactDownloadURL(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	url, err := s.models.GetArtifactDownloadURL(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"download_url": url})
}
