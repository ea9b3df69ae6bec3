package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
	"github.com/mgonzalezcanudas/print3dhood/internal/usecase"
)

// ModelHandler exposes the generation pipeline over HTTP.
type ModelHandler struct {
	useCase usecase.ModelUseCase
	log     *zap.Logger
}

// NewModelHandler creates the handler.
func NewModelHandler(useCase usecase.ModelUseCase, log *zap.Logger) *ModelHandler {
	return &ModelHandler{useCase: useCase, log: log}
}

// PostModel handles POST /api/models.
func (h *ModelHandler) PostModel(c *gin.Context) {
	var req model.ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	artifact, err := h.useCase.Generate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// PostPreview handles POST /api/models/preview.
func (h *ModelHandler) PostPreview(c *gin.Context) {
	var req model.ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	preview, err := h.useCase.Preview(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// respondError maps pipeline errors onto HTTP statuses.
func (h *ModelHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrEmptyResult):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrTooManyFeatures):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Error("model generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
