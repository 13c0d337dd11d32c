package trustscore

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/common"
)

// ServiceInterface is the part of the service the handler needs
type ServiceInterface interface {
	CalculateTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error)
	GetTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error)
}

// Handler handles HTTP requests for trust scores
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new trust score handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// CalculateTrustScore recomputes a business's trust score
func (h *Handler) CalculateTrustScore(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid business id")
		return
	}

	score, err := h.service.CalculateTrustScore(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err, "failed to calculate trust score")
		return
	}

	common.SuccessResponse(c, score)
}

// GetTrustScore returns a business's current trust score
func (h *Handler) GetTrustScore(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid business id")
		return
	}

	score, err := h.service.GetTrustScore(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err, "failed to get trust score")
		return
	}

	common.SuccessResponse(c, score)
}

// RegisterRoutes registers trust score routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	businesses := rg.Group("/businesses")
	{
		businesses.POST("/:id/trust-score", h.CalculateTrustScore)
		businesses.GET("/:id/trust-score", h.GetTrustScore)
	}
}

func respondError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
