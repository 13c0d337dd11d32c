package reviews

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/pkg/common"
)

// ServiceInterface is the part of the service the handler needs
type ServiceInterface interface {
	EvaluateReview(ctx context.Context, reviewID uuid.UUID) (*EvaluationResult, error)
	FraudHealth(ctx context.Context) (*fraud.HealthStatus, error)
}

// Handler handles HTTP requests for review evaluation
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new reviews handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// EvaluateReview runs fraud evaluation for a stored review
func (h *Handler) EvaluateReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review id")
		return
	}

	result, err := h.service.EvaluateReview(c.Request.Context(), reviewID)
	if err != nil {
		respondError(c, err, "failed to evaluate review")
		return
	}

	common.SuccessResponse(c, result)
}

// FraudHealth proxies the fraud-scoring service health
func (h *Handler) FraudHealth(c *gin.Context) {
	status, err := h.service.FraudHealth(c.Request.Context())
	if err != nil {
		respondError(c, err, "fraud service unavailable")
		return
	}

	common.SuccessResponse(c, status)
}

// RegisterRoutes registers review evaluation routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews/:id/evaluate", h.EvaluateReview)
	rg.GET("/fraud/health", h.FraudHealth)
}

func respondError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
