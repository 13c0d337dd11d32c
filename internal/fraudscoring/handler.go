package fraudscoring

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// Version is reported by the service descriptor
const Version = "1.0.0"

// Handler serves the fraud-scoring endpoints
type Handler struct {
	scorer *Scorer
}

// NewHandler creates a new fraud-scoring handler
func NewHandler(scorer *Scorer) *Handler {
	return &Handler{scorer: scorer}
}

// DetectFraud scores one review. The body is answered bare, not wrapped in
// the success envelope, because callers decode the verdict directly.
func (h *Handler) DetectFraud(c *gin.Context) {
	var req fraud.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if strings.TrimSpace(req.BusinessDetails.Name) == "" {
		common.ErrorResponse(c, http.StatusUnprocessableEntity, "business_details.name is required")
		return
	}

	verdict := h.scorer.Score(&req)
	recordScore(verdict.IsFraudulent)

	logger.WithContext(c.Request.Context()).Info("fraud detection completed",
		zap.Int("risk_score", verdict.RiskScore),
		zap.Bool("fraudulent", verdict.IsFraudulent),
		zap.Int("reasons", len(verdict.FraudReasons)),
	)

	c.JSON(http.StatusOK, verdict)
}

// Health reports liveness in the format the detector client expects
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, fraud.HealthStatus{
		Status:    "healthy",
		Timestamp: h.scorer.now().Format(time.RFC3339),
	})
}

// Root describes the service
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "CrediScore Fraud Detection Service",
		"version": Version,
		"endpoints": gin.H{
			"health":       "/health",
			"detect_fraud": "/detect-fraud",
		},
	})
}

// RegisterRoutes registers the scoring routes at the router root
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/detect-fraud", h.DetectFraud)
}
