package reputation

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/middleware"
	"github.com/richxcame/crediscore/pkg/pagination"
)

// ServiceInterface is the part of the service the handler needs
type ServiceInterface interface {
	AnalyzeUserReviewPatterns(ctx context.Context, userID uuid.UUID) (*ReviewPatternAnalysis, error)
	ShouldFlagUser(ctx context.Context, userID uuid.UUID) (*FlaggingDecision, error)
	FlagUser(ctx context.Context, userID uuid.UUID, reason string, level RiskLevel) (*FlagResult, error)
	ReduceCredibilityForSpam(ctx context.Context, userID uuid.UUID) (*SpamPenaltyResult, error)
	ListFlaggedUsers(ctx context.Context, limit, offset int) ([]*FlaggedUser, int64, error)
}

// Handler handles HTTP requests for user reputation
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new reputation handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetReviewPatterns returns the user's review pattern analysis
func (h *Handler) GetReviewPatterns(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeUserReviewPatterns(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to analyze review patterns")
		return
	}

	common.SuccessResponse(c, analysis)
}

// GetFlaggingDecision returns whether the user should be flagged
func (h *Handler) GetFlaggingDecision(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	decision, err := h.service.ShouldFlagUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to evaluate user")
		return
	}

	common.SuccessResponse(c, decision)
}

// FlagUser flags a user manually
func (h *Handler) FlagUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req FlagUserRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	result, err := h.service.FlagUser(c.Request.Context(), userID, req.Reason, req.RiskLevel)
	if err != nil {
		respondError(c, err, "failed to flag user")
		return
	}

	common.SuccessResponse(c, result)
}

// ApplySpamPenalty runs the spam penalty path for a user
func (h *Handler) ApplySpamPenalty(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	result, err := h.service.ReduceCredibilityForSpam(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to apply spam penalty")
		return
	}

	common.SuccessResponse(c, result)
}

// ListFlaggedUsers lists flagged users with pagination
func (h *Handler) ListFlaggedUsers(c *gin.Context) {
	params := pagination.ParseParams(c)

	users, total, err := h.service.ListFlaggedUsers(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "failed to list flagged users")
		return
	}

	common.SuccessResponseWithMeta(c, users, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// RegisterRoutes registers reputation routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/:id/review-patterns", h.GetReviewPatterns)
		users.GET("/:id/flagging", h.GetFlaggingDecision)
		users.POST("/:id/flag", h.FlagUser)
		users.POST("/:id/spam-penalty", h.ApplySpamPenalty)
	}

	admin := rg.Group("/admin")
	{
		admin.GET("/flagged-users", h.ListFlaggedUsers)
	}
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
