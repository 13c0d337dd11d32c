package documents

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/middleware"
)

// ServiceInterface is the part of the service the handler needs
type ServiceInterface interface {
	VerifyDocument(ctx context.Context, documentID uuid.UUID) (*VerificationResult, error)
	AnalyzeText(ctx context.Context, text string, confidence float64) *AnalyzeTextResponse
}

// Handler handles HTTP requests for document verification
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new documents handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// VerifyDocument runs the verification pipeline for one document
func (h *Handler) VerifyDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid document id")
		return
	}

	result, err := h.service.VerifyDocument(c.Request.Context(), documentID)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to verify document")
		return
	}

	common.SuccessResponse(c, result)
}

// AnalyzeText analyses OCR text supplied by the caller
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req AnalyzeTextRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	common.SuccessResponse(c, h.service.AnalyzeText(c.Request.Context(), req.Text, req.Confidence))
}

// RegisterRoutes registers document routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/:id/verify", h.VerifyDocument)
		docs.POST("/analyze-text", h.AnalyzeText)
	}
}
