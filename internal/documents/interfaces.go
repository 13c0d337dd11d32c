package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/ocr"
)

// RepositoryInterface defines the persistence operations of the verification pipeline
type RepositoryInterface interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*BusinessDocument, error)
	SaveVerification(ctx context.Context, record *VerificationRecord) error
}

// TextExtractor is the OCR port used by the pipeline
type TextExtractor interface {
	ExtractTextWithFallback(ctx context.Context, imageURL, fileHint string) (*ocr.OCRResult, error)
}

// DocumentAnalyzer turns OCR output into a scored analysis
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, result *ocr.OCRResult) *DocumentAnalysis
}
