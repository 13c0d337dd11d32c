package documents

import (
	"context"
	"strings"
	"time"

	"github.com/richxcame/crediscore/internal/llm"
	"github.com/richxcame/crediscore/internal/ocr"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

const (
	minUsableTextLength  = 10
	localBaseConfidence  = 55
	ocrFailureScore      = 30
	manualReviewWarning  = "Text could not be extracted from the document; manual review required"
	localFallbackWarning = "Automated analysis unavailable; fields were extracted locally"
)

var ocrFailureMarkers = []string{
	"OCR_FAILED",
	"OCR processing failed",
	"Unable to extract",
	"No text detected",
}

// Analyzer turns OCR text into a validated DocumentAnalysis
type Analyzer struct {
	completer llm.Completer
	now       func() time.Time
}

// NewAnalyzer creates an analyzer. A nil completer always uses local extraction.
func NewAnalyzer(completer llm.Completer) *Analyzer {
	return &Analyzer{completer: completer, now: time.Now}
}

// Analyze classifies the document, extracts its fields and scores it.
// It never fails: completion errors fall back to local extraction.
func (a *Analyzer) Analyze(ctx context.Context, result *ocr.OCRResult) *DocumentAnalysis {
	text := ""
	confidence := 0.0
	if result != nil {
		text = result.Text
		confidence = result.Confidence
	}

	if IsOCRFailure(text) {
		return ocrFailureAnalysis()
	}

	analysis := a.extract(ctx, text, confidence)

	// keyword scans back up whatever the completion declared
	analysis.FraudIndicators = mergeUnique(analysis.FraudIndicators, ScanFraudKeywords(text))
	analysis.SecurityFeatures = mergeUnique(analysis.SecurityFeatures, ScanSecurityFeatures(text))

	validation := Validate(ValidationInput{
		Data:             analysis.ExtractedData,
		FraudIndicators:  analysis.FraudIndicators,
		SecurityFeatures: analysis.SecurityFeatures,
		OCRConfidence:    confidence,
		Now:              a.now(),
	})

	analysis.IsValid = validation.IsValid
	analysis.AuthenticityScore = validation.AuthenticityScore
	analysis.ValidationErrors = validation.Errors
	analysis.Warnings = append(analysis.Warnings, validation.Warnings...)
	analysis.VerificationChecklist = validation.Checklist

	return analysis
}

func (a *Analyzer) extract(ctx context.Context, text string, ocrConfidence float64) *DocumentAnalysis {
	if a.completer == nil {
		return localAnalysis(text)
	}

	reply, err := a.completer.Complete(ctx, systemPrompt, buildUserPrompt(text))
	if err != nil {
		logger.WithContext(ctx).Warn("document completion failed, using local extraction", zap.Error(err))
		return localAnalysis(text)
	}

	parsed, err := parseAnalysisResponse(reply)
	if err != nil {
		logger.WithContext(ctx).Warn("document completion unparseable, using local extraction", zap.Error(err))
		return localAnalysis(text)
	}

	confidence := clampFloat(ocrConfidence, 0, 100)
	if parsed.confidence != nil {
		confidence = *parsed.confidence
	}

	return &DocumentAnalysis{
		DocumentType:     parsed.documentType,
		ExtractedData:    parsed.data,
		Confidence:       confidence,
		FraudIndicators:  parsed.fraudIndicators,
		SecurityFeatures: parsed.securityFeatures,
		Warnings:         []string{},
		Source:           SourceAI,
	}
}

func localAnalysis(text string) *DocumentAnalysis {
	return &DocumentAnalysis{
		DocumentType:  ClassifyDocument(text),
		ExtractedData: ExtractFields(text),
		Confidence:    localBaseConfidence,
		Warnings:      []string{localFallbackWarning},
		Source:        SourceLocal,
	}
}

// IsOCRFailure reports whether text is too short or carries a provider failure marker
func IsOCRFailure(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minUsableTextLength {
		return true
	}
	for _, marker := range ocrFailureMarkers {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	return false
}

// ocrFailureAnalysis does not block the upload: unreadable text is not evidence of fraud
func ocrFailureAnalysis() *DocumentAnalysis {
	return &DocumentAnalysis{
		DocumentType:      TypeUnknown,
		IsValid:           true,
		AuthenticityScore: ocrFailureScore,
		ValidationErrors:  []string{},
		Warnings:          []string{manualReviewWarning},
		FraudIndicators:   []string{},
		SecurityFeatures:  []string{},
		Source:            SourceOCRFailure,
	}
}
