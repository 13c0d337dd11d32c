package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/crediscore/internal/ocr"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/eventbus"
	"github.com/richxcame/crediscore/pkg/logger"
	"github.com/richxcame/crediscore/pkg/storage"
	"go.uber.org/zap"
)

const defaultPresignTTL = 15 * time.Minute

// Service runs the document verification pipeline
type Service struct {
	repo       RepositoryInterface
	extractor  TextExtractor
	analyzer   DocumentAnalyzer
	storage    storage.Storage
	bus        eventbus.Bus
	presignTTL time.Duration
	now        func() time.Time
}

// ServiceOption configures optional collaborators
type ServiceOption func(*Service)

// WithStorage resolves private storage keys to presigned URLs
func WithStorage(store storage.Storage, presignTTL time.Duration) ServiceOption {
	return func(s *Service) {
		s.storage = store
		if presignTTL > 0 {
			s.presignTTL = presignTTL
		}
	}
}

// WithEventBus publishes document.verified events
func WithEventBus(bus eventbus.Bus) ServiceOption {
	return func(s *Service) {
		s.bus = bus
	}
}

// NewService creates a new documents service
func NewService(repo RepositoryInterface, extractor TextExtractor, analyzer DocumentAnalyzer, opts ...ServiceOption) *Service {
	s := &Service{
		repo:       repo,
		extractor:  extractor,
		analyzer:   analyzer,
		presignTTL: defaultPresignTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Verification pipeline
// ============================================================================

// VerifyDocument extracts, analyses and verifies a stored document and
// records the outcome on it.
func (s *Service) VerifyDocument(ctx context.Context, documentID uuid.UUID) (*VerificationResult, error) {
	log := logger.WithContext(ctx).With(zap.String("document_id", documentID.String()))

	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, common.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, common.NewNotFoundError("document not found", nil)
	}

	imageURL := s.resolveImageURL(ctx, doc)
	ocrResult, err := s.extractor.ExtractTextWithFallback(ctx, imageURL, deref(doc.FileType))
	if err != nil {
		if errors.Is(err, ocr.ErrEmptyImageURL) {
			return nil, common.NewBadRequestError("document has no image to verify", err)
		}
		return nil, common.NewInternalError("failed to extract document text", err)
	}

	analysis := s.analyzer.Analyze(ctx, ocrResult)
	verdict := Verify(ocrResult, analysis)
	verifiedAt := s.now().UTC()

	record := &VerificationRecord{
		DocumentID:        doc.ID,
		OCRText:           ocrResult.Text,
		OCRConfidence:     ocrResult.Confidence,
		Analysis:          analysis,
		AuthenticityScore: verdict.Confidence,
		IsAuthentic:       verdict.IsAuthentic,
		IsVerified:        verdict.IsAuthentic && analysis.IsValid,
		VerifiedAt:        verifiedAt,
	}
	if err := s.repo.SaveVerification(ctx, record); err != nil {
		return nil, common.NewInternalError("failed to save verification", err)
	}

	applyRecord(doc, record)
	recordVerification(verdict.IsAuthentic)
	log.Info("document verified",
		zap.String("document_type", string(analysis.DocumentType)),
		zap.String("source", analysis.Source),
		zap.Int("authenticity_score", verdict.Confidence),
		zap.Bool("authentic", verdict.IsAuthentic),
	)

	if record.IsVerified {
		s.publishVerified(ctx, doc)
	}

	return &VerificationResult{
		Document: doc,
		OCR:      ocrResult,
		Analysis: analysis,
		Verdict:  verdict,
	}, nil
}

// AnalyzeText analyses text that was extracted outside the pipeline
func (s *Service) AnalyzeText(ctx context.Context, text string, confidence float64) *AnalyzeTextResponse {
	result := &ocr.OCRResult{Text: text, Confidence: clampFloat(confidence, 0, 100)}
	analysis := s.analyzer.Analyze(ctx, result)
	return &AnalyzeTextResponse{
		Analysis: analysis,
		Verdict:  Verify(result, analysis),
	}
}

func (s *Service) resolveImageURL(ctx context.Context, doc *BusinessDocument) string {
	key := strings.TrimSpace(deref(doc.StorageKey))
	if key == "" || s.storage == nil {
		return doc.FileURL
	}

	presigned, err := s.storage.GetPresignedDownloadURL(ctx, key, s.presignTTL)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to presign document image, using stored url",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
		return doc.FileURL
	}
	return presigned.URL
}

func (s *Service) publishVerified(ctx context.Context, doc *BusinessDocument) {
	if s.bus == nil {
		return
	}

	evt := eventbus.NewEvent(eventbus.SubjectDocumentVerified, doc.ID.String())
	evt.BusinessID = doc.BusinessID.String()
	if err := s.bus.Publish(ctx, eventbus.SubjectDocumentVerified, evt); err != nil {
		logger.WithContext(ctx).Warn("failed to publish document.verified",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
}

func applyRecord(doc *BusinessDocument, record *VerificationRecord) {
	text := record.OCRText
	confidence := record.OCRConfidence
	score := record.AuthenticityScore
	authentic := record.IsAuthentic

	doc.OCRText = &text
	doc.OCRConfidence = &confidence
	doc.AuthenticityScore = &score
	doc.IsAuthentic = &authentic
	doc.IsVerified = record.IsVerified
	if record.IsVerified {
		at := record.VerifiedAt
		doc.VerifiedAt = &at
	}
	doc.UpdatedAt = record.VerifiedAt
}
