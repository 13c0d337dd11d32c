package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/crediscore/pkg/database"
)

// Repository handles business document persistence
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new documents repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetDocument loads a document record. A missing document yields nil, nil.
func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*BusinessDocument, error) {
	query := `
		SELECT id, business_id, document_type, file_url, storage_key, file_type,
			   ocr_text, ocr_confidence, authenticity_score, is_authentic,
			   is_verified, verified_at, created_at, updated_at
		FROM business_documents
		WHERE id = $1
	`

	doc := &BusinessDocument{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.BusinessID, &doc.DocumentType, &doc.FileURL, &doc.StorageKey, &doc.FileType,
		&doc.OCRText, &doc.OCRConfidence, &doc.AuthenticityScore, &doc.IsAuthentic,
		&doc.IsVerified, &doc.VerifiedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// SaveVerification writes the pipeline output onto the document record
func (r *Repository) SaveVerification(ctx context.Context, record *VerificationRecord) error {
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		UPDATE business_documents
		SET ocr_text = $2,
			ocr_confidence = $3,
			analysis = $4,
			authenticity_score = $5,
			is_authentic = $6,
			is_verified = $7,
			verified_at = CASE WHEN $7 THEN $8 ELSE verified_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	err = database.WithRetry(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query,
			record.DocumentID,
			record.OCRText,
			record.OCRConfidence,
			analysisJSON,
			record.AuthenticityScore,
			record.IsAuthentic,
			record.IsVerified,
			record.VerifiedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("document %s not found", record.DocumentID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save verification: %w", err)
	}

	return nil
}
