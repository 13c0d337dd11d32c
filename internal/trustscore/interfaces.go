package trustscore

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the persistence operations the trust score service needs
type RepositoryInterface interface {
	GetTrustInputs(ctx context.Context, businessID uuid.UUID) (*TrustInputs, error)
	UpsertTrustScore(ctx context.Context, score *TrustScore) error
	GetTrustScore(ctx context.Context, businessID uuid.UUID) (*TrustScore, error)
}

// CacheInterface stores computed trust scores for fast reads
type CacheInterface interface {
	Get(ctx context.Context, businessID uuid.UUID) (*TrustScore, error)
	Set(ctx context.Context, score *TrustScore) error
	Invalidate(ctx context.Context, businessID uuid.UUID) error
}
