package reputation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines the persistence operations the reputation service needs
type RepositoryInterface interface {
	GetUserReviewsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]ReviewRecord, error)
	GetUnverifiedReviewCount(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	GetFlagStatus(ctx context.Context, userID uuid.UUID) (*FlagStatus, error)
	FlagUser(ctx context.Context, userID uuid.UUID, reason string, level RiskLevel, penalty int, at time.Time) (*FlagResult, error)
	DeductReputation(ctx context.Context, userID uuid.UUID, penalty int) (*int, error)
	ListFlaggedUsers(ctx context.Context, limit, offset int) ([]*FlaggedUser, int64, error)
}
