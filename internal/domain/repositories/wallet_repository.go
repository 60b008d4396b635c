package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// TopUpRepository defines wallet top-up operations
type TopUpRepository interface {
	Create(ctx context.Context, topUp *entities.TopUp) error
	GetByReference(ctx context.Context, reference string) (*entities.TopUp, error)
	// MarkCredited flips pending to credited and reports whether this call did it
	MarkCredited(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

// WithdrawalRepository defines payout operations
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entities.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error)
	MarkSent(ctx context.Context, id uuid.UUID, transferReference string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
