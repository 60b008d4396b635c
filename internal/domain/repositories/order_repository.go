package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/pkg/utils"
)

// OrderRepository defines escrow data operations. Every transition is a conditional update
// that reports whether it changed a row.
type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	GetByReference(ctx context.Context, reference string) (*entities.Order, error)
	List(ctx context.Context, filter entities.OrderListFilter, pagination utils.PaginationParams) ([]*entities.Order, int64, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, completion entities.OrderCompletion) (bool, error)
	ReserveCodeAttempt(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	OpenDispute(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	ResolveDispute(ctx context.Context, id uuid.UUID) (bool, error)
	// ListMatured returns shipped, undisputed orders delivered at or before cutoff
	ListMatured(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Order, error)
}
