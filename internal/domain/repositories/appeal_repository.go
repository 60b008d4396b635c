package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/pkg/utils"
)

// AppealRepository defines ban appeal operations
type AppealRepository interface {
	Create(ctx context.Context, appeal *entities.Appeal) error
	GetOpenByUser(ctx context.Context, userID uuid.UUID) (*entities.Appeal, error)
	ResolveOpenByUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	List(ctx context.Context, status entities.AppealStatus, pagination utils.PaginationParams) ([]*entities.Appeal, int64, error)
}
