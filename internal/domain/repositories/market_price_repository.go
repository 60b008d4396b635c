package repositories

import (
	"context"

	"campus-market.backend/internal/domain/entities"
)

// MarketPriceRepository defines reference price operations
type MarketPriceRepository interface {
	// List returns references in a stable id order
	List(ctx context.Context) ([]*entities.MarketPrice, error)
	Upsert(ctx context.Context, price *entities.MarketPrice) error
}
