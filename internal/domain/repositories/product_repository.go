package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/pkg/utils"
)

// ProductRepository defines listing data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	// Update and Delete are scoped to the seller and return ErrNotFound for foreign products
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id, sellerID uuid.UUID) error
	List(ctx context.Context, sellerID *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Product, int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// RecentPricesByTitle returns up to limit prices of products whose lowercased title contains fragment
	RecentPricesByTitle(ctx context.Context, fragment string, limit int) ([]decimal.Decimal, error)
}
