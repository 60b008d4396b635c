package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// MarketPriceRepository implements reference price operations
type MarketPriceRepository struct {
	db *gorm.DB
}

// NewMarketPriceRepository creates a new market price repository
func NewMarketPriceRepository(db *gorm.DB) *MarketPriceRepository {
	return &MarketPriceRepository{db: db}
}

// List returns every reference in id order. Ids are v7 so this is insertion order.
func (r *MarketPriceRepository) List(ctx context.Context) ([]*entities.MarketPrice, error) {
	var priceModels []models.MarketPrice
	if err := GetDB(ctx, r.db).Order("id ASC").Find(&priceModels).Error; err != nil {
		return nil, err
	}

	prices := make([]*entities.MarketPrice, 0, len(priceModels))
	for i := range priceModels {
		m := &priceModels[i]
		prices = append(prices, &entities.MarketPrice{
			ID:        m.ID,
			ItemName:  m.ItemName,
			MinPrice:  m.MinPrice,
			MaxPrice:  m.MaxPrice,
			AvgPrice:  m.AvgPrice,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return prices, nil
}

// Upsert inserts a reference or refreshes the band of an existing item name
func (r *MarketPriceRepository) Upsert(ctx context.Context, price *entities.MarketPrice) error {
	if price.ID == uuid.Nil {
		price.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	m := &models.MarketPrice{
		ID:        price.ID,
		ItemName:  price.ItemName,
		MinPrice:  price.MinPrice,
		MaxPrice:  price.MaxPrice,
		AvgPrice:  price.AvgPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_price", "max_price", "avg_price", "updated_at"}),
	}).Create(m).Error
}
