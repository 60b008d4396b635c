package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketPrice is a reference price band for a staple item
type MarketPrice struct {
	ID        uuid.UUID       `json:"id"`
	ItemName  string          `json:"itemName"`
	MinPrice  decimal.Decimal `json:"minPrice"`
	MaxPrice  decimal.Decimal `json:"maxPrice"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// MarketPriceInput represents one seed row
type MarketPriceInput struct {
	ItemName string          `json:"itemName" binding:"required"`
	MinPrice decimal.Decimal `json:"minPrice" binding:"required"`
	MaxPrice decimal.Decimal `json:"maxPrice" binding:"required"`
	AvgPrice decimal.Decimal `json:"avgPrice" binding:"required"`
}
