package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MarketPrice struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemName  string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	MinPrice  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	MaxPrice  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	AvgPrice  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
