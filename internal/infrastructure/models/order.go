package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BuyerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	ServiceFee       decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	SellerAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status           string          `gorm:"type:varchar(32);not null;index"`
	BuyerConfirmed   bool            `gorm:"not null;default:false"`
	SellerConfirmed  bool            `gorm:"not null;default:false"`
	EscrowReleased   bool            `gorm:"not null;default:false"`
	Disputed         bool            `gorm:"not null;default:false"`
	DisputeReason    string          `gorm:"type:text"`
	DeliveryCodeHash string          `gorm:"type:varchar(100);not null"`
	CodeAttempts     int             `gorm:"not null;default:0"`
	PaymentReference string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	DeliveredAt      *time.Time      `gorm:"index"`
	CodeConfirmedAt  *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
