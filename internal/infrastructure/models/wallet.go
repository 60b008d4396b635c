package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TopUp struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Reference  string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'"`
	CreditedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (TopUp) TableName() string {
	return "wallet_topups"
}

type Withdrawal struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'pending'"`
	TransferReference *string         `gorm:"type:varchar(100)"`
	FailureReason     string          `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
