package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Username       string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          *string         `gorm:"type:varchar(255);uniqueIndex"`
	Role           string          `gorm:"type:varchar(20);not null;default:'buyer'"`
	WalletBalance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	SuspicionScore int             `gorm:"not null;default:0"`
	IsFlagged      bool            `gorm:"not null;default:false;index"`
	IsBanned       bool            `gorm:"not null;default:false"`
	IsBlocked      bool            `gorm:"not null;default:false"` // legacy, derived from the ban fields
	BanExpires     *time.Time
	BanReason      string  `gorm:"type:varchar(255)"`
	BankName       string  `gorm:"type:varchar(100)"`
	AccountNumber  *string `gorm:"type:varchar(20);uniqueIndex"`
	BankCode       string  `gorm:"type:varchar(20)"`
	RecipientCode  *string `gorm:"type:varchar(100)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
