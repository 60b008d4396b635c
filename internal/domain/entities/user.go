package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

// User is a marketplace participant: wallet holder, fraud subject and payout target
type User struct {
	ID             uuid.UUID       `json:"id"`
	Username       string          `json:"username"`
	Email          null.String     `json:"email,omitempty"`
	Role           UserRole        `json:"role"`
	WalletBalance  decimal.Decimal `json:"walletBalance"`
	SuspicionScore int             `json:"suspicionScore"`
	IsFlagged      bool            `json:"isFlagged"`
	IsBanned       bool            `json:"isBanned"`
	BanExpires     null.Time       `json:"banExpires,omitempty"`
	BanReason      string          `json:"banReason,omitempty"`
	BankName       string          `json:"bankName,omitempty"`
	AccountNumber  null.String     `json:"accountNumber,omitempty"`
	BankCode       string          `json:"bankCode,omitempty"`
	RecipientCode  null.String     `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Access computes the user's access status at now
func (u *User) Access(now time.Time) AccessStatus {
	return ComputeAccess(u.IsBanned, u.BanExpires, u.BanReason, now)
}

// HasBankDetails reports whether payouts can be routed to the user
func (u *User) HasBankDetails() bool {
	return u.AccountNumber.Valid && u.AccountNumber.String != "" && u.BankCode != ""
}

// BankDetailsInput represents input for updating payout details
type BankDetailsInput struct {
	BankName      string `json:"bankName" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required,numeric,min=10,max=10"`
	BankCode      string `json:"bankCode" binding:"required"`
}

// BanInput represents a manual admin ban. Days of zero bans permanently.
type BanInput struct {
	Days   int    `json:"days" binding:"min=0"`
	Reason string `json:"reason" binding:"required"`
}

// AppealInput represents a banned user's appeal
type AppealInput struct {
	Message string `json:"message" binding:"required,min=10,max=2000"`
}
