package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TopUpStatus represents the state of a wallet top-up
type TopUpStatus string

const (
	TopUpStatusPending  TopUpStatus = "pending"
	TopUpStatusCredited TopUpStatus = "credited"
	TopUpStatusFailed   TopUpStatus = "failed"
)

// TopUp binds a gateway reference to the user whose wallet it credits
type TopUp struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference"`
	Status     TopUpStatus     `json:"status"`
	CreditedAt null.Time       `json:"creditedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// WithdrawalStatus represents the state of a payout
type WithdrawalStatus string

const (
	WithdrawalStatusPending WithdrawalStatus = "pending"
	WithdrawalStatusSent    WithdrawalStatus = "sent"
	WithdrawalStatusFailed  WithdrawalStatus = "failed"
)

// Withdrawal is a payout of wallet funds to the user's bank account
type Withdrawal struct {
	ID                uuid.UUID        `json:"id"`
	UserID            uuid.UUID        `json:"userId"`
	Amount            decimal.Decimal  `json:"amount"`
	Status            WithdrawalStatus `json:"status"`
	TransferReference null.String      `json:"transferReference,omitempty"`
	FailureReason     string           `json:"failureReason,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// AmountInput represents a top-up or withdrawal amount
type AmountInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TopUpResult is returned after a top-up session has been opened
type TopUpResult struct {
	TopUp       *TopUp `json:"topUp"`
	RedirectURL string `json:"redirectUrl"`
}
