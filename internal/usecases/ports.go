package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
)

// PaymentGateway opens checkout sessions and verifies references
type PaymentGateway interface {
	Initialize(ctx context.Context, amount decimal.Decimal, reference, email string) (string, error)
	Verify(ctx context.Context, reference string) (*entities.GatewayVerification, error)
}

// PayoutGateway moves money from the platform balance to a bank account
type PayoutGateway interface {
	CreateRecipient(ctx context.Context, name, accountNumber, bankCode string) (string, error)
	Transfer(ctx context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error)
}

// Notifier delivers a message out of band. It reports delivery and never fails the caller.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// PostRateLimiter backs the spam rule. Allow records now when it returns true.
type PostRateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}
