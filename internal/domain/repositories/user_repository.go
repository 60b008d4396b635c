package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/pkg/utils"
)

// UserRepository defines user data operations. Score and balance changes are relative updates.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	// FindOtherByAccountNumber returns a user other than excludeID holding accountNumber
	FindOtherByAccountNumber(ctx context.Context, accountNumber string, excludeID uuid.UUID) (*entities.User, error)
	Flag(ctx context.Context, id uuid.UUID, scoreIncrement int) error
	// Ban with until nil is permanent
	Ban(ctx context.Context, id uuid.UUID, until *time.Time, reason string) error
	Unban(ctx context.Context, id uuid.UUID) error
	CreditWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	// DebitWallet reports false when the balance does not cover amount
	DebitWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
	UpdateBankDetails(ctx context.Context, id uuid.UUID, input entities.BankDetailsInput) error
	SetRecipientCode(ctx context.Context, id uuid.UUID, code string) error
	ListFlagged(ctx context.Context, pagination utils.PaginationParams) ([]*entities.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
