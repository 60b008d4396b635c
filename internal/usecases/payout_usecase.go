package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
)

const withdrawalReason = "Campus Market wallet withdrawal"

// PayoutUsecase moves wallet balance to the user's bank account
type PayoutUsecase struct {
	userRepo       repositories.UserRepository
	withdrawalRepo repositories.WithdrawalRepository
	uow            repositories.UnitOfWork
	payout         PayoutGateway
	now            func() time.Time
}

// NewPayoutUsecase creates a new payout usecase
func NewPayoutUsecase(
	userRepo repositories.UserRepository,
	withdrawalRepo repositories.WithdrawalRepository,
	uow repositories.UnitOfWork,
	payout PayoutGateway,
) *PayoutUsecase {
	return &PayoutUsecase{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		uow:            uow,
		payout:         payout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Withdraw debits the wallet and sends a transfer. A transfer the gateway rejects is refunded.
// When the outcome is unknown (timeout, dropped connection, gateway 5xx) the withdrawal stays
// pending with the wallet debited, since the money may already be on its way.
func (u *PayoutUsecase) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entities.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be greater than zero")
	}
	amount = amount.Round(2)

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	if access := user.Access(u.now()); access.IsBanned() {
		return nil, domainerrors.AccountBanned(access.Reason, access.Until)
	}
	if !user.HasBankDetails() {
		return nil, domainerrors.BadRequest("add bank details before withdrawing")
	}

	recipientCode, err := u.recipient(ctx, user)
	if err != nil {
		return nil, err
	}

	withdrawal := &entities.Withdrawal{
		UserID: user.ID,
		Amount: amount,
		Status: entities.WithdrawalStatusPending,
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		ok, err := u.userRepo.DebitWallet(txCtx, user.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.InsufficientFunds()
		}
		return u.withdrawalRepo.Create(txCtx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	transferRef, transferErr := u.payout.Transfer(ctx, recipientCode, amount, withdrawalReason)
	if transferErr != nil && !errors.Is(transferErr, domainerrors.ErrGatewayRejected) {
		logger.Warn(ctx, "Payout transfer outcome unknown, withdrawal left pending",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(transferErr),
		)
		return u.withdrawalRepo.GetByID(ctx, withdrawal.ID)
	}
	if transferErr != nil {
		logger.Error(ctx, "Payout transfer rejected",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(transferErr),
		)
		refundErr := u.uow.Do(ctx, func(txCtx context.Context) error {
			if err := u.userRepo.CreditWallet(txCtx, user.ID, amount); err != nil {
				return err
			}
			return u.withdrawalRepo.MarkFailed(txCtx, withdrawal.ID, transferErr.Error())
		})
		if refundErr != nil {
			logger.Error(ctx, "Failed to refund withdrawal",
				zap.String("withdrawal_id", withdrawal.ID.String()),
				zap.Error(refundErr),
			)
			return nil, refundErr
		}
		return nil, domainerrors.PayoutFailed(transferErr)
	}

	if err := u.withdrawalRepo.MarkSent(ctx, withdrawal.ID, transferRef); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Withdrawal sent",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("transfer_reference", transferRef),
	)
	return u.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

// recipient returns the cached payout recipient, creating it on first use
func (u *PayoutUsecase) recipient(ctx context.Context, user *entities.User) (string, error) {
	if user.RecipientCode.Valid && user.RecipientCode.String != "" {
		return user.RecipientCode.String, nil
	}
	code, err := u.payout.CreateRecipient(ctx, user.Username, user.AccountNumber.String, user.BankCode)
	if err != nil {
		logger.Error(ctx, "Failed to create payout recipient", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", domainerrors.PayoutFailed(err)
	}
	if err := u.userRepo.SetRecipientCode(ctx, user.ID, code); err != nil {
		return "", err
	}
	return code, nil
}
