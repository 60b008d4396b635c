package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/metrics"
	"campus-market.backend/pkg/utils"
)

type orderPayer interface {
	MarkPaid(ctx context.Context, reference string) (*entities.Order, bool, error)
}

// SettlementUsecase reconciles gateway outcomes into order payments and wallet top-ups
type SettlementUsecase struct {
	orderRepo repositories.OrderRepository
	topUpRepo repositories.TopUpRepository
	userRepo  repositories.UserRepository
	uow       repositories.UnitOfWork
	payer     orderPayer
	gateway   PaymentGateway
	now       func() time.Time
}

// NewSettlementUsecase creates a new settlement usecase
func NewSettlementUsecase(
	orderRepo repositories.OrderRepository,
	topUpRepo repositories.TopUpRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	payer orderPayer,
	gateway PaymentGateway,
) *SettlementUsecase {
	return &SettlementUsecase{
		orderRepo: orderRepo,
		topUpRepo: topUpRepo,
		userRepo:  userRepo,
		uow:       uow,
		payer:     payer,
		gateway:   gateway,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InitializeTopUp records a pending top-up bound to userID and opens a gateway session for it
func (u *SettlementUsecase) InitializeTopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entities.TopUpResult, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be greater than zero")
	}
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

	topUp := &entities.TopUp{
		UserID:    user.ID,
		Amount:    amount.Round(2),
		Reference: utils.NewPaymentReference(utils.TopUpReferencePrefix),
		Status:    entities.TopUpStatusPending,
	}
	if err := u.topUpRepo.Create(ctx, topUp); err != nil {
		return nil, err
	}

	redirectURL, err := u.gateway.Initialize(ctx, topUp.Amount, topUp.Reference, user.Email.String)
	if err != nil {
		if _, markErr := u.topUpRepo.MarkFailed(ctx, topUp.ID); markErr != nil {
			logger.Warn(ctx, "Failed to mark top-up failed", zap.String("reference", topUp.Reference), zap.Error(markErr))
		}
		return nil, fmt.Errorf("initialize top-up: %w", err)
	}

	return &entities.TopUpResult{TopUp: topUp, RedirectURL: redirectURL}, nil
}

// ReconcileCallback applies a gateway outcome for reference. Orders take precedence over top-ups.
// Only a successful status mutates the ledger, and every mutation is idempotent per reference.
func (u *SettlementUsecase) ReconcileCallback(ctx context.Context, reference string, status entities.GatewayStatus, amountPaid decimal.Decimal) (*entities.SettlementResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domainerrors.BadRequest("reference is required")
	}

	if !status.IsSuccess() {
		metrics.RecordSettlement("unverified")
		logger.Warn(ctx, "Gateway did not confirm payment",
			zap.String("reference", reference),
			zap.String("status", string(status)),
		)
		return nil, domainerrors.GatewayUnverified(fmt.Sprintf("payment %s", statusLabel(status)))
	}

	order, err := u.orderRepo.GetByReference(ctx, reference)
	switch {
	case err == nil:
		return u.settleOrder(ctx, order, amountPaid)
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	topUp, err := u.topUpRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordSettlement("unmatched")
			logger.Warn(ctx, "Unattributable payment callback", zap.String("reference", reference))
			return nil, domainerrors.NotFound("no order or top-up matches this reference")
		}
		return nil, err
	}
	return u.settleTopUp(ctx, topUp, amountPaid)
}

// VerifyAndReconcile asks the gateway for the outcome of reference, then reconciles it
func (u *SettlementUsecase) VerifyAndReconcile(ctx context.Context, reference string) (*entities.SettlementResult, error) {
	verification, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		metrics.RecordSettlement("unverified")
		logger.Error(ctx, "Gateway verification failed", zap.String("reference", reference), zap.Error(err))
		return nil, domainerrors.GatewayUnverified("could not verify payment with gateway")
	}
	return u.ReconcileCallback(ctx, reference, verification.Status, verification.AmountPaid)
}

func (u *SettlementUsecase) settleOrder(ctx context.Context, order *entities.Order, amountPaid decimal.Decimal) (*entities.SettlementResult, error) {
	if amountPaid.LessThan(order.Amount) {
		metrics.RecordSettlement("underpaid")
		logger.Warn(ctx, "Order underpaid",
			zap.String("reference", order.PaymentReference),
			zap.String("expected", order.Amount.String()),
			zap.String("paid", amountPaid.String()),
		)
		return nil, domainerrors.GatewayUnverified("amount paid is less than the order total")
	}

	current, applied, err := u.payer.MarkPaid(ctx, order.PaymentReference)
	if err != nil {
		return nil, err
	}
	if applied {
		metrics.RecordSettlement("order_paid")
	} else {
		metrics.RecordSettlement("duplicate")
	}
	return &entities.SettlementResult{
		Kind:      entities.SettlementKindOrder,
		Reference: order.PaymentReference,
		Order:     current,
		Applied:   applied,
	}, nil
}

// settleTopUp pairs the pending to credited flip with the wallet credit
func (u *SettlementUsecase) settleTopUp(ctx context.Context, topUp *entities.TopUp, amountPaid decimal.Decimal) (*entities.SettlementResult, error) {
	if !amountPaid.IsPositive() {
		metrics.RecordSettlement("underpaid")
		return nil, domainerrors.GatewayUnverified("gateway reported no amount for this top-up")
	}

	applied := false
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		ok, err := u.topUpRepo.MarkCredited(txCtx, topUp.ID, u.now())
		if err != nil || !ok {
			return err
		}
		if err := u.userRepo.CreditWallet(txCtx, topUp.UserID, amountPaid); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	current, err := u.topUpRepo.GetByReference(ctx, topUp.Reference)
	if err != nil {
		return nil, err
	}
	if applied {
		metrics.RecordSettlement("topup_credited")
		metrics.RecordWalletCredit("topup")
		logger.Info(ctx, "Wallet topped up",
			zap.String("user_id", topUp.UserID.String()),
			zap.String("reference", topUp.Reference),
			zap.String("amount", amountPaid.String()),
		)
	} else {
		metrics.RecordSettlement("duplicate")
	}
	return &entities.SettlementResult{
		Kind:      entities.SettlementKindTopUp,
		Reference: topUp.Reference,
		TopUp:     current,
		Applied:   applied,
	}, nil
}

func statusLabel(status entities.GatewayStatus) string {
	if status == "" {
		return "not confirmed"
	}
	return string(status)
}
