package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/crypto"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/metrics"
	"campus-market.backend/pkg/utils"
)

var paidStates = []entities.OrderStatus{
	entities.OrderStatusPaidPendingDelivery,
	entities.OrderStatusShipped,
}

// EscrowUsecase drives the order state machine and releases escrowed funds to sellers
type EscrowUsecase struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	uow         repositories.UnitOfWork
	gateway     PaymentGateway
	notifier    Notifier
	cfg         config.EscrowConfig
	hashCost    int
	now         func() time.Time
}

// NewEscrowUsecase creates a new escrow usecase
func NewEscrowUsecase(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
	notifier Notifier,
	cfg config.EscrowConfig,
) *EscrowUsecase {
	return &EscrowUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		uow:         uow,
		gateway:     gateway,
		notifier:    notifier,
		cfg:         cfg,
		hashCost:    crypto.DefaultCost,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (u *EscrowUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// CreateOrder opens a pending escrow for productID and returns the plaintext delivery code once.
// The code is also sent to the seller.
func (u *EscrowUsecase) CreateOrder(ctx context.Context, buyerID, productID uuid.UUID, reference string) (*entities.Order, string, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, "", domainerrors.NotFound("product not found")
		}
		return nil, "", err
	}
	if product.SellerID == uuid.Nil {
		return nil, "", domainerrors.NotFound("seller not found")
	}
	seller, err := u.userRepo.GetByID(ctx, product.SellerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, "", domainerrors.NotFound("seller not found")
		}
		return nil, "", err
	}
	if seller.ID == buyerID {
		return nil, "", domainerrors.InvalidTransition("you cannot buy your own listing")
	}

	code, err := crypto.GenerateDeliveryCode()
	if err != nil {
		return nil, "", err
	}
	codeHash, err := crypto.HashSecret(code, u.hashCost)
	if err != nil {
		return nil, "", err
	}

	if reference == "" {
		reference = utils.NewPaymentReference(utils.OrderReferencePrefix)
	}
	fee, sellerAmount := entities.ComputeFees(product.Price, u.cfg.ServiceFeePercent)

	order := &entities.Order{
		BuyerID:          buyerID,
		SellerID:         seller.ID,
		ProductID:        product.ID,
		Amount:           product.Price,
		ServiceFee:       fee,
		SellerAmount:     sellerAmount,
		Status:           entities.OrderStatusPending,
		DeliveryCodeHash: codeHash,
		PaymentReference: reference,
	}
	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, "", err
	}

	metrics.RecordEscrowTransition("created")
	logger.Info(ctx, "Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("reference", reference),
		zap.String("amount", order.Amount.String()),
	)

	if u.notifier != nil && seller.Email.Valid {
		u.notifier.Send(ctx, seller.Email.String,
			"Delivery code for "+product.Title,
			fmt.Sprintf("<p>Your delivery code for order %s is <strong>%s</strong>.</p>"+
				"<p>Give it to the buyer only when they receive the item.</p>", order.ID, code))
	}

	return order, code, nil
}

// Checkout creates an order for the buyer and opens a gateway session for it
func (u *EscrowUsecase) Checkout(ctx context.Context, buyerID, productID uuid.UUID) (*entities.CheckoutResult, error) {
	buyer, err := u.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	if access := buyer.Access(u.now()); access.IsBanned() {
		return nil, domainerrors.AccountBanned(access.Reason, access.Until)
	}

	order, _, err := u.CreateOrder(ctx, buyerID, productID, "")
	if err != nil {
		return nil, err
	}

	redirectURL, err := u.gateway.Initialize(ctx, order.Amount, order.PaymentReference, buyer.Email.String)
	if err != nil {
		logger.Error(ctx, "Failed to initialize payment",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	return &entities.CheckoutResult{Order: order, RedirectURL: redirectURL}, nil
}

// MarkPaid moves the order for reference into paid_pending_delivery.
// It reports whether this call made the change; repeats are no-ops.
func (u *EscrowUsecase) MarkPaid(ctx context.Context, reference string) (*entities.Order, bool, error) {
	order, err := u.orderRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, false, domainerrors.NotFound("order not found")
		}
		return nil, false, err
	}

	ok, err := u.orderRepo.MarkPaid(ctx, order.ID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return order, false, nil
	}

	metrics.RecordEscrowTransition("paid")
	logger.Info(ctx, "Order paid", zap.String("order_id", order.ID.String()), zap.String("reference", reference))
	current, err := u.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, false, err
	}
	return current, true, nil
}

// MarkShipped records handover by the seller and starts the claim timer
func (u *EscrowUsecase) MarkShipped(ctx context.Context, sellerID, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, domainerrors.Forbidden("only the seller can mark this order shipped")
	}

	ok, err := u.orderRepo.MarkShipped(ctx, order.ID, u.now())
	if err != nil {
		return nil, err
	}
	current, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if current.Status == entities.OrderStatusPending {
			return nil, domainerrors.InvalidTransition("order has not been paid")
		}
		return nil, domainerrors.InvalidTransition(fmt.Sprintf("order cannot be shipped from status %s", current.Status))
	}

	metrics.RecordEscrowTransition("shipped")
	logger.Info(ctx, "Order shipped", zap.String("order_id", order.ID.String()))
	return current, nil
}

// ConfirmDeliveryCode completes the order when the buyer presents the code issued at creation.
// Every submission spends one attempt before the hash is compared.
func (u *EscrowUsecase) ConfirmDeliveryCode(ctx context.Context, actorID, orderID uuid.UUID, code string) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID {
		if order.IsParty(actorID) {
			return nil, domainerrors.Forbidden("only the buyer can submit the delivery code")
		}
		return nil, domainerrors.Forbidden("you are not a party to this order")
	}
	switch order.Status {
	case entities.OrderStatusPaidPendingDelivery, entities.OrderStatusShipped:
	case entities.OrderStatusCompleted:
		return nil, domainerrors.InvalidTransition("order already completed")
	default:
		return nil, domainerrors.InvalidTransition("order has not been paid")
	}
	if order.Disputed {
		return nil, domainerrors.OrderDisputed()
	}

	reserved, err := u.orderRepo.ReserveCodeAttempt(ctx, order.ID, u.cfg.MaxCodeAttempts)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, domainerrors.DeliveryCodeLocked()
	}

	if !crypto.CheckSecret(code, order.DeliveryCodeHash) {
		logger.Warn(ctx, "Delivery code mismatch",
			zap.String("order_id", order.ID.String()),
			zap.String("actor_id", actorID.String()),
		)
		return nil, domainerrors.InvalidDeliveryCode()
	}

	return u.complete(ctx, order, entities.OrderCompletion{
		From:              paidStates,
		CodeConfirmed:     true,
		RequireUndisputed: true,
		At:                u.now(),
	}, "code_confirmed")
}

// ConfirmReceipt lets the buyer release funds from any paid state
func (u *EscrowUsecase) ConfirmReceipt(ctx context.Context, buyerID, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, domainerrors.Forbidden("only the buyer can confirm receipt")
	}
	if order.Status == entities.OrderStatusCompleted {
		return nil, domainerrors.InvalidTransition("order already completed")
	}
	if !order.Status.IsPaid() {
		return nil, domainerrors.InvalidTransition("order has not been paid")
	}

	return u.complete(ctx, order, entities.OrderCompletion{
		From:           paidStates,
		BuyerConfirmed: true,
		At:             u.now(),
	}, "buyer_confirmed")
}

// ClaimFunds releases funds to the seller once the claim window after shipping has elapsed
func (u *EscrowUsecase) ClaimFunds(ctx context.Context, sellerID, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, domainerrors.Forbidden("only the seller can claim funds")
	}
	if order.Status == entities.OrderStatusCompleted {
		return nil, domainerrors.InvalidTransition("order already completed")
	}
	claimableAt, shipped := order.ClaimableAt(u.cfg.ClaimWindow)
	if order.Status != entities.OrderStatusShipped || !shipped {
		return nil, domainerrors.InvalidTransition("order has not been shipped")
	}
	if order.Disputed {
		return nil, domainerrors.OrderDisputed()
	}
	now := u.now()
	if now.Before(claimableAt) {
		return nil, domainerrors.ClaimTooEarly(claimableAt.Sub(now))
	}

	return u.complete(ctx, order, entities.OrderCompletion{
		From:              []entities.OrderStatus{entities.OrderStatusShipped},
		RequireUndisputed: true,
		At:                now,
	}, "claimed")
}

// OpenDispute freezes the timed claim until an admin resolves the order
func (u *EscrowUsecase) OpenDispute(ctx context.Context, actorID, orderID uuid.UUID, reason string) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(actorID) {
		return nil, domainerrors.Forbidden("you are not a party to this order")
	}
	if order.Status == entities.OrderStatusCompleted {
		return nil, domainerrors.InvalidTransition("completed orders cannot be disputed")
	}
	if order.Disputed {
		return order, nil
	}

	ok, err := u.orderRepo.OpenDispute(ctx, order.ID, reason)
	if err != nil {
		return nil, err
	}
	current, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok && !current.Disputed {
		return nil, domainerrors.InvalidTransition("completed orders cannot be disputed")
	}

	if ok {
		metrics.RecordEscrowTransition("disputed")
		logger.Warn(ctx, "Order disputed",
			zap.String("order_id", order.ID.String()),
			zap.String("actor_id", actorID.String()),
			zap.String("reason", reason),
		)
	}
	return current, nil
}

// ResolveDispute clears the dispute overlay and resets delivery code attempts
func (u *EscrowUsecase) ResolveDispute(ctx context.Context, orderID uuid.UUID) (*entities.Order, error) {
	ok, err := u.orderRepo.ResolveDispute(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerrors.InvalidTransition("order is not disputed")
	}

	metrics.RecordEscrowTransition("dispute_resolved")
	logger.Info(ctx, "Dispute resolved", zap.String("order_id", orderID.String()))
	return current, nil
}

// ReleaseMatured completes up to limit shipped, undisputed orders whose claim window has passed
func (u *EscrowUsecase) ReleaseMatured(ctx context.Context, limit int) (int, error) {
	now := u.now()
	orders, err := u.orderRepo.ListMatured(ctx, now.Add(-u.cfg.ClaimWindow), limit)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, order := range orders {
		_, err := u.complete(ctx, order, entities.OrderCompletion{
			From:              []entities.OrderStatus{entities.OrderStatusShipped},
			RequireUndisputed: true,
			At:                now,
		}, "auto_released")
		if err != nil {
			// another path completed or disputed it since the listing
			if errors.Is(err, domainerrors.ErrInvalidTransition) || errors.Is(err, domainerrors.ErrOrderDisputed) {
				continue
			}
			return released, err
		}
		released++
	}
	return released, nil
}

// GetOrder returns an order visible to actorID
func (u *EscrowUsecase) GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(actorID) {
		return nil, domainerrors.NotFound("order not found")
	}
	return order, nil
}

// ListOrders lists the caller's orders as buyer, seller or both
func (u *EscrowUsecase) ListOrders(ctx context.Context, filter entities.OrderListFilter, pagination utils.PaginationParams) ([]*entities.Order, int64, error) {
	return u.orderRepo.List(ctx, filter, pagination)
}

// complete flips the order to completed and credits the seller in one transaction.
// The credit runs only when the guarded update changed the row.
func (u *EscrowUsecase) complete(ctx context.Context, order *entities.Order, completion entities.OrderCompletion, transition string) (*entities.Order, error) {
	credited := false
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		ok, err := u.orderRepo.Complete(txCtx, order.ID, completion)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := u.userRepo.CreditWallet(txCtx, order.SellerID, order.SellerAmount); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	current, err := u.load(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if !credited {
		switch {
		case current.Status == entities.OrderStatusCompleted:
			return nil, domainerrors.InvalidTransition("order already completed")
		case current.Disputed && completion.RequireUndisputed:
			return nil, domainerrors.OrderDisputed()
		default:
			return nil, domainerrors.InvalidTransition(fmt.Sprintf("order cannot be completed from status %s", current.Status))
		}
	}

	metrics.RecordEscrowTransition(transition)
	metrics.RecordWalletCredit("escrow_release")
	logger.Info(ctx, "Escrow released",
		zap.String("order_id", order.ID.String()),
		zap.String("seller_id", order.SellerID.String()),
		zap.String("seller_amount", order.SellerAmount.String()),
		zap.String("via", transition),
	)
	return current, nil
}

func (u *EscrowUsecase) load(ctx context.Context, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("order not found")
		}
		return nil, err
	}
	return order, nil
}
