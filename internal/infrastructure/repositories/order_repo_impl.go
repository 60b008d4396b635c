package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// OrderRepository implements escrow data operations
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order
func (r *OrderRepository) Create(ctx context.Context, order *entities.Order) error {
	if order.ID == uuid.Nil {
		order.ID = utils.GenerateUUIDv7()
	}
	if order.Status == "" {
		order.Status = entities.OrderStatusPending
	}
	m := &models.Order{
		ID:               order.ID,
		BuyerID:          order.BuyerID,
		SellerID:         order.SellerID,
		ProductID:        order.ProductID,
		Amount:           order.Amount,
		ServiceFee:       order.ServiceFee,
		SellerAmount:     order.SellerAmount,
		Status:           string(order.Status),
		BuyerConfirmed:   order.BuyerConfirmed,
		SellerConfirmed:  order.SellerConfirmed,
		EscrowReleased:   order.EscrowReleased,
		Disputed:         order.Disputed,
		DisputeReason:    order.DisputeReason,
		DeliveryCodeHash: order.DeliveryCodeHash,
		CodeAttempts:     order.CodeAttempts,
		PaymentReference: order.PaymentReference,
		DeliveredAt:      order.DeliveredAt.Ptr(),
		CodeConfirmedAt:  order.CodeConfirmedAt.Ptr(),
		CompletedAt:      order.CompletedAt.Ptr(),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByReference gets an order by its gateway reference
func (r *OrderRepository) GetByReference(ctx context.Context, reference string) (*entities.Order, error) {
	return r.first(ctx, "payment_reference = ?", reference)
}

func (r *OrderRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Order, error) {
	var m models.Order
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List lists orders for a buyer, a seller, or either side
func (r *OrderRepository) List(ctx context.Context, filter entities.OrderListFilter, pagination utils.PaginationParams) ([]*entities.Order, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Order{})
	switch filter.Role {
	case string(entities.UserRoleBuyer):
		query = query.Where("buyer_id = ?", filter.UserID)
	case string(entities.UserRoleSeller):
		query = query.Where("seller_id = ?", filter.UserID)
	default:
		query = query.Where("buyer_id = ? OR seller_id = ?", filter.UserID, filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.Order
	if err := query.Order("created_at DESC").Order("id DESC").
		Limit(pagination.Limit).Offset(pagination.CalculateOffset()).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*entities.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, r.toEntity(&orderModels[i]))
	}
	return orders, totalCount, nil
}

// MarkPaid moves pending to paid_pending_delivery
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(
		GetDB(ctx, r.db).Model(&models.Order{}).
			Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)),
		map[string]interface{}{
			"status":     string(entities.OrderStatusPaidPendingDelivery),
			"updated_at": time.Now().UTC(),
		})
}

// MarkShipped moves paid_pending_delivery to shipped and starts the claim timer
func (r *OrderRepository) MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return r.transition(
		GetDB(ctx, r.db).Model(&models.Order{}).
			Where("id = ? AND status = ?", id, string(entities.OrderStatusPaidPendingDelivery)),
		map[string]interface{}{
			"status":           string(entities.OrderStatusShipped),
			"seller_confirmed": true,
			"delivered_at":     at.UTC(),
			"updated_at":       time.Now().UTC(),
		})
}

// Complete is the guarded transition into completed. It changes at most one row, ever.
func (r *OrderRepository) Complete(ctx context.Context, id uuid.UUID, completion entities.OrderCompletion) (bool, error) {
	from := make([]string, 0, len(completion.From))
	for _, s := range completion.From {
		from = append(from, string(s))
	}

	query := GetDB(ctx, r.db).Model(&models.Order{}).
		Where("id = ? AND status IN ? AND status <> ?", id, from, string(entities.OrderStatusCompleted))
	if completion.RequireUndisputed {
		query = query.Where("disputed = ?", false)
	}

	at := completion.At.UTC()
	updates := map[string]interface{}{
		"status":          string(entities.OrderStatusCompleted),
		"escrow_released": true,
		"completed_at":    at,
		"updated_at":      at,
	}
	if completion.BuyerConfirmed {
		updates["buyer_confirmed"] = true
	}
	if completion.CodeConfirmed {
		updates["code_confirmed_at"] = at
	}
	return r.transition(query, updates)
}

// ReserveCodeAttempt counts one delivery code attempt before the code is compared.
// It reports false once limit attempts are recorded. A limit of zero never locks.
func (r *OrderRepository) ReserveCodeAttempt(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	query := GetDB(ctx, r.db).Model(&models.Order{}).Where("id = ?", id)
	if limit > 0 {
		query = query.Where("code_attempts < ?", limit)
	}
	return r.transition(query, map[string]interface{}{
		"code_attempts": gorm.Expr("code_attempts + 1"),
		"updated_at":    time.Now().UTC(),
	})
}

// OpenDispute sets the dispute overlay on a non-completed order
func (r *OrderRepository) OpenDispute(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	return r.transition(
		GetDB(ctx, r.db).Model(&models.Order{}).
			Where("id = ? AND status <> ? AND disputed = ?", id, string(entities.OrderStatusCompleted), false),
		map[string]interface{}{
			"disputed":       true,
			"dispute_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
}

// ResolveDispute clears the overlay and unlocks the delivery code
func (r *OrderRepository) ResolveDispute(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(
		GetDB(ctx, r.db).Model(&models.Order{}).Where("id = ? AND disputed = ?", id, true),
		map[string]interface{}{
			"disputed":      false,
			"code_attempts": 0,
			"updated_at":    time.Now().UTC(),
		})
}

// ListMatured lists orders whose claim window has passed, oldest delivery first
func (r *OrderRepository) ListMatured(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Order, error) {
	var orderModels []models.Order
	err := GetDB(ctx, r.db).
		Where("status = ? AND disputed = ? AND delivered_at IS NOT NULL AND delivered_at <= ?",
			string(entities.OrderStatusShipped), false, cutoff.UTC()).
		Order("delivered_at ASC").
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*entities.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, r.toEntity(&orderModels[i]))
	}
	return orders, nil
}

func (r *OrderRepository) transition(query *gorm.DB, updates map[string]interface{}) (bool, error) {
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *OrderRepository) toEntity(m *models.Order) *entities.Order {
	return &entities.Order{
		ID:               m.ID,
		BuyerID:          m.BuyerID,
		SellerID:         m.SellerID,
		ProductID:        m.ProductID,
		Amount:           m.Amount,
		ServiceFee:       m.ServiceFee,
		SellerAmount:     m.SellerAmount,
		Status:           entities.OrderStatus(m.Status),
		BuyerConfirmed:   m.BuyerConfirmed,
		SellerConfirmed:  m.SellerConfirmed,
		EscrowReleased:   m.EscrowReleased,
		Disputed:         m.Disputed,
		DisputeReason:    m.DisputeReason,
		DeliveryCodeHash: m.DeliveryCodeHash,
		CodeAttempts:     m.CodeAttempts,
		PaymentReference: m.PaymentReference,
		DeliveredAt:      null.TimeFromPtr(m.DeliveredAt),
		CodeConfirmedAt:  null.TimeFromPtr(m.CodeConfirmedAt),
		CompletedAt:      null.TimeFromPtr(m.CompletedAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
