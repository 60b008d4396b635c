package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/pkg/utils"
)

type orderService interface {
	Checkout(ctx context.Context, buyerID, productID uuid.UUID) (*entities.CheckoutResult, error)
	MarkShipped(ctx context.Context, sellerID, orderID uuid.UUID) (*entities.Order, error)
	ConfirmDeliveryCode(ctx context.Context, actorID, orderID uuid.UUID, code string) (*entities.Order, error)
	ConfirmReceipt(ctx context.Context, buyerID, orderID uuid.UUID) (*entities.Order, error)
	ClaimFunds(ctx context.Context, sellerID, orderID uuid.UUID) (*entities.Order, error)
	OpenDispute(ctx context.Context, actorID, orderID uuid.UUID, reason string) (*entities.Order, error)
	GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*entities.Order, error)
	ListOrders(ctx context.Context, filter entities.OrderListFilter, pagination utils.PaginationParams) ([]*entities.Order, int64, error)
}

// OrderHandler handles the escrow lifecycle endpoints
type OrderHandler struct {
	orders orderService
}

func NewOrderHandler(orders orderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Checkout opens an order and a gateway session for it
// POST /api/v1/orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input entities.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid product ID"))
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.orders.Checkout(c.Request.Context(), userID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListOrders lists the caller's orders
// GET /api/v1/orders?role=buyer|seller&status=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := entities.OrderListFilter{UserID: userID}
	switch role := c.Query("role"); role {
	case "", string(entities.UserRoleBuyer), string(entities.UserRoleSeller):
		filter.Role = role
	default:
		response.Error(c, domainerrors.BadRequest("role must be buyer or seller"))
		return
	}
	if status := entities.OrderStatus(c.Query("status")); status != "" {
		if !status.IsValid() {
			response.Error(c, domainerrors.BadRequest("Invalid order status"))
			return
		}
		filter.Status = status
	}

	pagination := paginationQuery(c)
	orders, total, err := h.orders.ListOrders(c.Request.Context(), filter, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	if orders == nil {
		orders = []*entities.Order{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": orders,
		"meta":  utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// GetOrder returns one of the caller's orders
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	h.act(c, http.StatusOK, func(ctx context.Context, userID, orderID uuid.UUID) (*entities.Order, error) {
		return h.orders.GetOrder(ctx, userID, orderID)
	})
}

// Ship marks the order shipped and starts the claim window
// POST /api/v1/orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	h.act(c, http.StatusOK, h.orders.MarkShipped)
}

// ConfirmCode completes the order with the delivery code
// POST /api/v1/orders/:id/confirm-code
func (h *OrderHandler) ConfirmCode(c *gin.Context) {
	var input entities.ConfirmCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	h.act(c, http.StatusOK, func(ctx context.Context, userID, orderID uuid.UUID) (*entities.Order, error) {
		return h.orders.ConfirmDeliveryCode(ctx, userID, orderID, input.Code)
	})
}

// ConfirmReceipt completes the order on the buyer's word
// POST /api/v1/orders/:id/confirm-receipt
func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	h.act(c, http.StatusOK, h.orders.ConfirmReceipt)
}

// Claim releases the funds to the seller once the claim window has passed
// POST /api/v1/orders/:id/claim
func (h *OrderHandler) Claim(c *gin.Context) {
	h.act(c, http.StatusOK, h.orders.ClaimFunds)
}

// Dispute freezes the timed claim
// POST /api/v1/orders/:id/dispute
func (h *OrderHandler) Dispute(c *gin.Context) {
	var input entities.DisputeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	h.act(c, http.StatusOK, func(ctx context.Context, userID, orderID uuid.UUID) (*entities.Order, error) {
		return h.orders.OpenDispute(ctx, userID, orderID, input.Reason)
	})
}

func (h *OrderHandler) act(c *gin.Context, status int, fn func(ctx context.Context, userID, orderID uuid.UUID) (*entities.Order, error)) {
	orderID, err := uuidParam(c, "id", "order")
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := fn(c.Request.Context(), userID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status, gin.H{"order": order})
}
