package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// OrderStatus represents the escrow lifecycle of an order
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusPaidPendingDelivery OrderStatus = "paid_pending_delivery"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusCompleted           OrderStatus = "completed"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:             0,
	OrderStatusPaidPendingDelivery: 1,
	OrderStatusShipped:             2,
	OrderStatusCompleted:           3,
}

// Rank orders the lifecycle; status never decreases in rank
func (s OrderStatus) Rank() int {
	if r, ok := orderStatusRank[s]; ok {
		return r
	}
	return -1
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// IsPaid reports whether funds are held in escrow or released
func (s OrderStatus) IsPaid() bool {
	return s.Rank() >= OrderStatusPaidPendingDelivery.Rank()
}

// Order is the escrow record between a buyer and a seller for one product
type Order struct {
	ID               uuid.UUID       `json:"id"`
	BuyerID          uuid.UUID       `json:"buyerId"`
	SellerID         uuid.UUID       `json:"sellerId"`
	ProductID        uuid.UUID       `json:"productId"`
	Amount           decimal.Decimal `json:"amount"`
	ServiceFee       decimal.Decimal `json:"serviceFee"`
	SellerAmount     decimal.Decimal `json:"sellerAmount"`
	Status           OrderStatus     `json:"status"`
	BuyerConfirmed   bool            `json:"buyerConfirmed"`
	SellerConfirmed  bool            `json:"sellerConfirmed"`
	EscrowReleased   bool            `json:"escrowReleased"`
	Disputed         bool            `json:"disputed"`
	DisputeReason    string          `json:"disputeReason,omitempty"`
	DeliveryCodeHash string          `json:"-"`
	CodeAttempts     int             `json:"-"`
	PaymentReference string          `json:"paymentReference"`
	DeliveredAt      null.Time       `json:"deliveredAt,omitempty"`
	CodeConfirmedAt  null.Time       `json:"codeConfirmedAt,omitempty"`
	CompletedAt      null.Time       `json:"completedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// IsParty reports whether userID is the buyer or the seller
func (o *Order) IsParty(userID uuid.UUID) bool {
	return userID == o.BuyerID || userID == o.SellerID
}

// ClaimableAt returns when a seller may claim after shipping
func (o *Order) ClaimableAt(window time.Duration) (time.Time, bool) {
	if !o.DeliveredAt.Valid {
		return time.Time{}, false
	}
	return o.DeliveredAt.Time.Add(window), true
}

// OrderCompletion describes one guarded transition into completed
type OrderCompletion struct {
	From              []OrderStatus
	BuyerConfirmed    bool
	CodeConfirmed     bool
	RequireUndisputed bool
	At                time.Time
}

// ComputeFees splits amount into the platform fee (percent, rounded to 2 dp) and the seller share
func ComputeFees(amount, percent decimal.Decimal) (fee, sellerAmount decimal.Decimal) {
	fee = amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	return fee, amount.Sub(fee)
}

// OrderListFilter selects which side of the order the caller is on
type OrderListFilter struct {
	UserID uuid.UUID
	Role   string // buyer, seller, or empty for both
	Status OrderStatus
}

// CheckoutInput represents a buyer's checkout request
type CheckoutInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
}

// ConfirmCodeInput carries the delivery code entered at handover
type ConfirmCodeInput struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// DisputeInput represents a dispute request
type DisputeInput struct {
	Reason string `json:"reason" binding:"required,min=5,max=1000"`
}

// CheckoutResult is returned after a gateway session has been opened
type CheckoutResult struct {
	Order       *Order `json:"order"`
	RedirectURL string `json:"redirectUrl"`
}
