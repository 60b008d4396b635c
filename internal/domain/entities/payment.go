package entities

import "github.com/shopspring/decimal"

// GatewayStatus is the payment outcome reported by the gateway
type GatewayStatus string

const (
	GatewayStatusSuccess   GatewayStatus = "success"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusAbandoned GatewayStatus = "abandoned"
	GatewayStatusPending   GatewayStatus = "pending"
)

func (s GatewayStatus) IsSuccess() bool {
	return s == GatewayStatusSuccess
}

// GatewayVerification is the gateway's view of a reference
type GatewayVerification struct {
	Reference  string          `json:"reference"`
	Status     GatewayStatus   `json:"status"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
}

// SettlementKind identifies what a reference was attributed to
type SettlementKind string

const (
	SettlementKindOrder SettlementKind = "order"
	SettlementKindTopUp SettlementKind = "topup"
)

// SettlementResult describes the effect of a reconciled callback
type SettlementResult struct {
	Kind      SettlementKind `json:"kind"`
	Reference string         `json:"reference"`
	Order     *Order         `json:"order,omitempty"`
	TopUp     *TopUp         `json:"topUp,omitempty"`
	// Applied is false when the callback was a repeat and nothing changed
	Applied bool `json:"applied"`
}

// PaystackChargeSuccess is the only webhook event that can settle a reference
const PaystackChargeSuccess = "charge.success"

// PaystackWebhookEvent is the signed webhook envelope. Only the reference is trusted;
// status and amount are re-read from the gateway.
type PaystackWebhookEvent struct {
	Event string `json:"event" binding:"required"`
	Data  struct {
		Reference string `json:"reference" binding:"required"`
	} `json:"data"`
}
