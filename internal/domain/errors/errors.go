package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"campus-market.backend/internal/domain/entities"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("invalid order transition")
	ErrFraudRejected       = errors.New("rejected by fraud checks")
	ErrGatewayUnverified   = errors.New("payment not verified by gateway")
	ErrClaimTooEarly       = errors.New("claim window has not elapsed")
	ErrOrderDisputed       = errors.New("order is disputed")
	ErrInvalidDeliveryCode = errors.New("invalid delivery code")
	ErrDeliveryCodeLocked  = errors.New("delivery code attempts exhausted")
	ErrAccountBanned       = errors.New("account is banned")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrPayoutFailed        = errors.New("payout failed")
	// ErrGatewayRejected marks a definitive refusal by the gateway, as opposed to a lost or unreadable reply
	ErrGatewayRejected = errors.New("gateway rejected request")
)

// Machine-readable error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeFraudRejected       = "FRAUD_REJECTED"
	CodeGatewayUnverified   = "GATEWAY_UNVERIFIED"
	CodeClaimTooEarly       = "CLAIM_TOO_EARLY"
	CodeOrderDisputed       = "ORDER_DISPUTED"
	CodeInvalidDeliveryCode = "INVALID_DELIVERY_CODE"
	CodeDeliveryCodeLocked  = "DELIVERY_CODE_LOCKED"
	CodeAccountBanned       = "ACCOUNT_BANNED"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodePayoutFailed        = "PAYOUT_FAILED"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// InvalidTransition reports an order operation that is not legal from the current state
func InvalidTransition(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeInvalidTransition, message, ErrInvalidTransition)
}

// FraudRejection turns a positive fraud verdict into the caller-facing rejection
func FraudRejection(v *entities.FraudVerdict) *AppError {
	msg := "rejected by fraud checks"
	if v != nil && v.Reason != "" {
		msg = v.Reason
	}
	return NewAppError(http.StatusForbidden, CodeFraudRejected, msg, ErrFraudRejected)
}

// GatewayUnverified reports a callback the gateway did not confirm
func GatewayUnverified(message string) *AppError {
	return NewAppError(http.StatusPaymentRequired, CodeGatewayUnverified, message, ErrGatewayUnverified)
}

// ClaimTooEarly is the wait signal for a seller claim before the window elapses
func ClaimTooEarly(remaining time.Duration) *AppError {
	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60
	return NewAppError(http.StatusConflict, CodeClaimTooEarly,
		fmt.Sprintf("funds can be claimed in %dh %dm", hours, minutes), ErrClaimTooEarly)
}

func OrderDisputed() *AppError {
	return NewAppError(http.StatusConflict, CodeOrderDisputed, "order is under dispute", ErrOrderDisputed)
}

func InvalidDeliveryCode() *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidDeliveryCode, "delivery code does not match", ErrInvalidDeliveryCode)
}

func DeliveryCodeLocked() *AppError {
	return NewAppError(http.StatusLocked, CodeDeliveryCodeLocked,
		"too many incorrect delivery codes, contact support", ErrDeliveryCodeLocked)
}

// AccountBanned carries the ban reason and, for temporary bans, its expiry
func AccountBanned(reason string, until *time.Time) *AppError {
	msg := "account is banned"
	if reason != "" {
		msg += ": " + reason
	}
	if until != nil {
		msg += " (until " + until.UTC().Format(time.RFC3339) + ")"
	}
	return NewAppError(http.StatusForbidden, CodeAccountBanned, msg, ErrAccountBanned)
}

func InsufficientFunds() *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientFunds, "insufficient wallet balance", ErrInsufficientFunds)
}

func PayoutFailed(err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodePayoutFailed, "payout transfer failed", fmt.Errorf("%w: %v", ErrPayoutFailed, err))
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// FromError maps any error onto an AppError, recognising wrapped sentinels
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeBadRequest, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, ErrInvalidTransition):
		return NewAppError(http.StatusConflict, CodeInvalidTransition, err.Error(), err)
	case errors.Is(err, ErrFraudRejected):
		return NewAppError(http.StatusForbidden, CodeFraudRejected, err.Error(), err)
	case errors.Is(err, ErrGatewayUnverified):
		return NewAppError(http.StatusPaymentRequired, CodeGatewayUnverified, err.Error(), err)
	case errors.Is(err, ErrClaimTooEarly):
		return NewAppError(http.StatusConflict, CodeClaimTooEarly, err.Error(), err)
	case errors.Is(err, ErrOrderDisputed):
		return NewAppError(http.StatusConflict, CodeOrderDisputed, err.Error(), err)
	case errors.Is(err, ErrInvalidDeliveryCode):
		return NewAppError(http.StatusBadRequest, CodeInvalidDeliveryCode, err.Error(), err)
	case errors.Is(err, ErrDeliveryCodeLocked):
		return NewAppError(http.StatusLocked, CodeDeliveryCodeLocked, err.Error(), err)
	case errors.Is(err, ErrAccountBanned):
		return NewAppError(http.StatusForbidden, CodeAccountBanned, err.Error(), err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientFunds, err.Error(), err)
	case errors.Is(err, ErrPayoutFailed):
		return NewAppError(http.StatusBadGateway, CodePayoutFailed, err.Error(), err)
	}
	return InternalError(err)
}
