package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus-market.backend/internal/domain/entities"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeBadRequest, "bad", ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeBadRequest, err.Code)
	assert.Equal(t, ErrBadRequest.Error(), err.Error())

	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.True(t, stderrors.Is(notFound, ErrNotFound))

	conflict := Conflict("exists")
	assert.Equal(t, CodeConflict, conflict.Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "db down", internal.Error())

	noErr := &AppError{Message: "plain"}
	assert.Equal(t, "plain", noErr.Error())

	custom := NewError("custom", ErrForbidden)
	assert.True(t, stderrors.Is(custom, ErrForbidden))
}

func TestAppError_DomainConstructors(t *testing.T) {
	assert.True(t, stderrors.Is(InvalidTransition("order already completed"), ErrInvalidTransition))
	assert.True(t, stderrors.Is(GatewayUnverified("short"), ErrGatewayUnverified))
	assert.True(t, stderrors.Is(OrderDisputed(), ErrOrderDisputed))
	assert.True(t, stderrors.Is(InvalidDeliveryCode(), ErrInvalidDeliveryCode))
	assert.True(t, stderrors.Is(DeliveryCodeLocked(), ErrDeliveryCodeLocked))
	assert.True(t, stderrors.Is(InsufficientFunds(), ErrInsufficientFunds))
	assert.True(t, stderrors.Is(PayoutFailed(stderrors.New("bank down")), ErrPayoutFailed))

	rejection := FraudRejection(&entities.FraudVerdict{Rule: entities.FraudRuleKeyword, Reason: "Prohibited keyword: whatsapp only"})
	assert.Equal(t, http.StatusForbidden, rejection.Status)
	assert.Equal(t, "Prohibited keyword: whatsapp only", rejection.Message)
	assert.True(t, stderrors.Is(rejection, ErrFraudRejected))
	assert.Equal(t, "rejected by fraud checks", FraudRejection(nil).Message)

	early := ClaimTooEarly(3*time.Hour + 25*time.Minute)
	assert.Equal(t, "funds can be claimed in 3h 25m", early.Message)
	assert.True(t, stderrors.Is(early, ErrClaimTooEarly))

	until := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	banned := AccountBanned("price anomaly", &until)
	assert.Contains(t, banned.Message, "price anomaly")
	assert.Contains(t, banned.Message, "2026-01-10T00:00:00Z")
	assert.Equal(t, "account is banned", AccountBanned("", nil).Message)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	app := NotFound("order not found")
	assert.Same(t, app, FromError(fmt.Errorf("wrap: %w", app)))

	cases := map[error]int{
		ErrNotFound:            http.StatusNotFound,
		ErrAlreadyExists:       http.StatusConflict,
		ErrInvalidInput:        http.StatusBadRequest,
		ErrUnauthorized:        http.StatusUnauthorized,
		ErrForbidden:           http.StatusForbidden,
		ErrInvalidTransition:   http.StatusConflict,
		ErrFraudRejected:       http.StatusForbidden,
		ErrGatewayUnverified:   http.StatusPaymentRequired,
		ErrClaimTooEarly:       http.StatusConflict,
		ErrOrderDisputed:       http.StatusConflict,
		ErrInvalidDeliveryCode: http.StatusBadRequest,
		ErrDeliveryCodeLocked:  http.StatusLocked,
		ErrAccountBanned:       http.StatusForbidden,
		ErrInsufficientFunds:   http.StatusUnprocessableEntity,
		ErrPayoutFailed:        http.StatusBadGateway,
	}
	for sentinel, status := range cases {
		got := FromError(fmt.Errorf("ctx: %w", sentinel))
		assert.Equal(t, status, got.Status, sentinel.Error())
	}

	assert.Equal(t, http.StatusInternalServerError, FromError(stderrors.New("boom")).Status)
}
