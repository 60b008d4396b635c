package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
)

type topUpService interface {
	InitializeTopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entities.TopUpResult, error)
}

type withdrawService interface {
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entities.Withdrawal, error)
}

// WalletHandler handles wallet top-up and withdrawal endpoints
type WalletHandler struct {
	topUps  topUpService
	payouts withdrawService
}

func NewWalletHandler(topUps topUpService, payouts withdrawService) *WalletHandler {
	return &WalletHandler{topUps: topUps, payouts: payouts}
}

// TopUp opens a gateway session that credits the caller's wallet once paid
// POST /api/v1/wallet/topup
func (h *WalletHandler) TopUp(c *gin.Context) {
	userID, amount, err := bindAmount(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.topUps.InitializeTopUp(c.Request.Context(), userID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Withdraw pays wallet funds out to the caller's bank account
// POST /api/v1/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, amount, err := bindAmount(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	withdrawal, err := h.payouts.Withdraw(c.Request.Context(), userID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if withdrawal.Status == entities.WithdrawalStatusPending {
		status = http.StatusAccepted
	}
	response.Success(c, status, gin.H{"withdrawal": withdrawal})
}

func bindAmount(c *gin.Context) (uuid.UUID, decimal.Decimal, error) {
	var input entities.AmountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return uuid.Nil, decimal.Zero, domainerrors.BadRequest(err.Error())
	}
	if !input.Amount.IsPositive() {
		return uuid.Nil, decimal.Zero, domainerrors.BadRequest("amount must be greater than zero")
	}
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	return userID, input.Amount, nil
}
