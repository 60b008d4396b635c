package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
)

type accountService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	CheckAccess(ctx context.Context, userID uuid.UUID) (entities.AccessStatus, error)
	UpdateBankDetails(ctx context.Context, userID uuid.UUID, input *entities.BankDetailsInput) (*entities.User, error)
	SubmitAppeal(ctx context.Context, userID uuid.UUID, input *entities.AppealInput) (*entities.Appeal, error)
}

// AccountHandler handles the caller's own account
type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// GetProfile returns the caller with their current access status
// GET /api/v1/account
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.accounts.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	access, err := h.accounts.CheckAccess(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "access": access})
}

// UpdateBankDetails sets payout details
// PUT /api/v1/account/bank
func (h *AccountHandler) UpdateBankDetails(c *gin.Context) {
	var input entities.BankDetailsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.accounts.UpdateBankDetails(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// SubmitAppeal lets a banned user ask for review. It sits outside the access gate.
// POST /api/v1/account/appeal
func (h *AccountHandler) SubmitAppeal(c *gin.Context) {
	var input entities.AppealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appeal, err := h.accounts.SubmitAppeal(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"appeal": appeal})
}
