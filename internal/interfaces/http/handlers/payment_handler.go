package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/pkg/logger"
)

type settlementService interface {
	VerifyAndReconcile(ctx context.Context, reference string) (*entities.SettlementResult, error)
}

// PaymentHandler receives gateway outcomes
type PaymentHandler struct {
	settlement settlementService
}

func NewPaymentHandler(settlement settlementService) *PaymentHandler {
	return &PaymentHandler{settlement: settlement}
}

// Callback handles a signed gateway webhook. The body only names the reference;
// the outcome and amount come from the gateway's verify endpoint. Repeats answer 200 with applied=false.
// POST /api/v1/payments/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	var input entities.PaystackWebhookEvent
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	reference := strings.TrimSpace(input.Data.Reference)

	logger.Info(c.Request.Context(), "Payment callback received",
		zap.String("event", input.Event),
		zap.String("reference", reference),
	)
	if input.Event != entities.PaystackChargeSuccess {
		response.Success(c, http.StatusOK, gin.H{"reference": reference, "applied": false})
		return
	}

	result, err := h.settlement.VerifyAndReconcile(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Verify asks the gateway for the outcome of reference and reconciles it
// GET /api/v1/payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		response.Error(c, domainerrors.BadRequest("reference is required"))
		return
	}
	result, err := h.settlement.VerifyAndReconcile(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
