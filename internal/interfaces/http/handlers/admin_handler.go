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

type moderationService interface {
	ListFlagged(ctx context.Context, pagination utils.PaginationParams) ([]*entities.User, int64, error)
	ListAppeals(ctx context.Context, status entities.AppealStatus, pagination utils.PaginationParams) ([]*entities.Appeal, int64, error)
	Ban(ctx context.Context, userID uuid.UUID, input *entities.BanInput) (*entities.User, error)
	Unban(ctx context.Context, adminID, userID uuid.UUID) (*entities.User, error)
}

type disputeService interface {
	ResolveDispute(ctx context.Context, orderID uuid.UUID) (*entities.Order, error)
}

type marketPriceService interface {
	Seed(ctx context.Context, inputs []entities.MarketPriceInput) ([]*entities.MarketPrice, error)
	SeedDefaults(ctx context.Context) ([]*entities.MarketPrice, error)
	List(ctx context.Context) ([]*entities.MarketPrice, error)
}

// AdminHandler handles moderation and reference data endpoints
type AdminHandler struct {
	moderation   moderationService
	disputes     disputeService
	marketPrices marketPriceService
}

func NewAdminHandler(moderation moderationService, disputes disputeService, marketPrices marketPriceService) *AdminHandler {
	return &AdminHandler{
		moderation:   moderation,
		disputes:     disputes,
		marketPrices: marketPrices,
	}
}

// ListFlagged lists flagged users, most suspicious first
// GET /api/v1/admin/users/flagged
func (h *AdminHandler) ListFlagged(c *gin.Context) {
	pagination := paginationQuery(c)
	users, total, err := h.moderation.ListFlagged(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	if users == nil {
		users = []*entities.User{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": users,
		"meta":  utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// ListAppeals lists appeals, open ones by default
// GET /api/v1/admin/appeals?status=
func (h *AdminHandler) ListAppeals(c *gin.Context) {
	status := entities.AppealStatus(c.DefaultQuery("status", string(entities.AppealStatusOpen)))
	if status != entities.AppealStatusOpen && status != entities.AppealStatusResolved {
		response.Error(c, domainerrors.BadRequest("status must be open or resolved"))
		return
	}
	pagination := paginationQuery(c)
	appeals, total, err := h.moderation.ListAppeals(c.Request.Context(), status, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	if appeals == nil {
		appeals = []*entities.Appeal{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": appeals,
		"meta":  utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// BanUser bans a user. days=0 is permanent.
// POST /api/v1/admin/users/:id/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, err := uuidParam(c, "id", "user")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.BanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.moderation.Ban(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UnbanUser lifts a ban and resolves the user's open appeal
// POST /api/v1/admin/users/:id/unban
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	userID, err := uuidParam(c, "id", "user")
	if err != nil {
		response.Error(c, err)
		return
	}
	adminID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.moderation.Unban(c.Request.Context(), adminID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ResolveDispute clears an order's dispute
// POST /api/v1/admin/orders/:id/resolve-dispute
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	orderID, err := uuidParam(c, "id", "order")
	if err != nil {
		response.Error(c, err)
		return
	}
	order, err := h.disputes.ResolveDispute(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}

// SeedMarketPrices upserts reference prices. An empty body loads the built-in set.
// POST /api/v1/admin/market-prices/seed
func (h *AdminHandler) SeedMarketPrices(c *gin.Context) {
	var input struct {
		Items []entities.MarketPriceInput `json:"items" binding:"dive"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	var (
		prices []*entities.MarketPrice
		err    error
	)
	if len(input.Items) == 0 {
		prices, err = h.marketPrices.SeedDefaults(c.Request.Context())
	} else {
		prices, err = h.marketPrices.Seed(c.Request.Context(), input.Items)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": prices})
}

// ListMarketPrices lists reference prices
// GET /api/v1/admin/market-prices
func (h *AdminHandler) ListMarketPrices(c *gin.Context) {
	prices, err := h.marketPrices.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if prices == nil {
		prices = []*entities.MarketPrice{}
	}
	response.Success(c, http.StatusOK, gin.H{"items": prices})
}
