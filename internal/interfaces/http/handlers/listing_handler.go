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

type listingService interface {
	CreateListing(ctx context.Context, sellerID uuid.UUID, input *entities.ListingInput) (*entities.Product, error)
	UpdateListing(ctx context.Context, sellerID, productID uuid.UUID, input *entities.ListingInput) (*entities.Product, error)
	DeleteListing(ctx context.Context, sellerID, productID uuid.UUID) error
	GetListing(ctx context.Context, productID uuid.UUID) (*entities.Product, error)
	ListListings(ctx context.Context, sellerID *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Product, int64, error)
}

// ListingHandler handles marketplace listing endpoints
type ListingHandler struct {
	listings listingService
}

func NewListingHandler(listings listingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// CreateListing creates a listing after the fraud checks
// POST /api/v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var input entities.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.listings.CreateListing(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"listing": product})
}

// UpdateListing edits the caller's listing
// PUT /api/v1/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	productID, err := uuidParam(c, "id", "listing")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.listings.UpdateListing(c.Request.Context(), userID, productID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listing": product})
}

// DeleteListing removes the caller's listing
// DELETE /api/v1/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	productID, err := uuidParam(c, "id", "listing")
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), userID, productID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Listing deleted"})
}

// GetListing returns one listing
// GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	productID, err := uuidParam(c, "id", "listing")
	if err != nil {
		response.Error(c, err)
		return
	}
	product, err := h.listings.GetListing(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listing": product})
}

// ListListings lists listings, optionally for one seller
// GET /api/v1/listings?sellerId=
func (h *ListingHandler) ListListings(c *gin.Context) {
	var sellerID *uuid.UUID
	if raw := c.Query("sellerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid seller ID"))
			return
		}
		sellerID = &id
	}

	pagination := paginationQuery(c)
	products, total, err := h.listings.ListListings(c.Request.Context(), sellerID, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	if products == nil {
		products = []*entities.Product{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": products,
		"meta":  utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}
