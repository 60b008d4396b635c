package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/utils"
)

// ListingUsecase gates product writes behind access checks and the fraud engine
type ListingUsecase struct {
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	fraud       *FraudEngine
	now         func() time.Time
}

// NewListingUsecase creates a new listing usecase
func NewListingUsecase(productRepo repositories.ProductRepository, userRepo repositories.UserRepository, fraud *FraudEngine) *ListingUsecase {
	return &ListingUsecase{
		productRepo: productRepo,
		userRepo:    userRepo,
		fraud:       fraud,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (u *ListingUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// CreateListing creates a product when the seller is active and every fraud rule passes
func (u *ListingUsecase) CreateListing(ctx context.Context, sellerID uuid.UUID, input *entities.ListingInput) (*entities.Product, error) {
	seller, err := u.activeSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := validateListing(input); err != nil {
		return nil, err
	}

	if verdict := u.fraud.EvaluateListing(ctx, seller, input.Title, input.Description, input.Price); verdict != nil {
		return nil, domainerrors.FraudRejection(verdict)
	}

	product := &entities.Product{
		SellerID:    seller.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		Category:    strings.TrimSpace(input.Category),
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Listing created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", seller.ID.String()),
	)
	return product, nil
}

// UpdateListing edits the seller's own product. Content and price are screened again.
func (u *ListingUsecase) UpdateListing(ctx context.Context, sellerID, productID uuid.UUID, input *entities.ListingInput) (*entities.Product, error) {
	seller, err := u.activeSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := validateListing(input); err != nil {
		return nil, err
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("listing not found")
		}
		return nil, err
	}
	if product.SellerID != seller.ID {
		return nil, domainerrors.NotFound("listing not found")
	}

	if verdict := u.fraud.CheckKeywords(ctx, seller, input.Title, input.Description); verdict != nil {
		return nil, domainerrors.FraudRejection(verdict)
	}
	if verdict := u.fraud.CheckPrice(ctx, seller, input.Title, input.Price); verdict != nil {
		return nil, domainerrors.FraudRejection(verdict)
	}

	product.Title = strings.TrimSpace(input.Title)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price.Round(2)
	product.Category = strings.TrimSpace(input.Category)
	if err := u.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("listing not found")
		}
		return nil, err
	}
	return product, nil
}

// DeleteListing removes the seller's own product
func (u *ListingUsecase) DeleteListing(ctx context.Context, sellerID, productID uuid.UUID) error {
	if err := u.productRepo.Delete(ctx, productID, sellerID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("listing not found")
		}
		return err
	}
	return nil
}

// GetListing gets a product by ID
func (u *ListingUsecase) GetListing(ctx context.Context, productID uuid.UUID) (*entities.Product, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("listing not found")
		}
		return nil, err
	}
	return product, nil
}

// ListListings lists products, optionally for one seller
func (u *ListingUsecase) ListListings(ctx context.Context, sellerID *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	return u.productRepo.List(ctx, sellerID, pagination)
}

func (u *ListingUsecase) activeSeller(ctx context.Context, sellerID uuid.UUID) (*entities.User, error) {
	seller, err := u.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	if access := seller.Access(u.now()); access.IsBanned() {
		return nil, domainerrors.AccountBanned(access.Reason, access.Until)
	}
	return seller, nil
}

func validateListing(input *entities.ListingInput) error {
	if input == nil || strings.TrimSpace(input.Title) == "" {
		return domainerrors.BadRequest("title is required")
	}
	if !input.Price.IsPositive() {
		return domainerrors.BadRequest("price must be greater than zero")
	}
	return nil
}
