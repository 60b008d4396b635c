package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// ProductRepository implements listing data operations
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *entities.Product) error {
	if product.ID == uuid.Nil {
		product.ID = utils.GenerateUUIDv7()
	}
	m := &models.Product{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	product.CreatedAt = m.CreatedAt
	product.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	var m models.Product
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update edits a product owned by product.SellerID
func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	result := GetDB(ctx, r.db).Model(&models.Product{}).
		Where("id = ? AND seller_id = ?", product.ID, product.SellerID).
		Updates(map[string]interface{}{
			"title":       product.Title,
			"description": product.Description,
			"price":       product.Price,
			"category":    product.Category,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete soft deletes a product owned by sellerID
func (r *ProductRepository) Delete(ctx context.Context, id, sellerID uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ? AND seller_id = ?", id, sellerID).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists products, newest first, optionally for one seller
func (r *ProductRepository) List(ctx context.Context, sellerID *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Product, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Product{})
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var productModels []models.Product
	if err := query.Order("created_at DESC").Order("id DESC").
		Limit(pagination.Limit).Offset(pagination.CalculateOffset()).
		Find(&productModels).Error; err != nil {
		return nil, 0, err
	}

	products := make([]*entities.Product, 0, len(productModels))
	for i := range productModels {
		products = append(products, r.toEntity(&productModels[i]))
	}
	return products, totalCount, nil
}

// CountBySeller counts live listings of a seller
func (r *ProductRepository) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&count).Error
	return count, err
}

// RecentPricesByTitle returns prices of the newest products whose title contains fragment
func (r *ProductRepository) RecentPricesByTitle(ctx context.Context, fragment string, limit int) ([]decimal.Decimal, error) {
	var prices []decimal.Decimal
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	err := GetDB(ctx, r.db).Model(&models.Product{}).
		Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).
		Order("created_at DESC").
		Limit(limit).
		Pluck("price", &prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ProductRepository) toEntity(m *models.Product) *entities.Product {
	return &entities.Product{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
