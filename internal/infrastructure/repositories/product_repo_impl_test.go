package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/utils"
)

func createProduct(t *testing.T, repo *ProductRepository, sellerID uuid.UUID, title string, price int64) *entities.Product {
	t.Helper()
	p := &entities.Product{SellerID: sellerID, Title: title, Price: decimal.NewFromInt(price)}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProductRepository_CRUDScopedToSeller(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	p := createProduct(t, repo, seller, "Rice (50kg)", 60000)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rice (50kg)", got.Title)
	assert.Equal(t, "60000", got.Price.String())

	foreign := *got
	foreign.SellerID = uuid.New()
	foreign.Title = "stolen"
	assert.ErrorIs(t, repo.Update(ctx, &foreign), domainerrors.ErrNotFound)

	got.Price = decimal.NewFromInt(62000)
	require.NoError(t, repo.Update(ctx, got))

	assert.ErrorIs(t, repo.Delete(ctx, p.ID, uuid.New()), domainerrors.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, p.ID, seller))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProductRepository_CountAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	createProduct(t, repo, seller, "Yam (Large)", 3000)
	createProduct(t, repo, seller, "Eggs (Crate)", 4000)
	createProduct(t, repo, uuid.New(), "Garri (Paint)", 2500)

	count, err := repo.CountBySeller(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	items, total, err := repo.List(ctx, &seller, utils.GetPaginationParams(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 1)

	_, total, err = repo.List(ctx, nil, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestProductRepository_RecentPricesByTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	createProduct(t, repo, seller, "Fresh RICE (Paint Bucket) from Kano", 7000)
	createProduct(t, repo, seller, "rice (paint bucket)", 8000)
	createProduct(t, repo, seller, "Rice (50kg)", 60000)
	createProduct(t, repo, seller, "100% pure palm oil", 1200)

	prices, err := repo.RecentPricesByTitle(ctx, "Rice (Paint bucket)", 50)
	require.NoError(t, err)
	assert.Len(t, prices, 2)

	prices, err = repo.RecentPricesByTitle(ctx, "rice", 1)
	require.NoError(t, err)
	assert.Len(t, prices, 1)

	// LIKE wildcards in the fragment are literal
	prices, err = repo.RecentPricesByTitle(ctx, "0%", 50)
	require.NoError(t, err)
	assert.Len(t, prices, 1)
}
