package repositories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/domain/entities"
)

func TestMarketPriceRepository_UpsertAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewMarketPriceRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Rice (50kg)", "Beans (Mudu)"} {
		require.NoError(t, repo.Upsert(ctx, &entities.MarketPrice{
			ItemName: name,
			MinPrice: decimal.NewFromInt(1000),
			MaxPrice: decimal.NewFromInt(2000),
			AvgPrice: decimal.NewFromInt(1500),
		}))
	}

	require.NoError(t, repo.Upsert(ctx, &entities.MarketPrice{
		ItemName: "Rice (50kg)",
		MinPrice: decimal.NewFromInt(55000),
		MaxPrice: decimal.NewFromInt(75000),
		AvgPrice: decimal.NewFromInt(65000),
	}))

	prices, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "Rice (50kg)", prices[0].ItemName)
	assert.Equal(t, "55000", prices[0].MinPrice.String())
	assert.Equal(t, "Beans (Mudu)", prices[1].ItemName)
}
