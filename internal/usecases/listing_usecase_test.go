package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/utils"
)

func TestListing_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.seedUser(t, "vendor")
	stranger := env.seedUser(t, "stranger")

	created, err := env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{
		Title: "  Scientific calculator ", Description: "fx-991ES", Price: decimal.RequireFromString("7500.456"), Category: "electronics",
	})
	require.NoError(t, err)
	assert.Equal(t, "Scientific calculator", created.Title)
	assert.Equal(t, "7500.46", created.Price.String())

	got, err := env.listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, got.SellerID)

	env.clock.Advance(time.Minute)
	_, err = env.listings.UpdateListing(ctx, stranger.ID, created.ID, &entities.ListingInput{Title: "Mine now", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	updated, err := env.listings.UpdateListing(ctx, seller.ID, created.ID, &entities.ListingInput{
		Title: "Scientific calculator", Price: decimal.NewFromInt(7000),
	})
	require.NoError(t, err)
	assertDecimal(t, 7000, updated.Price)

	items, total, err := env.listings.ListListings(ctx, &seller.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, env.listings.DeleteListing(ctx, stranger.ID, created.ID), domainerrors.ErrNotFound)
	require.NoError(t, env.listings.DeleteListing(ctx, seller.ID, created.ID))
	_, err = env.listings.GetListing(ctx, created.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListing_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.seedUser(t, "vendor")

	_, err := env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{Title: "Free stuff", Price: decimal.Zero})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{Title: "  ", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = env.listings.CreateListing(ctx, uuid.New(), &entities.ListingInput{Title: "Ghost", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListing_BannedSellerCannotPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.seedUser(t, "vendor")
	until := env.clock.Now().Add(time.Hour)
	require.NoError(t, env.users.Ban(ctx, seller.ID, &until, "keyword"))

	_, err := env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{Title: "Lamp", Price: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, domainerrors.ErrAccountBanned)
	assert.Contains(t, domainerrors.FromError(err).Message, "keyword")

	env.clock.Advance(time.Hour)
	_, err = env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{Title: "Lamp", Price: decimal.NewFromInt(100)})
	assert.NoError(t, err)
}

func TestListing_UpdateIsScreenedAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.seedUser(t, "vendor")

	created, err := env.listings.CreateListing(ctx, seller.ID, &entities.ListingInput{Title: "Textbook", Price: decimal.NewFromInt(3000)})
	require.NoError(t, err)

	_, err = env.listings.UpdateListing(ctx, seller.ID, created.ID, &entities.ListingInput{
		Title: "Textbook", Description: "pay before delivery", Price: decimal.NewFromInt(3000),
	})
	require.ErrorIs(t, err, domainerrors.ErrFraudRejected)

	stored, err := env.listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Description)
	assert.True(t, env.reloadUser(t, seller.ID).IsBanned)
}
