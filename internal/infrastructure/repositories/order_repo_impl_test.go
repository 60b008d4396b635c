package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/utils"
)

func TestOrderRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	o := seedOrder(t, db, uuid.New(), uuid.New(), "")

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusPending, got.Status)
	assert.Equal(t, "48000", got.SellerAmount.String())
	assert.False(t, got.DeliveredAt.Valid)

	byRef, err := repo.GetByReference(ctx, o.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byRef.ID)

	_, err = repo.GetByReference(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOrderRepository_TransitionsAreConditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	o := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusPending)

	shipped, err := repo.MarkShipped(ctx, o.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, shipped, "cannot ship an unpaid order")

	paid, err := repo.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, paid)
	paid, err = repo.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	shipped, err = repo.MarkShipped(ctx, o.ID, at)
	require.NoError(t, err)
	assert.True(t, shipped)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusShipped, got.Status)
	assert.True(t, got.SellerConfirmed)
	require.True(t, got.DeliveredAt.Valid)
	assert.True(t, at.Equal(got.DeliveredAt.Time))
}

func TestOrderRepository_CompleteOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	o := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusShipped)

	completion := entities.OrderCompletion{
		From:          []entities.OrderStatus{entities.OrderStatusPaidPendingDelivery, entities.OrderStatusShipped},
		CodeConfirmed: true,
		At:            time.Now(),
	}
	ok, err := repo.Complete(ctx, o.ID, completion)
	require.NoError(t, err)
	assert.True(t, ok)

	completion.From = append(completion.From, entities.OrderStatusCompleted)
	ok, err = repo.Complete(ctx, o.ID, completion)
	require.NoError(t, err)
	assert.False(t, ok, "completed is terminal even if listed as a source")

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusCompleted, got.Status)
	assert.True(t, got.EscrowReleased)
	assert.True(t, got.CodeConfirmedAt.Valid)
	assert.True(t, got.CompletedAt.Valid)
	assert.False(t, got.BuyerConfirmed)
}

func TestOrderRepository_DisputeBlocksGuardedCompletion(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	o := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusShipped)

	ok, err := repo.OpenDispute(ctx, o.ID, "item never arrived")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.OpenDispute(ctx, o.ID, "again")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Complete(ctx, o.ID, entities.OrderCompletion{
		From:              []entities.OrderStatus{entities.OrderStatusShipped},
		RequireUndisputed: true,
		At:                time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 0; i < 2; i++ {
		ok, err = repo.ReserveCodeAttempt(ctx, o.ID, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err = repo.ReserveCodeAttempt(ctx, o.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "limit reached")
	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CodeAttempts)
	assert.Equal(t, "item never arrived", got.DisputeReason)

	ok, err = repo.ResolveDispute(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.Disputed)
	assert.Zero(t, got.CodeAttempts)

	ok, err = repo.ReserveCodeAttempt(ctx, o.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok, "zero limit never locks")

	ok, err = repo.ReserveCodeAttempt(ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderRepository_ListMatured(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	old := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusPaidPendingDelivery)
	_, err := repo.MarkShipped(ctx, old.ID, now.Add(-25*time.Hour))
	require.NoError(t, err)

	fresh := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusPaidPendingDelivery)
	_, err = repo.MarkShipped(ctx, fresh.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	disputed := seedOrder(t, db, uuid.New(), uuid.New(), entities.OrderStatusPaidPendingDelivery)
	_, err = repo.MarkShipped(ctx, disputed.ID, now.Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = repo.OpenDispute(ctx, disputed.ID, "wrong item")
	require.NoError(t, err)

	matured, err := repo.ListMatured(ctx, now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, matured, 1)
	assert.Equal(t, old.ID, matured[0].ID)
}

func TestOrderRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	buyer, seller := uuid.New(), uuid.New()

	seedOrder(t, db, buyer, seller, entities.OrderStatusPending)
	seedOrder(t, db, buyer, uuid.New(), entities.OrderStatusShipped)
	seedOrder(t, db, uuid.New(), buyer, entities.OrderStatusPending)

	asBuyer, total, err := repo.List(ctx, entities.OrderListFilter{UserID: buyer, Role: "buyer"}, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, asBuyer, 2)

	_, total, err = repo.List(ctx, entities.OrderListFilter{UserID: buyer}, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	shipped, total, err := repo.List(ctx, entities.OrderListFilter{UserID: buyer, Status: entities.OrderStatusShipped}, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entities.OrderStatusShipped, shipped[0].Status)

	asSeller, _, err := repo.List(ctx, entities.OrderListFilter{UserID: seller, Role: "seller"}, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Len(t, asSeller, 1)
}
