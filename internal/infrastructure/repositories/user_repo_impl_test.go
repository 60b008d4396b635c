package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{Username: "ada", Email: null.StringFrom("ada@campus.edu")}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, entities.UserRoleBuyer, u.Role)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, "ada@campus.edu", got.Email.String)
	assert.True(t, got.WalletBalance.IsZero())
	assert.False(t, got.IsBanned)

	byName, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_FlagIsRelative(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "ada")

	require.NoError(t, repo.Flag(ctx, u.ID, 10))
	require.NoError(t, repo.Flag(ctx, u.ID, 20))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFlagged)
	assert.Equal(t, 30, got.SuspicionScore)

	assert.ErrorIs(t, repo.Flag(ctx, uuid.New(), 10), domainerrors.ErrNotFound)
}

func TestUserRepository_BanAndUnbanKeepLegacyColumnInSync(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "ada")

	until := time.Now().UTC().Add(72 * time.Hour)
	require.NoError(t, repo.Ban(ctx, u.ID, &until, "Prohibited keyword"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBanned)
	require.True(t, got.BanExpires.Valid)
	assert.WithinDuration(t, until, got.BanExpires.Time, time.Second)
	assert.Equal(t, entities.AccessBannedUntil, got.Access(time.Now()).State)

	var m models.User
	require.NoError(t, db.First(&m, "id = ?", u.ID).Error)
	assert.True(t, m.IsBlocked)

	require.NoError(t, repo.Unban(ctx, u.ID))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBanned)
	assert.False(t, got.BanExpires.Valid)
	assert.Empty(t, got.BanReason)
	require.NoError(t, db.First(&m, "id = ?", u.ID).Error)
	assert.False(t, m.IsBlocked)

	require.NoError(t, repo.Ban(ctx, u.ID, nil, "manual"))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AccessBannedPermanent, got.Access(time.Now()).State)
}

func TestUserRepository_LapsedBanClearsLegacyColumnOnRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "grace")

	until := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Ban(ctx, u.ID, &until, "spam"))
	var m models.User
	require.NoError(t, db.First(&m, "id = ?", u.ID).Error)
	require.True(t, m.IsBlocked)

	// the ban lapses without anyone calling Unban
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).
		UpdateColumn("ban_expires", time.Now().UTC().Add(-time.Minute)).Error)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AccessActive, got.Access(time.Now()).State)
	require.NoError(t, db.First(&m, "id = ?", u.ID).Error)
	assert.False(t, m.IsBlocked)
	assert.True(t, m.IsBanned, "ban history is kept")

	// a row written with a stale flag is corrected the same way
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{"is_banned": true, "ban_expires": nil, "is_blocked": false}).Error)
	_, err = repo.GetByUsername(ctx, "grace")
	require.NoError(t, err)
	require.NoError(t, db.First(&m, "id = ?", u.ID).Error)
	assert.True(t, m.IsBlocked)
}

func TestUserRepository_WalletCreditAndDebit(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "ada")

	require.NoError(t, repo.CreditWallet(ctx, u.ID, decimal.NewFromInt(48000)))

	ok, err := repo.DebitWallet(ctx, u.ID, decimal.NewFromInt(50000))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DebitWallet(ctx, u.ID, decimal.NewFromInt(8000))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "40000", got.WalletBalance.String())

	assert.ErrorIs(t, repo.CreditWallet(ctx, uuid.New(), decimal.NewFromInt(1)), domainerrors.ErrNotFound)
}

func TestUserRepository_BankDetailsAndCollisionLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "ada")
	b := seedUser(t, db, "bola")

	input := entities.BankDetailsInput{BankName: "GTBank", AccountNumber: "0123456789", BankCode: "058"}
	require.NoError(t, repo.UpdateBankDetails(ctx, a.ID, input))
	require.NoError(t, repo.SetRecipientCode(ctx, a.ID, "RCP_1"))

	other, err := repo.FindOtherByAccountNumber(ctx, "0123456789", b.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", other.Username)

	_, err = repo.FindOtherByAccountNumber(ctx, "0123456789", a.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// same details keep the cached recipient
	require.NoError(t, repo.UpdateBankDetails(ctx, a.ID, input))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "RCP_1", got.RecipientCode.String)

	input.AccountNumber = "9876543210"
	require.NoError(t, repo.UpdateBankDetails(ctx, a.ID, input))
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.RecipientCode.Valid)
	assert.True(t, got.HasBankDetails())

	// the unique index backs the application check
	assert.Error(t, repo.UpdateBankDetails(ctx, b.ID, input))
}

func TestUserRepository_ListFlaggedAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	a := seedUser(t, db, "ada")
	b := seedUser(t, db, "bola")
	seedUser(t, db, "chidi")

	require.NoError(t, repo.Flag(ctx, a.ID, 10))
	require.NoError(t, repo.Flag(ctx, b.ID, 40))

	users, total, err := repo.ListFlagged(ctx, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "bola", users[0].Username)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domainerrors.ErrNotFound)
}

func TestUserRepository_DeleteKeepsOrders(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()
	buyer := seedUser(t, db, "buyer")
	seller := seedUser(t, db, "seller")
	o := seedOrder(t, db, buyer.ID, seller.ID, entities.OrderStatusPending)

	require.NoError(t, users.Delete(ctx, seller.ID))

	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, got.SellerID)
}
