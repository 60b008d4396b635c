package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/infrastructure/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db), "migrate")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:        uuid.New(),
		Username:  username,
		Role:      entities.UserRoleSeller,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID, sellerID uuid.UUID, status entities.OrderStatus) *entities.Order {
	t.Helper()
	o := &entities.Order{
		BuyerID:          buyerID,
		SellerID:         sellerID,
		ProductID:        uuid.New(),
		Amount:           decimal.NewFromInt(50000),
		ServiceFee:       decimal.NewFromInt(2000),
		SellerAmount:     decimal.NewFromInt(48000),
		Status:           status,
		DeliveryCodeHash: "hash",
		PaymentReference: "ORD-" + uuid.NewString(),
	}
	require.NoError(t, NewOrderRepository(db).Create(context.Background(), o))
	return o
}
