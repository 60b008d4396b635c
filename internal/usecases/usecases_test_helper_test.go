package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/internal/infrastructure/ratelimit"
	"campus-market.backend/internal/infrastructure/repositories"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type initCall struct {
	Amount    decimal.Decimal
	Reference string
	Email     string
}

type fakeGateway struct {
	mu            sync.Mutex
	initCalls     []initCall
	initErr       error
	verifications map[string]*entities.GatewayVerification
	verifyErr     error
	recipients    []string
	recipientErr  error
	transfers     []decimal.Decimal
	transferErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{verifications: map[string]*entities.GatewayVerification{}}
}

func (g *fakeGateway) Initialize(_ context.Context, amount decimal.Decimal, reference, email string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return "", g.initErr
	}
	g.initCalls = append(g.initCalls, initCall{Amount: amount, Reference: reference, Email: email})
	return "https://checkout.test/" + reference, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*entities.GatewayVerification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if v, ok := g.verifications[reference]; ok {
		return v, nil
	}
	return &entities.GatewayVerification{Reference: reference, Status: entities.GatewayStatusAbandoned}, nil
}

func (g *fakeGateway) CreateRecipient(_ context.Context, name, accountNumber, bankCode string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.recipientErr != nil {
		return "", g.recipientErr
	}
	g.recipients = append(g.recipients, accountNumber)
	return "RCP_" + accountNumber, nil
}

func (g *fakeGateway) Transfer(_ context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.transferErr != nil {
		return "", g.transferErr
	}
	g.transfers = append(g.transfers, amount)
	return fmt.Sprintf("TRF_%d", len(g.transfers)), nil
}

type sentMessage struct {
	To, Subject, Body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Body: body})
	return true
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type testEnv struct {
	db          *gorm.DB
	clock       *testClock
	gateway     *fakeGateway
	notifier    *fakeNotifier
	users       *repositories.UserRepository
	products    *repositories.ProductRepository
	orders      *repositories.OrderRepository
	prices      *repositories.MarketPriceRepository
	topUps      *repositories.TopUpRepository
	withdrawals *repositories.WithdrawalRepository
	appeals     *repositories.AppealRepository

	fraud        *FraudEngine
	escrow       *EscrowUsecase
	settlement   *SettlementUsecase
	listings     *ListingUsecase
	accounts     *AccountUsecase
	payouts      *PayoutUsecase
	marketPrices *MarketPriceUsecase
}

func testFraudConfig() config.FraudConfig {
	return config.FraudConfig{
		SpamWindow:     5 * time.Second,
		VelocityLimit:  3,
		NewAccountAge:  24 * time.Hour,
		PriceBanDays:   7,
		KeywordBanDays: 3,
	}
}

func testEscrowConfig() config.EscrowConfig {
	return config.EscrowConfig{
		ServiceFeePercent: decimal.NewFromInt(4),
		ClaimWindow:       24 * time.Hour,
		MaxCodeAttempts:   5,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:uc_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db), "migrate")
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:          db,
		clock:       newTestClock(),
		gateway:     newFakeGateway(),
		notifier:    &fakeNotifier{},
		users:       repositories.NewUserRepository(db),
		products:    repositories.NewProductRepository(db),
		orders:      repositories.NewOrderRepository(db),
		prices:      repositories.NewMarketPriceRepository(db),
		topUps:      repositories.NewTopUpRepository(db),
		withdrawals: repositories.NewWithdrawalRepository(db),
		appeals:     repositories.NewAppealRepository(db),
	}
	uow := repositories.NewUnitOfWork(db)
	fraudCfg := testFraudConfig()

	env.fraud = NewFraudEngine(env.users, env.products, env.prices, ratelimit.NewMemoryLimiter(fraudCfg.SpamWindow), fraudCfg)
	env.fraud.SetClock(env.clock.Now)

	env.escrow = NewEscrowUsecase(env.orders, env.products, env.users, uow, env.gateway, env.notifier, testEscrowConfig())
	env.escrow.SetClock(env.clock.Now)
	env.escrow.hashCost = bcrypt.MinCost

	env.settlement = NewSettlementUsecase(env.orders, env.topUps, env.users, uow, env.escrow, env.gateway)
	env.settlement.now = env.clock.Now

	env.listings = NewListingUsecase(env.products, env.users, env.fraud)
	env.listings.SetClock(env.clock.Now)

	env.accounts = NewAccountUsecase(env.users, env.appeals, uow, env.fraud)
	env.accounts.SetClock(env.clock.Now)

	env.payouts = NewPayoutUsecase(env.users, env.withdrawals, uow, env.gateway)
	env.payouts.now = env.clock.Now

	env.marketPrices = NewMarketPriceUsecase(env.prices, uow)
	return env
}

// seedUser creates an established account (older than the velocity window)
func (e *testEnv) seedUser(t *testing.T, username string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     null.StringFrom(username + "@campus.edu"),
		Role:      entities.UserRoleSeller,
		CreatedAt: e.clock.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seedProduct(t *testing.T, sellerID uuid.UUID, title string, price int64) *entities.Product {
	t.Helper()
	p := &entities.Product{
		SellerID: sellerID,
		Title:    title,
		Price:    decimal.NewFromInt(price),
	}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) reloadUser(t *testing.T, id uuid.UUID) *entities.User {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func assertDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got.String())
}

func (e *testEnv) reloadOrder(t *testing.T, id uuid.UUID) *entities.Order {
	t.Helper()
	o, err := e.orders.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

// paidOrder creates an order for a 50000 listing and marks it paid. It returns the order and its code.
func (e *testEnv) paidOrder(t *testing.T, buyer, seller *entities.User) (*entities.Order, string) {
	t.Helper()
	ctx := context.Background()
	product := e.seedProduct(t, seller.ID, "Study desk", 50000)
	order, code, err := e.escrow.CreateOrder(ctx, buyer.ID, product.ID, "")
	require.NoError(t, err)
	_, applied, err := e.escrow.MarkPaid(ctx, order.PaymentReference)
	require.NoError(t, err)
	require.True(t, applied)
	return e.reloadOrder(t, order.ID), code
}

func (e *testEnv) shippedOrder(t *testing.T, buyer, seller *entities.User) (*entities.Order, string) {
	t.Helper()
	order, code := e.paidOrder(t, buyer, seller)
	shipped, err := e.escrow.MarkShipped(context.Background(), seller.ID, order.ID)
	require.NoError(t, err)
	return shipped, code
}
