package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/infrastructure/gateway"
	"campus-market.backend/internal/infrastructure/jobs"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/internal/infrastructure/notifier"
	"campus-market.backend/internal/infrastructure/ratelimit"
	"campus-market.backend/internal/infrastructure/repositories"
	"campus-market.backend/internal/interfaces/http/handlers"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/internal/usecases"
	"campus-market.backend/pkg/jwt"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/metrics"
	"campus-market.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		gormCfg := &gorm.Config{
			PrepareStmt: false,
			NowFunc:     func() time.Time { return time.Now().UTC() },
		}
		if cfg.IsSQLite() {
			return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		}
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL(),
			PreferSimpleProtocol: true,
		}), gormCfg)
	}
	migrateDB = models.AutoMigrate
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Redis.Enabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database not available: %w", err)
	}
	if err := migrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if cfg.Paystack.SecretKey == "" {
		logger.Warn(ctx, "PAYSTACK_SECRET_KEY is empty, payment webhooks will be rejected")
	}
	logger.Info(ctx, "Connected to database", zap.Bool("sqlite", cfg.Database.IsSQLite()))

	metrics.Init()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	marketPriceRepo := repositories.NewMarketPriceRepository(db)
	topUpRepo := repositories.NewTopUpRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	appealRepo := repositories.NewAppealRepository(db)
	uow := repositories.NewUnitOfWork(db)

	mailer := notifier.NewAsync(newMailSender(cfg.Notifier), cfg.Notifier.Timeout)
	defer mailer.Wait()

	paystack := gateway.NewPaystackClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.CallbackURL, cfg.Paystack.Timeout)

	fraudEngine := usecases.NewFraudEngine(userRepo, productRepo, marketPriceRepo, newPostLimiter(cfg.Fraud), cfg.Fraud)
	escrowUsecase := usecases.NewEscrowUsecase(orderRepo, productRepo, userRepo, uow, paystack, mailer, cfg.Escrow)
	settlementUsecase := usecases.NewSettlementUsecase(orderRepo, topUpRepo, userRepo, uow, escrowUsecase, paystack)
	listingUsecase := usecases.NewListingUsecase(productRepo, userRepo, fraudEngine)
	accountUsecase := usecases.NewAccountUsecase(userRepo, appealRepo, uow, fraudEngine)
	payoutUsecase := usecases.NewPayoutUsecase(userRepo, withdrawalRepo, uow, paystack)
	marketPriceUsecase := usecases.NewMarketPriceUsecase(marketPriceRepo, uow)

	if cfg.Server.Env == "development" {
		if _, err := marketPriceUsecase.SeedDefaults(ctx); err != nil {
			logger.Warn(ctx, "Failed to seed market prices", zap.Error(err))
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var releaseJob *jobs.EscrowReleaseJob
	if cfg.Escrow.AutoRelease {
		releaseJob = jobs.NewEscrowReleaseJob(escrowUsecase, newSweepLocker(), cfg.Escrow.SweepInterval, cfg.Escrow.SweepBatchSize)
		go releaseJob.Start(jobCtx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.PrometheusMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	r.GET("/metrics", metrics.Handler())
	registerAPIV1Routes(r, routeDeps{
		listingHandler: handlers.NewListingHandler(listingUsecase),
		orderHandler:   handlers.NewOrderHandler(escrowUsecase),
		walletHandler:  handlers.NewWalletHandler(settlementUsecase, payoutUsecase),
		accountHandler: handlers.NewAccountHandler(accountUsecase),
		paymentHandler: handlers.NewPaymentHandler(settlementUsecase),
		adminHandler:   handlers.NewAdminHandler(accountUsecase, escrowUsecase, marketPriceUsecase),
		authMiddleware: middleware.AuthMiddleware(jwtService),
		accessGate:     middleware.AccessGate(accountUsecase),
		webhookAuth:    middleware.PaystackSignature(cfg.Paystack.SecretKey),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "Shutting down server")
		if releaseJob != nil {
			releaseJob.Stop()
		}
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "Campus market backend starting", zap.String("port", cfg.Server.Port))

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

type mailSender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

func newMailSender(cfg config.NotifierConfig) mailSender {
	if cfg.BrevoAPIKey == "" {
		return notifier.NewLogNotifier()
	}
	return notifier.NewBrevoNotifier(cfg.BrevoURL, cfg.BrevoAPIKey, cfg.FromEmail, cfg.FromName, cfg.Timeout)
}

// newPostLimiter shares the spam window across instances when Redis is up
func newPostLimiter(cfg config.FraudConfig) usecases.PostRateLimiter {
	if client := redis.GetClient(); client != nil {
		return redis.NewPostLimiter(client, cfg.SpamWindow)
	}
	return ratelimit.NewMemoryLimiter(cfg.SpamWindow)
}

type sweepLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

func newSweepLocker() sweepLocker {
	if client := redis.GetClient(); client != nil {
		return redis.NewLock(client)
	}
	return nil
}
