package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Escrow   EscrowConfig
	Fraud    FraudConfig
	Paystack PaystackConfig
	Notifier NotifierConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// URL returns the postgres connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// IsSQLite reports whether the ledger runs on the embedded sqlite driver
func (c DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(c.Driver, "sqlite")
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// EscrowConfig holds the escrow fee and timer settings
type EscrowConfig struct {
	ServiceFeePercent decimal.Decimal
	ClaimWindow       time.Duration
	MaxCodeAttempts   int
	AutoRelease       bool
	SweepInterval     time.Duration
	SweepBatchSize    int
}

// FraudConfig holds the fraud rule thresholds
type FraudConfig struct {
	SpamWindow     time.Duration
	VelocityLimit  int
	NewAccountAge  time.Duration
	PriceBanDays   int
	KeywordBanDays int
}

// PaystackConfig holds payment gateway settings
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

// NotifierConfig holds transactional email settings. An empty API key selects the log notifier.
type NotifierConfig struct {
	BrevoAPIKey string
	BrevoURL    string
	FromEmail   string
	FromName    string
	Timeout     time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "campus_market"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "campus_market.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Escrow: EscrowConfig{
			ServiceFeePercent: getEnvAsDecimal("ESCROW_SERVICE_FEE_PERCENT", decimal.NewFromInt(4)),
			ClaimWindow:       getEnvAsDuration("ESCROW_CLAIM_WINDOW", 24*time.Hour),
			MaxCodeAttempts:   getEnvAsInt("ESCROW_MAX_CODE_ATTEMPTS", 5),
			AutoRelease:       getEnvAsBool("ESCROW_AUTO_RELEASE", false),
			SweepInterval:     getEnvAsDuration("ESCROW_SWEEP_INTERVAL", 5*time.Minute),
			SweepBatchSize:    getEnvAsInt("ESCROW_SWEEP_BATCH", 100),
		},
		Fraud: FraudConfig{
			SpamWindow:     getEnvAsDuration("FRAUD_SPAM_WINDOW", 5*time.Second),
			VelocityLimit:  getEnvAsInt("FRAUD_VELOCITY_LIMIT", 3),
			NewAccountAge:  getEnvAsDuration("FRAUD_NEW_ACCOUNT_AGE", 24*time.Hour),
			PriceBanDays:   getEnvAsInt("FRAUD_PRICE_BAN_DAYS", 7),
			KeywordBanDays: getEnvAsInt("FRAUD_KEYWORD_BAN_DAYS", 3),
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:8080/api/v1/payments/return"),
			Timeout:     getEnvAsDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		},
		Notifier: NotifierConfig{
			BrevoAPIKey: getEnv("BREVO_API_KEY", ""),
			BrevoURL:    getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email"),
			FromEmail:   getEnv("EMAIL_FROM", "no-reply@campus-market.local"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Campus Market"),
			Timeout:     getEnvAsDuration("NOTIFIER_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if dec, err := decimal.NewFromString(value); err == nil {
			return dec
		}
	}
	return defaultValue
}
