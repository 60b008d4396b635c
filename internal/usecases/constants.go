package usecases

import (
	"time"

	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
)

// Suspicion score increments by rule severity
const (
	SpamScoreIncrement          = 10
	VelocityScoreIncrement      = 10
	KeywordScoreIncrement       = 20
	BankCollisionScoreIncrement = 20
)

// Price anomaly tuning
const (
	PriceHistoryLimit     = 50
	PriceMinSamples       = 5
	PriceSigmaMultiplier  = 2.5
	PriceMinSignalRatio   = 0.10
	PriceFallbackMinRatio = 0.5
	PriceFallbackMaxRatio = 2.0
)

// PriceFloor is the lowest statistical lower bound, in naira
var PriceFloor = decimal.NewFromInt(100)

// BlacklistKeywords are matched case-insensitively against title and description
var BlacklistKeywords = []string{
	"western union",
	"moneygram",
	"crypto payment",
	"whatsapp only",
	"dm for price",
	"logistics fee",
	"delivery fee only",
	"pay before delivery",
	"customs fee",
	"bitcoin",
}

const day = 24 * time.Hour

// DefaultMarketPrices seeds the reference table for staple goods
var DefaultMarketPrices = []entities.MarketPriceInput{
	{ItemName: "Rice (50kg)", MinPrice: decimal.NewFromInt(55000), MaxPrice: decimal.NewFromInt(75000), AvgPrice: decimal.NewFromInt(65000)},
	{ItemName: "Rice (Paint bucket)", MinPrice: decimal.NewFromInt(6500), MaxPrice: decimal.NewFromInt(9000), AvgPrice: decimal.NewFromInt(7500)},
	{ItemName: "Beans (Mudu)", MinPrice: decimal.NewFromInt(1200), MaxPrice: decimal.NewFromInt(1800), AvgPrice: decimal.NewFromInt(1500)},
	{ItemName: "Yam (Large)", MinPrice: decimal.NewFromInt(2500), MaxPrice: decimal.NewFromInt(4000), AvgPrice: decimal.NewFromInt(3200)},
	{ItemName: "Garri (Paint)", MinPrice: decimal.NewFromInt(2000), MaxPrice: decimal.NewFromInt(3000), AvgPrice: decimal.NewFromInt(2500)},
	{ItemName: "Palm Oil (Bottle)", MinPrice: decimal.NewFromInt(900), MaxPrice: decimal.NewFromInt(1500), AvgPrice: decimal.NewFromInt(1200)},
	{ItemName: "Eggs (Crate)", MinPrice: decimal.NewFromInt(3500), MaxPrice: decimal.NewFromInt(4500), AvgPrice: decimal.NewFromInt(4000)},
}
