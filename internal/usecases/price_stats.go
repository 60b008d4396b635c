package usecases

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
)

type priceBounds struct {
	Min      decimal.Decimal
	Max      decimal.Decimal
	Mean     decimal.Decimal
	StdDev   decimal.Decimal
	Samples  int
	Fallback bool
}

func (b priceBounds) Contains(price decimal.Decimal) bool {
	return !price.LessThan(b.Min) && !price.GreaterThan(b.Max)
}

// matchReference picks the reference whose lowercased name is the longest substring of title.
// References are scanned in order, so equal lengths resolve to the earlier one.
func matchReference(title string, refs []*entities.MarketPrice) *entities.MarketPrice {
	lowered := strings.ToLower(title)
	var best *entities.MarketPrice
	bestLen := 0
	for _, ref := range refs {
		name := strings.ToLower(strings.TrimSpace(ref.ItemName))
		if name == "" || !strings.Contains(lowered, name) {
			continue
		}
		if len(name) > bestLen {
			best = ref
			bestLen = len(name)
		}
	}
	return best
}

// computePriceBounds combines listing history with the reference's avg/min/max as extra samples.
func computePriceBounds(history []decimal.Decimal, ref *entities.MarketPrice) priceBounds {
	samples := make([]float64, 0, len(history)+3)
	for _, p := range history {
		samples = append(samples, p.InexactFloat64())
	}
	samples = append(samples,
		ref.AvgPrice.InexactFloat64(),
		ref.MinPrice.InexactFloat64(),
		ref.MaxPrice.InexactFloat64(),
	)

	n := float64(len(samples))
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / n

	var sq float64
	for _, s := range samples {
		sq += (s - mean) * (s - mean)
	}
	sigma := math.Sqrt(sq / n)

	bounds := priceBounds{
		Mean:    decimal.NewFromFloat(mean),
		StdDev:  decimal.NewFromFloat(sigma),
		Samples: len(samples),
	}

	if len(samples) < PriceMinSamples || mean == 0 || sigma < PriceMinSignalRatio*mean {
		bounds.Fallback = true
		bounds.Min = ref.MinPrice.Mul(decimal.NewFromFloat(PriceFallbackMinRatio))
		bounds.Max = ref.MaxPrice.Mul(decimal.NewFromFloat(PriceFallbackMaxRatio))
		return bounds
	}

	lower := decimal.NewFromFloat(mean - PriceSigmaMultiplier*sigma)
	if lower.LessThan(PriceFloor) {
		lower = PriceFloor
	}
	bounds.Min = lower
	bounds.Max = decimal.NewFromFloat(mean + PriceSigmaMultiplier*sigma)
	return bounds
}
