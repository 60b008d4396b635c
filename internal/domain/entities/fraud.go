package entities

import "time"

// FraudRule names one heuristic of the fraud engine
type FraudRule string

const (
	FraudRulePriceAnomaly  FraudRule = "price_anomaly"
	FraudRuleSpam          FraudRule = "spam"
	FraudRuleKeyword       FraudRule = "keyword"
	FraudRuleBankCollision FraudRule = "bank_collision"
	FraudRuleVelocity      FraudRule = "velocity"
)

// FraudVerdict is a positive rule outcome. A nil verdict means the action may proceed.
type FraudVerdict struct {
	Rule           FraudRule     `json:"rule"`
	Reason         string        `json:"reason"`
	Flagged        bool          `json:"flagged"`
	ScoreIncrement int           `json:"scoreIncrement,omitempty"`
	BanDuration    time.Duration `json:"-"`
}

func (v *FraudVerdict) Banned() bool {
	return v != nil && v.BanDuration > 0
}

// Action is the metrics label for the verdict's side effect
func (v *FraudVerdict) Action() string {
	switch {
	case v.Banned() && v.Flagged:
		return "flag_ban"
	case v.Banned():
		return "ban"
	case v.Flagged:
		return "flag"
	default:
		return "reject"
	}
}
