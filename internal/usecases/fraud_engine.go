package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/metrics"
)

// FraudEngine evaluates seller actions against heuristic rules.
// A positive verdict has already been applied to the user (flag and/or ban) when it is returned.
// Rule failures are logged and read as a clean result.
type FraudEngine struct {
	userRepo        repositories.UserRepository
	productRepo     repositories.ProductRepository
	marketPriceRepo repositories.MarketPriceRepository
	limiter         PostRateLimiter
	cfg             config.FraudConfig
	now             func() time.Time
}

// NewFraudEngine creates a new fraud engine
func NewFraudEngine(
	userRepo repositories.UserRepository,
	productRepo repositories.ProductRepository,
	marketPriceRepo repositories.MarketPriceRepository,
	limiter PostRateLimiter,
	cfg config.FraudConfig,
) *FraudEngine {
	return &FraudEngine{
		userRepo:        userRepo,
		productRepo:     productRepo,
		marketPriceRepo: marketPriceRepo,
		limiter:         limiter,
		cfg:             cfg,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (e *FraudEngine) SetClock(now func() time.Time) {
	e.now = now
}

// EvaluateListing runs spam, keyword, velocity and price rules in order and stops at the first verdict
func (e *FraudEngine) EvaluateListing(ctx context.Context, user *entities.User, title, description string, price decimal.Decimal) *entities.FraudVerdict {
	if v := e.CheckSpam(ctx, user); v != nil {
		return v
	}
	if v := e.CheckKeywords(ctx, user, title, description); v != nil {
		return v
	}
	if v := e.CheckVelocity(ctx, user); v != nil {
		return v
	}
	return e.CheckPrice(ctx, user, title, price)
}

// CheckPrice bans sellers whose price falls outside the statistical band of the matched reference item
func (e *FraudEngine) CheckPrice(ctx context.Context, user *entities.User, title string, price decimal.Decimal) *entities.FraudVerdict {
	return e.run(ctx, user, entities.FraudRulePriceAnomaly, func() (*entities.FraudVerdict, error) {
		refs, err := e.marketPriceRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load market prices: %w", err)
		}
		ref := matchReference(title, refs)
		if ref == nil {
			return nil, nil
		}

		history, err := e.productRepo.RecentPricesByTitle(ctx, strings.ToLower(strings.TrimSpace(ref.ItemName)), PriceHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("load price history: %w", err)
		}

		bounds := computePriceBounds(history, ref)
		if bounds.Contains(price) {
			return nil, nil
		}

		var reason string
		if price.LessThan(bounds.Min) {
			reason = fmt.Sprintf("Suspicious price for %s: %s is below the allowed minimum of %s",
				ref.ItemName, price.String(), bounds.Min.Round(2).String())
		} else {
			reason = fmt.Sprintf("Suspicious price for %s: %s is above the allowed maximum of %s",
				ref.ItemName, price.String(), bounds.Max.Round(2).String())
		}
		return &entities.FraudVerdict{
			Rule:        entities.FraudRulePriceAnomaly,
			Reason:      reason,
			BanDuration: time.Duration(e.cfg.PriceBanDays) * day,
		}, nil
	})
}

// CheckSpam rejects a second post inside the spam window
func (e *FraudEngine) CheckSpam(ctx context.Context, user *entities.User) *entities.FraudVerdict {
	return e.run(ctx, user, entities.FraudRuleSpam, func() (*entities.FraudVerdict, error) {
		if e.limiter == nil {
			return nil, nil
		}
		allowed, err := e.limiter.Allow(ctx, user.ID, e.now())
		if err != nil {
			return nil, fmt.Errorf("post limiter: %w", err)
		}
		if allowed {
			return nil, nil
		}
		return &entities.FraudVerdict{
			Rule:           entities.FraudRuleSpam,
			Reason:         "You are posting too fast. Wait a few seconds before posting again",
			Flagged:        true,
			ScoreIncrement: SpamScoreIncrement,
		}, nil
	})
}

// CheckKeywords flags and bans listings that use known scam phrases
func (e *FraudEngine) CheckKeywords(ctx context.Context, user *entities.User, title, description string) *entities.FraudVerdict {
	return e.run(ctx, user, entities.FraudRuleKeyword, func() (*entities.FraudVerdict, error) {
		content := strings.ToLower(title + " " + description)
		for _, keyword := range BlacklistKeywords {
			if !strings.Contains(content, keyword) {
				continue
			}
			return &entities.FraudVerdict{
				Rule:           entities.FraudRuleKeyword,
				Reason:         fmt.Sprintf("Listing uses blacklisted phrase %q", keyword),
				Flagged:        true,
				ScoreIncrement: KeywordScoreIncrement,
				BanDuration:    time.Duration(e.cfg.KeywordBanDays) * day,
			}, nil
		}
		return nil, nil
	})
}

// CheckBankCollision flags a user submitting an account number registered to someone else
func (e *FraudEngine) CheckBankCollision(ctx context.Context, user *entities.User, accountNumber string) *entities.FraudVerdict {
	return e.run(ctx, user, entities.FraudRuleBankCollision, func() (*entities.FraudVerdict, error) {
		accountNumber = strings.TrimSpace(accountNumber)
		if accountNumber == "" {
			return nil, nil
		}
		other, err := e.userRepo.FindOtherByAccountNumber(ctx, accountNumber, user.ID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lookup account number: %w", err)
		}
		return &entities.FraudVerdict{
			Rule:           entities.FraudRuleBankCollision,
			Reason:         fmt.Sprintf("Bank account is already registered to user %s (possible multi-accounting)", other.Username),
			Flagged:        true,
			ScoreIncrement: BankCollisionScoreIncrement,
		}, nil
	})
}

// CheckVelocity limits how many listings a new account may hold
func (e *FraudEngine) CheckVelocity(ctx context.Context, user *entities.User) *entities.FraudVerdict {
	return e.run(ctx, user, entities.FraudRuleVelocity, func() (*entities.FraudVerdict, error) {
		// accounts without a creation time predate the rule
		if user.CreatedAt.IsZero() || e.cfg.VelocityLimit <= 0 {
			return nil, nil
		}
		if e.now().Sub(user.CreatedAt) >= e.cfg.NewAccountAge {
			return nil, nil
		}
		count, err := e.productRepo.CountBySeller(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("count listings: %w", err)
		}
		if count < int64(e.cfg.VelocityLimit) {
			return nil, nil
		}
		return &entities.FraudVerdict{
			Rule: entities.FraudRuleVelocity,
			Reason: fmt.Sprintf("New accounts may post at most %d listings in their first %d hours",
				e.cfg.VelocityLimit, int(e.cfg.NewAccountAge.Hours())),
			Flagged:        true,
			ScoreIncrement: VelocityScoreIncrement,
		}, nil
	})
}

func (e *FraudEngine) run(ctx context.Context, user *entities.User, rule entities.FraudRule, check func() (*entities.FraudVerdict, error)) *entities.FraudVerdict {
	if user == nil {
		return nil
	}
	verdict, err := check()
	if err != nil {
		logger.Warn(ctx, "Fraud rule failed open",
			zap.String("rule", string(rule)),
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	if verdict == nil {
		return nil
	}
	e.apply(ctx, user, verdict)
	return verdict
}

// apply persists the verdict's side effects. Write failures are logged; the verdict still stands.
func (e *FraudEngine) apply(ctx context.Context, user *entities.User, v *entities.FraudVerdict) {
	fields := []zap.Field{
		zap.String("rule", string(v.Rule)),
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("reason", v.Reason),
	}

	if v.Flagged {
		if err := e.userRepo.Flag(ctx, user.ID, v.ScoreIncrement); err != nil {
			logger.Error(ctx, "Failed to flag user", append(fields, zap.Error(err))...)
		} else {
			user.IsFlagged = true
			user.SuspicionScore += v.ScoreIncrement
		}
	}

	if v.Banned() {
		until := e.now().Add(v.BanDuration).UTC()
		if err := e.userRepo.Ban(ctx, user.ID, &until, v.Reason); err != nil {
			logger.Error(ctx, "Failed to ban user", append(fields, zap.Error(err))...)
		} else {
			user.IsBanned = true
			user.BanExpires.SetValid(until)
			user.BanReason = v.Reason
		}
		fields = append(fields, zap.Time("ban_expires", until))
	}

	metrics.RecordFraudVerdict(string(v.Rule), v.Action())
	logger.Warn(ctx, "Fraud verdict", fields...)
}
