package usecases

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
)

// MarketPriceUsecase maintains the reference prices used by the price anomaly rule
type MarketPriceUsecase struct {
	repo repositories.MarketPriceRepository
	uow  repositories.UnitOfWork
}

func NewMarketPriceUsecase(repo repositories.MarketPriceRepository, uow repositories.UnitOfWork) *MarketPriceUsecase {
	return &MarketPriceUsecase{repo: repo, uow: uow}
}

// Seed upserts every row by item name in one transaction
func (u *MarketPriceUsecase) Seed(ctx context.Context, inputs []entities.MarketPriceInput) ([]*entities.MarketPrice, error) {
	if len(inputs) == 0 {
		return nil, domainerrors.BadRequest("at least one market price is required")
	}
	for _, in := range inputs {
		if strings.TrimSpace(in.ItemName) == "" {
			return nil, domainerrors.BadRequest("item name is required")
		}
		if !in.MinPrice.IsPositive() || in.MaxPrice.LessThan(in.MinPrice) {
			return nil, domainerrors.BadRequest("invalid price band for " + in.ItemName)
		}
		if in.AvgPrice.LessThan(in.MinPrice) || in.AvgPrice.GreaterThan(in.MaxPrice) {
			return nil, domainerrors.BadRequest("average price must lie within the band for " + in.ItemName)
		}
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		for _, in := range inputs {
			if err := u.repo.Upsert(txCtx, &entities.MarketPrice{
				ItemName: strings.TrimSpace(in.ItemName),
				MinPrice: in.MinPrice,
				MaxPrice: in.MaxPrice,
				AvgPrice: in.AvgPrice,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Market prices seeded", zap.Int("count", len(inputs)))
	return u.repo.List(ctx)
}

// SeedDefaults loads the built-in reference set
func (u *MarketPriceUsecase) SeedDefaults(ctx context.Context) ([]*entities.MarketPrice, error) {
	return u.Seed(ctx, DefaultMarketPrices)
}

func (u *MarketPriceUsecase) List(ctx context.Context) ([]*entities.MarketPrice, error) {
	return u.repo.List(ctx)
}
