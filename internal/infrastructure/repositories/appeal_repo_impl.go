package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// AppealRepository implements ban appeal operations
type AppealRepository struct {
	db *gorm.DB
}

func NewAppealRepository(db *gorm.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

func (r *AppealRepository) Create(ctx context.Context, appeal *entities.Appeal) error {
	if appeal.ID == uuid.Nil {
		appeal.ID = utils.GenerateUUIDv7()
	}
	if appeal.Status == "" {
		appeal.Status = entities.AppealStatusOpen
	}
	m := &models.Appeal{
		ID:        appeal.ID,
		UserID:    appeal.UserID,
		Message:   appeal.Message,
		Status:    string(appeal.Status),
		CreatedAt: appeal.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	appeal.CreatedAt = m.CreatedAt
	return nil
}

func (r *AppealRepository) GetOpenByUser(ctx context.Context, userID uuid.UUID) (*entities.Appeal, error) {
	var m models.Appeal
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, string(entities.AppealStatusOpen)).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *AppealRepository) ResolveOpenByUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Appeal{}).
		Where("user_id = ? AND status = ?", userID, string(entities.AppealStatusOpen)).
		Updates(map[string]interface{}{
			"status":      string(entities.AppealStatusResolved),
			"resolved_at": at.UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *AppealRepository) List(ctx context.Context, status entities.AppealStatus, pagination utils.PaginationParams) ([]*entities.Appeal, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Appeal{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var appealModels []models.Appeal
	if err := query.Order("created_at ASC").
		Limit(pagination.Limit).Offset(pagination.CalculateOffset()).
		Find(&appealModels).Error; err != nil {
		return nil, 0, err
	}

	appeals := make([]*entities.Appeal, 0, len(appealModels))
	for i := range appealModels {
		appeals = append(appeals, r.toEntity(&appealModels[i]))
	}
	return appeals, totalCount, nil
}

func (r *AppealRepository) toEntity(m *models.Appeal) *entities.Appeal {
	return &entities.Appeal{
		ID:         m.ID,
		UserID:     m.UserID,
		Message:    m.Message,
		Status:     entities.AppealStatus(m.Status),
		ResolvedAt: null.TimeFromPtr(m.ResolvedAt),
		CreatedAt:  m.CreatedAt,
	}
}
