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

// TopUpRepository implements wallet top-up operations
type TopUpRepository struct {
	db *gorm.DB
}

func NewTopUpRepository(db *gorm.DB) *TopUpRepository {
	return &TopUpRepository{db: db}
}

func (r *TopUpRepository) Create(ctx context.Context, topUp *entities.TopUp) error {
	if topUp.ID == uuid.Nil {
		topUp.ID = utils.GenerateUUIDv7()
	}
	if topUp.Status == "" {
		topUp.Status = entities.TopUpStatusPending
	}
	m := &models.TopUp{
		ID:         topUp.ID,
		UserID:     topUp.UserID,
		Amount:     topUp.Amount,
		Reference:  topUp.Reference,
		Status:     string(topUp.Status),
		CreditedAt: topUp.CreditedAt.Ptr(),
		CreatedAt:  topUp.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	topUp.CreatedAt = m.CreatedAt
	return nil
}

func (r *TopUpRepository) GetByReference(ctx context.Context, reference string) (*entities.TopUp, error) {
	var m models.TopUp
	if err := GetDB(ctx, r.db).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.TopUp{
		ID:         m.ID,
		UserID:     m.UserID,
		Amount:     m.Amount,
		Reference:  m.Reference,
		Status:     entities.TopUpStatus(m.Status),
		CreditedAt: null.TimeFromPtr(m.CreditedAt),
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (r *TopUpRepository) MarkCredited(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return r.flip(ctx, id, map[string]interface{}{
		"status":      string(entities.TopUpStatusCredited),
		"credited_at": at.UTC(),
		"updated_at":  time.Now().UTC(),
	})
}

func (r *TopUpRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.flip(ctx, id, map[string]interface{}{
		"status":     string(entities.TopUpStatusFailed),
		"updated_at": time.Now().UTC(),
	})
}

// flip only moves a pending top-up
func (r *TopUpRepository) flip(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.TopUp{}).
		Where("id = ? AND status = ?", id, string(entities.TopUpStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// WithdrawalRepository implements payout operations
type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *entities.Withdrawal) error {
	if w.ID == uuid.Nil {
		w.ID = utils.GenerateUUIDv7()
	}
	if w.Status == "" {
		w.Status = entities.WithdrawalStatusPending
	}
	m := &models.Withdrawal{
		ID:                w.ID,
		UserID:            w.UserID,
		Amount:            w.Amount,
		Status:            string(w.Status),
		TransferReference: w.TransferReference.Ptr(),
		FailureReason:     w.FailureReason,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	w.CreatedAt = m.CreatedAt
	w.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	var m models.Withdrawal
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Withdrawal{
		ID:                m.ID,
		UserID:            m.UserID,
		Amount:            m.Amount,
		Status:            entities.WithdrawalStatus(m.Status),
		TransferReference: null.StringFromPtr(m.TransferReference),
		FailureReason:     m.FailureReason,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func (r *WithdrawalRepository) MarkSent(ctx context.Context, id uuid.UUID, transferReference string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":             string(entities.WithdrawalStatusSent),
		"transfer_reference": transferReference,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *WithdrawalRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":         string(entities.WithdrawalStatusFailed),
		"failure_reason": reason,
		"updated_at":     time.Now().UTC(),
	})
}

func (r *WithdrawalRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, string(entities.WithdrawalStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
