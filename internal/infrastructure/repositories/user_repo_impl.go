package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	if user.Role == "" {
		user.Role = entities.UserRoleBuyer
	}
	m := &models.User{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email.Ptr(),
		Role:           string(user.Role),
		WalletBalance:  user.WalletBalance,
		SuspicionScore: user.SuspicionScore,
		IsFlagged:      user.IsFlagged,
		IsBanned:       user.IsBanned,
		IsBlocked:      user.IsBanned,
		BanExpires:     user.BanExpires.Ptr(),
		BanReason:      user.BanReason,
		BankName:       user.BankName,
		AccountNumber:  user.AccountNumber.Ptr(),
		BankCode:       user.BankCode,
		RecipientCode:  user.RecipientCode.Ptr(),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername gets a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindOtherByAccountNumber finds a different user already holding accountNumber
func (r *UserRepository) FindOtherByAccountNumber(ctx context.Context, accountNumber string, excludeID uuid.UUID) (*entities.User, error) {
	return r.first(ctx, "account_number = ? AND id <> ?", accountNumber, excludeID)
}

func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where(query, args...).Order("id ASC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	if err := r.syncLegacyBlocked(ctx, &m); err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

// syncLegacyBlocked rewrites is_blocked when it no longer matches the ban fields,
// which happens once a timed ban lapses.
func (r *UserRepository) syncLegacyBlocked(ctx context.Context, m *models.User) error {
	blocked := entities.ComputeAccess(m.IsBanned, null.TimeFromPtr(m.BanExpires), m.BanReason, time.Now().UTC()).LegacyBlocked()
	if blocked == m.IsBlocked {
		return nil
	}
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND is_blocked = ?", m.ID, m.IsBlocked).
		UpdateColumn("is_blocked", blocked).Error
	if err != nil {
		return err
	}
	m.IsBlocked = blocked
	return nil
}

// Flag marks the user flagged and adds to the suspicion score in a single relative update
func (r *UserRepository) Flag(ctx context.Context, id uuid.UUID, scoreIncrement int) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"is_flagged":      true,
		"suspicion_score": gorm.Expr("suspicion_score + ?", scoreIncrement),
		"updated_at":      time.Now().UTC(),
	})
}

// Ban records a ban. The legacy is_blocked column is written from the same status and
// re-derived on later reads.
func (r *UserRepository) Ban(ctx context.Context, id uuid.UUID, until *time.Time, reason string) error {
	var expires *time.Time
	if until != nil {
		t := until.UTC()
		expires = &t
	}
	status := entities.ComputeAccess(true, null.TimeFromPtr(expires), reason, time.Now().UTC())
	return r.updateByID(ctx, id, map[string]interface{}{
		"is_banned":   true,
		"ban_expires": expires,
		"ban_reason":  reason,
		"is_blocked":  status.LegacyBlocked(),
		"updated_at":  time.Now().UTC(),
	})
}

// Unban clears every ban field
func (r *UserRepository) Unban(ctx context.Context, id uuid.UUID) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"is_banned":   false,
		"ban_expires": nil,
		"ban_reason":  "",
		"is_blocked":  false,
		"updated_at":  time.Now().UTC(),
	})
}

// CreditWallet adds amount to the balance
func (r *UserRepository) CreditWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"wallet_balance": gorm.Expr("wallet_balance + ?", amount),
		"updated_at":     time.Now().UTC(),
	})
}

// DebitWallet subtracts amount only when the balance covers it
func (r *UserRepository) DebitWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND wallet_balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"wallet_balance": gorm.Expr("wallet_balance - ?", amount),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateBankDetails stores payout details. A changed account number drops the cached recipient.
func (r *UserRepository) UpdateBankDetails(ctx context.Context, id uuid.UUID, input entities.BankDetailsInput) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"bank_name":      input.BankName,
		"account_number": input.AccountNumber,
		"bank_code":      input.BankCode,
		"updated_at":     time.Now().UTC(),
	}
	if current.AccountNumber.String != input.AccountNumber || current.BankCode != input.BankCode {
		updates["recipient_code"] = nil
	}
	return r.updateByID(ctx, id, updates)
}

// SetRecipientCode caches the payout recipient reference
func (r *UserRepository) SetRecipientCode(ctx context.Context, id uuid.UUID, code string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"recipient_code": code,
		"updated_at":     time.Now().UTC(),
	})
}

// ListFlagged returns flagged users, highest suspicion first
func (r *UserRepository) ListFlagged(ctx context.Context, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	var totalCount int64
	query := GetDB(ctx, r.db).Model(&models.User{}).Where("is_flagged = ?", true)
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var userModels []models.User
	if err := query.Order("suspicion_score DESC").Order("id ASC").
		Limit(pagination.Limit).Offset(pagination.CalculateOffset()).
		Find(&userModels).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.toEntity(&userModels[i]))
	}
	return users, totalCount, nil
}

// Delete removes the user. Orders and products keep their references.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) updateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          null.StringFromPtr(m.Email),
		Role:           entities.UserRole(m.Role),
		WalletBalance:  m.WalletBalance,
		SuspicionScore: m.SuspicionScore,
		IsFlagged:      m.IsFlagged,
		IsBanned:       m.IsBanned,
		BanExpires:     null.TimeFromPtr(m.BanExpires),
		BanReason:      m.BanReason,
		BankName:       m.BankName,
		AccountNumber:  null.StringFromPtr(m.AccountNumber),
		BankCode:       m.BankCode,
		RecipientCode:  null.StringFromPtr(m.RecipientCode),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
