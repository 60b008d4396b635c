package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/utils"
)

// AccountUsecase handles access status, payout details, appeals and admin moderation
type AccountUsecase struct {
	userRepo   repositories.UserRepository
	appealRepo repositories.AppealRepository
	uow        repositories.UnitOfWork
	fraud      *FraudEngine
	now        func() time.Time
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(
	userRepo repositories.UserRepository,
	appealRepo repositories.AppealRepository,
	uow repositories.UnitOfWork,
	fraud *FraudEngine,
) *AccountUsecase {
	return &AccountUsecase{
		userRepo:   userRepo,
		appealRepo: appealRepo,
		uow:        uow,
		fraud:      fraud,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (u *AccountUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// GetProfile gets a user by ID
func (u *AccountUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// CheckAccess evaluates the user's ban state now. Expired bans read as active and are left in place.
func (u *AccountUsecase) CheckAccess(ctx context.Context, userID uuid.UUID) (entities.AccessStatus, error) {
	user, err := u.GetProfile(ctx, userID)
	if err != nil {
		return entities.AccessStatus{}, err
	}
	return user.Access(u.now()), nil
}

// UpdateBankDetails stores payout details after the bank collision check
func (u *AccountUsecase) UpdateBankDetails(ctx context.Context, userID uuid.UUID, input *entities.BankDetailsInput) (*entities.User, error) {
	user, err := u.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if access := user.Access(u.now()); access.IsBanned() {
		return nil, domainerrors.AccountBanned(access.Reason, access.Until)
	}
	if input == nil || strings.TrimSpace(input.AccountNumber) == "" || strings.TrimSpace(input.BankCode) == "" {
		return nil, domainerrors.BadRequest("account number and bank code are required")
	}
	details := entities.BankDetailsInput{
		BankName:      strings.TrimSpace(input.BankName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		BankCode:      strings.TrimSpace(input.BankCode),
	}

	if verdict := u.fraud.CheckBankCollision(ctx, user, details.AccountNumber); verdict != nil {
		return nil, domainerrors.FraudRejection(verdict)
	}

	if err := u.userRepo.UpdateBankDetails(ctx, user.ID, details); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Bank details updated", zap.String("user_id", user.ID.String()))
	return u.GetProfile(ctx, user.ID)
}

// SubmitAppeal records an appeal from a currently banned user. One appeal may be open at a time.
func (u *AccountUsecase) SubmitAppeal(ctx context.Context, userID uuid.UUID, input *entities.AppealInput) (*entities.Appeal, error) {
	user, err := u.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Access(u.now()).IsBanned() {
		return nil, domainerrors.BadRequest("only banned accounts can appeal")
	}
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, domainerrors.BadRequest("message is required")
	}

	if _, err := u.appealRepo.GetOpenByUser(ctx, user.ID); err == nil {
		return nil, domainerrors.Conflict("an appeal is already open")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	appeal := &entities.Appeal{
		UserID:  user.ID,
		Message: strings.TrimSpace(input.Message),
		Status:  entities.AppealStatusOpen,
	}
	if err := u.appealRepo.Create(ctx, appeal); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Ban appeal submitted", zap.String("user_id", user.ID.String()))
	return appeal, nil
}

// Ban is the manual admin ban. Zero days bans permanently.
func (u *AccountUsecase) Ban(ctx context.Context, userID uuid.UUID, input *entities.BanInput) (*entities.User, error) {
	if input == nil || input.Days < 0 {
		return nil, domainerrors.BadRequest("days must not be negative")
	}
	var until *time.Time
	if input.Days > 0 {
		t := u.now().Add(time.Duration(input.Days) * day)
		until = &t
	}
	if err := u.userRepo.Ban(ctx, userID, until, input.Reason); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	logger.Warn(ctx, "User banned by admin",
		zap.String("user_id", userID.String()),
		zap.Int("days", input.Days),
		zap.String("reason", input.Reason),
	)
	return u.GetProfile(ctx, userID)
}

// Unban clears the ban and resolves any open appeal
func (u *AccountUsecase) Unban(ctx context.Context, adminID, userID uuid.UUID) (*entities.User, error) {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Unban(txCtx, userID); err != nil {
			return err
		}
		_, err := u.appealRepo.ResolveOpenByUser(txCtx, userID, u.now())
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	logger.Info(ctx, "User unbanned",
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return u.GetProfile(ctx, userID)
}

// ListFlagged is the admin review queue, highest suspicion first
func (u *AccountUsecase) ListFlagged(ctx context.Context, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	return u.userRepo.ListFlagged(ctx, pagination)
}

// ListAppeals lists appeals by status
func (u *AccountUsecase) ListAppeals(ctx context.Context, status entities.AppealStatus, pagination utils.PaginationParams) ([]*entities.Appeal, int64, error) {
	return u.appealRepo.List(ctx, status, pagination)
}
