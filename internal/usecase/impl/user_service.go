// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/domain/service"
	"medtrack/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	medicineRepo repository.MedicineRepository
	clock        service.Clock
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	MedicineRepo repository.MedicineRepository
	Clock        service.Clock
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		medicineRepo: params.MedicineRepo,
		clock:        params.Clock,
		logger:       params.Logger,
	}
}

// AddUser creates a user and returns the assigned ID.
func (srv *userService) AddUser(ctx context.Context, input *usecase.AddUserInput) (uint, error) {
	user, err := srv.buildUser(input)
	if err != nil {
		return 0, err
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.logger.Error("Failed to add user", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to add user")
	}

	srv.logger.Debug("User added", slog.Uint64("userID", uint64(user.ID)))

	return user.ID, nil
}

func (srv *userService) buildUser(input *usecase.AddUserInput) (*entity.User, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("user input is required")
	}

	normalized := *input
	normalized.FullName = strings.TrimSpace(input.FullName)
	normalized.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validateInput(&normalized); err != nil {
		return nil, err
	}

	return &entity.User{
		FullName:    normalized.FullName,
		PhoneNumber: normalized.PhoneNumber,
		Company:     normalized.Company,
		Address:     normalized.Address,
		CreatedAt:   srv.clock.Now(),
	}, nil
}

// UpdateUser applies a partial patch and returns the rows changed.
func (srv *userService) UpdateUser(ctx context.Context, id uint, patch *entity.UserPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}
	if err := requireNonBlank("fullName", patch.FullName); err != nil {
		return 0, err
	}
	if err := requireNonBlank("phoneNumber", patch.PhoneNumber); err != nil {
		return 0, err
	}

	updated, err := srv.userRepo.Update(ctx, id, patch)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update user")
	}

	return updated, nil
}

// DeleteUser removes the user's medicines and then the user in one transaction.
func (srv *userService) DeleteUser(ctx context.Context, id uint) error {
	var medicinesDeleted, usersDeleted int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		if medicinesDeleted, err = repoFactory.MedicineRepo().DeleteByUser(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete user medicines")
		}
		if usersDeleted, err = repoFactory.UserRepo().Delete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.logger.Error("Failed to delete user", slog.Uint64("userID", uint64(id)), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute delete user transaction")
	}

	srv.logger.Debug("User deleted",
		slog.Uint64("userID", uint64(id)),
		slog.Int64("users", usersDeleted),
		slog.Int64("medicines", medicinesDeleted),
	)

	return nil
}

func (srv *userService) GetAllUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// GetUserByID fails with ErrUserNotFound when the user is absent.
func (srv *userService) GetUserByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WithDetails(formatID("user", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

// SearchUsers filters users in insertion order.
func (srv *userService) SearchUsers(ctx context.Context, term string) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search users")
	}

	matches := make([]*entity.User, 0, len(users))
	for _, user := range users {
		if user.Matches(term) {
			matches = append(matches, user)
		}
	}

	return matches, nil
}

func (srv *userService) CountUsers(ctx context.Context) (int64, error) {
	count, err := srv.userRepo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return count, nil
}

// ClearAllUsers removes every medicine and every user atomically.
func (srv *userService) ClearAllUsers(ctx context.Context) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.MedicineRepo().DeleteAll(ctx); err != nil {
			return err
		}

		return repoFactory.UserRepo().DeleteAll(ctx)
	})
	if err != nil {
		srv.logger.Error("Failed to clear users", slog.Any("error", err))

		return errors.Wrap(err, "failed to clear users")
	}

	srv.logger.Info("All users cleared")

	return nil
}

// GetUserWithMedicines returns a nil User when the user does not exist.
func (srv *userService) GetUserWithMedicines(ctx context.Context, id uint) (*entity.UserWithMedicines, error) {
	result := &entity.UserWithMedicines{}

	err := srv.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, id)
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			// absent user: report nil User with whatever medicines remain
		case err != nil:
			return err
		default:
			result.User = user
		}

		result.Medicines, err = repoFactory.MedicineRepo().ListByUser(ctx, id)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user with medicines")
	}

	return result, nil
}

func (srv *userService) GetAllUsersWithMedicines(ctx context.Context) ([]*entity.UserWithMedicines, error) {
	var result []*entity.UserWithMedicines

	err := srv.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		users, err := repoFactory.UserRepo().List(ctx)
		if err != nil {
			return err
		}
		medicines, err := repoFactory.MedicineRepo().List(ctx)
		if err != nil {
			return err
		}

		result = groupMedicinesByUser(users, medicines)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load users with medicines")
	}

	return result, nil
}

func groupMedicinesByUser(users []*entity.User, medicines []*entity.Medicine) []*entity.UserWithMedicines {
	byUser := make(map[uint][]*entity.Medicine, len(users))
	for _, medicine := range medicines {
		byUser[medicine.UserID] = append(byUser[medicine.UserID], medicine)
	}

	result := make([]*entity.UserWithMedicines, 0, len(users))
	for _, user := range users {
		owned := byUser[user.ID]
		if owned == nil {
			owned = []*entity.Medicine{}
		}
		result = append(result, &entity.UserWithMedicines{User: user, Medicines: owned})
	}

	return result
}

// AddUserWithMedicines creates a user and their medicines atomically. Any
// medicine failure, including a duplicate name, rolls back the user.
func (srv *userService) AddUserWithMedicines(
	ctx context.Context,
	input *usecase.AddUserInput,
	drafts []*usecase.MedicineDraft,
) (*usecase.AddUserWithMedicinesOutput, error) {
	user, err := srv.buildUser(input)
	if err != nil {
		return nil, err
	}
	for _, draft := range drafts {
		if draft == nil {
			return nil, domainerrors.ErrValidationFailed.WithDetails("medicine draft is required")
		}
		if err := validateInput(draft); err != nil {
			return nil, err
		}
	}

	output := &usecase.AddUserWithMedicinesOutput{MedicineIDs: make([]uint, 0, len(drafts))}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		output.UserID = user.ID

		medicineRepo := repoFactory.MedicineRepo()
		for _, draft := range drafts {
			medicine := &entity.Medicine{
				UserID:       user.ID,
				MedicineName: draft.MedicineName,
				Dosage:       draft.Dosage,
				Company:      draft.Company,
				CreatedAt:    user.CreatedAt,
			}
			if err := createUniqueMedicine(ctx, medicineRepo, medicine); err != nil {
				return err
			}
			output.MedicineIDs = append(output.MedicineIDs, medicine.ID)
		}

		return nil
	})
	if err != nil {
		srv.logger.Error("Failed to add user with medicines", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute add user with medicines transaction")
	}

	srv.logger.Debug("User added with medicines",
		slog.Uint64("userID", uint64(output.UserID)),
		slog.Int("medicines", len(output.MedicineIDs)),
	)

	return output, nil
}
