package sqlite

import (
	"context"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the repository.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user and sets its ID.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	userM.ID = 0

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = model.FromMillis(userM.CreatedAtMs)

	return nil
}

// CreateBatch persists users keeping any IDs they already carry.
func (repo *userRepository) CreateBatch(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}

	userModels := make([]*model.UserModel, 0, len(users))
	for _, user := range users {
		userModels = append(userModels, fromUserDomain(user))
	}

	if err := repo.db.WithContext(ctx).Create(&userModels).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "duplicate user id in batch")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create users")
	}

	for i, userM := range userModels {
		users[i].ID = userM.ID
	}

	return nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var userM model.UserModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by ID")
	}

	return toUserDomain(&userM), nil
}

// List returns every user in insertion order.
func (repo *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	var userModels []*model.UserModel

	if err := repo.db.WithContext(ctx).
		Order("id ASC").
		Find(&userModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userModels))
	for _, userM := range userModels {
		users = append(users, toUserDomain(userM))
	}

	return users, nil
}

// Update applies a partial patch and returns the number of rows changed.
func (repo *userRepository) Update(ctx context.Context, id uint, patch *entity.UserPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}

	updates := map[string]any{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		updates["phone_number"] = *patch.PhoneNumber
	}
	if patch.Company != nil {
		updates["company"] = *patch.Company
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}

	return result.RowsAffected, nil
}

// Delete removes a user and returns the number of rows removed.
func (repo *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.UserModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}

	return result.RowsAffected, nil
}

// DeleteAll removes every user.
func (repo *userRepository) DeleteAll(ctx context.Context) error {
	if err := repo.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.UserModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear users")
	}

	return nil
}

// Count returns the number of users.
func (repo *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count users")
	}

	return count, nil
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:          data.ID,
		FullName:    data.FullName,
		PhoneNumber: data.PhoneNumber,
		Company:     data.Company,
		Address:     data.Address,
		CreatedAt:   model.FromMillis(data.CreatedAtMs),
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:          data.ID,
		FullName:    data.FullName,
		PhoneNumber: data.PhoneNumber,
		Company:     data.Company,
		Address:     data.Address,
		CreatedAtMs: model.ToMillis(data.CreatedAt),
	}
}
