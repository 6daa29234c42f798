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

// medicineRepository implements the repository.MedicineRepository interface.
type medicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository is the constructor for medicineRepository.
func NewMedicineRepository(db *gorm.DB) repository.MedicineRepository {
	return &medicineRepository{db: db}
}

// Create persists a new medicine. A (user_id, medicine_name) collision caught
// by the unique index surfaces as repository.ErrDuplicateMedicine.
func (repo *medicineRepository) Create(ctx context.Context, medicine *entity.Medicine) error {
	medicineM := fromMedicineDomain(medicine)
	medicineM.ID = 0

	if err := repo.db.WithContext(ctx).Create(medicineM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateMedicine
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create medicine")
	}

	medicine.ID = medicineM.ID
	medicine.CreatedAt = model.FromMillis(medicineM.CreatedAtMs)

	return nil
}

// CreateBatch persists medicines keeping any IDs they already carry.
func (repo *medicineRepository) CreateBatch(ctx context.Context, medicines []*entity.Medicine) error {
	if len(medicines) == 0 {
		return nil
	}

	medicineModels := make([]*model.MedicineModel, 0, len(medicines))
	for _, medicine := range medicines {
		medicineModels = append(medicineModels, fromMedicineDomain(medicine))
	}

	if err := repo.db.WithContext(ctx).Create(&medicineModels).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateMedicine
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create medicines")
	}

	for i, medicineM := range medicineModels {
		medicines[i].ID = medicineM.ID
	}

	return nil
}

// FindByID retrieves a medicine by its unique ID.
func (repo *medicineRepository) FindByID(ctx context.Context, id uint) (*entity.Medicine, error) {
	var medicineM model.MedicineModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&medicineM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMedicineNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find medicine by ID")
	}

	return toMedicineDomain(&medicineM), nil
}

// FindByUserAndName looks up a medicine through the (user_id, medicine_name) unique index.
func (repo *medicineRepository) FindByUserAndName(ctx context.Context, userID uint, name string) (*entity.Medicine, error) {
	var medicineM model.MedicineModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND medicine_name = ?", userID, name).
		First(&medicineM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMedicineNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find medicine by user and name")
	}

	return toMedicineDomain(&medicineM), nil
}

// List returns every medicine in insertion order.
func (repo *medicineRepository) List(ctx context.Context) ([]*entity.Medicine, error) {
	return repo.find(repo.db.WithContext(ctx), "failed to list medicines")
}

// ListByUser returns the medicines owned by a user.
func (repo *medicineRepository) ListByUser(ctx context.Context, userID uint) ([]*entity.Medicine, error) {
	return repo.find(repo.db.WithContext(ctx).Where("user_id = ?", userID), "failed to list medicines by user")
}

// ListByIDs returns the medicines whose ID is in ids.
func (repo *medicineRepository) ListByIDs(ctx context.Context, ids []uint) ([]*entity.Medicine, error) {
	if len(ids) == 0 {
		return []*entity.Medicine{}, nil
	}

	return repo.find(repo.db.WithContext(ctx).Where("id IN ?", ids), "failed to list medicines by IDs")
}

func (repo *medicineRepository) find(query *gorm.DB, details string) ([]*entity.Medicine, error) {
	var medicineModels []*model.MedicineModel

	if err := query.Order("id ASC").Find(&medicineModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, details)
	}

	medicines := make([]*entity.Medicine, 0, len(medicineModels))
	for _, medicineM := range medicineModels {
		medicines = append(medicines, toMedicineDomain(medicineM))
	}

	return medicines, nil
}

// Update applies a partial patch and returns the number of rows changed.
func (repo *medicineRepository) Update(ctx context.Context, id uint, patch *entity.MedicinePatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}

	updates := map[string]any{}
	if patch.MedicineName != nil {
		updates["medicine_name"] = *patch.MedicineName
	}
	if patch.Dosage != nil {
		updates["dosage"] = *patch.Dosage
	}
	if patch.Company != nil {
		updates["company"] = *patch.Company
	}

	result := repo.db.WithContext(ctx).
		Model(&model.MedicineModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return 0, repository.ErrDuplicateMedicine
		}

		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update medicine")
	}

	return result.RowsAffected, nil
}

// Delete removes one medicine.
func (repo *medicineRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.MedicineModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete medicine")
	}

	return result.RowsAffected, nil
}

// DeleteByUser removes every medicine owned by a user.
func (repo *medicineRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.MedicineModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete medicines by user")
	}

	return result.RowsAffected, nil
}

// DeleteAll removes every medicine.
func (repo *medicineRepository) DeleteAll(ctx context.Context) error {
	if err := repo.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.MedicineModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear medicines")
	}

	return nil
}

// Count returns the number of medicines.
func (repo *medicineRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.MedicineModel{}).
		Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count medicines")
	}

	return count, nil
}

// CountByUser returns the number of medicines owned by a user.
func (repo *medicineRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.MedicineModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count medicines by user")
	}

	return count, nil
}

// CountOwners returns the number of existing users that own at least one medicine.
func (repo *medicineRepository) CountOwners(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Raw(`SELECT COUNT(DISTINCT medicines.user_id) FROM medicines JOIN users ON users.id = medicines.user_id`).
		Scan(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count medicine owners")
	}

	return count, nil
}

// --- Mapper Functions ---

// toMedicineDomain converts a GORM MedicineModel to a domain Medicine entity.
func toMedicineDomain(data *model.MedicineModel) *entity.Medicine {
	if data == nil {
		return nil
	}

	return &entity.Medicine{
		ID:           data.ID,
		UserID:       data.UserID,
		MedicineName: data.MedicineName,
		Dosage:       data.Dosage,
		Company:      data.Company,
		CreatedAt:    model.FromMillis(data.CreatedAtMs),
	}
}

// fromMedicineDomain converts a domain Medicine entity to a GORM MedicineModel.
func fromMedicineDomain(data *entity.Medicine) *model.MedicineModel {
	if data == nil {
		return nil
	}

	return &model.MedicineModel{
		ID:           data.ID,
		UserID:       data.UserID,
		MedicineName: data.MedicineName,
		Dosage:       data.Dosage,
		Company:      data.Company,
		CreatedAtMs:  model.ToMillis(data.CreatedAt),
	}
}
