package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/domain/service"
	"medtrack/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type medicineService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	medicineRepo repository.MedicineRepository
	clock        service.Clock
	logger       *slog.Logger
}

// MedicineServiceParams holds dependencies for MedicineService, injected by Fx.
type MedicineServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	MedicineRepo repository.MedicineRepository
	Clock        service.Clock
	Logger       *slog.Logger
}

// NewMedicineService creates a new medicine service instance
func NewMedicineService(params MedicineServiceParams) usecase.MedicineUsecase {
	return &medicineService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		medicineRepo: params.MedicineRepo,
		clock:        params.Clock,
		logger:       params.Logger,
	}
}

// AddMedicine checks the owner exists and the name is free, then inserts.
func (s *medicineService) AddMedicine(ctx context.Context, input *usecase.AddMedicineInput) (uint, error) {
	if input == nil {
		return 0, domainerrors.ErrValidationFailed.WithDetails("medicine input is required")
	}
	normalized := *input
	normalized.MedicineName = strings.TrimSpace(input.MedicineName)
	normalized.Dosage = strings.TrimSpace(input.Dosage)
	if err := validateInput(&normalized); err != nil {
		return 0, err
	}

	if _, err := s.userRepo.FindByID(ctx, normalized.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, domainerrors.ErrUserReference.WithDetails(formatID("user", normalized.UserID))
		}

		return 0, errors.Wrap(err, "failed to find medicine owner")
	}

	medicine := &entity.Medicine{
		UserID:       normalized.UserID,
		MedicineName: normalized.MedicineName,
		Dosage:       normalized.Dosage,
		Company:      normalized.Company,
		CreatedAt:    s.clock.Now(),
	}
	if err := createUniqueMedicine(ctx, s.medicineRepo, medicine); err != nil {
		return 0, err
	}

	s.logger.Debug("Medicine added",
		slog.Uint64("medicineID", uint64(medicine.ID)),
		slog.Uint64("userID", uint64(medicine.UserID)),
	)

	return medicine.ID, nil
}

// createUniqueMedicine enforces (userID, name) uniqueness before inserting.
// The unique index catches anything the pre-check misses.
func createUniqueMedicine(ctx context.Context, repo repository.MedicineRepository, medicine *entity.Medicine) error {
	if err := ensureNameAvailable(ctx, repo, medicine.UserID, medicine.MedicineName); err != nil {
		return err
	}

	if err := repo.Create(ctx, medicine); err != nil {
		if errors.Is(err, repository.ErrDuplicateMedicine) {
			return duplicateMedicineError(medicine.MedicineName)
		}

		return errors.Wrap(err, "failed to create medicine")
	}

	return nil
}

func ensureNameAvailable(ctx context.Context, repo repository.MedicineRepository, userID uint, name string) error {
	_, err := repo.FindByUserAndName(ctx, userID, name)
	switch {
	case err == nil:
		return duplicateMedicineError(name)
	case errors.Is(err, repository.ErrMedicineNotFound):
		return nil
	default:
		return errors.Wrap(err, "failed to check medicine name")
	}
}

func duplicateMedicineError(name string) error {
	return domainerrors.ErrDuplicateMedicine.WithDetails(strconv.Quote(name))
}

// UpdateMedicine applies a patch; a rename is checked against the medicine's current owner.
func (s *medicineService) UpdateMedicine(ctx context.Context, id uint, patch *entity.MedicinePatch) (int64, error) {
	if patch != nil {
		normalized := *patch
		normalized.MedicineName = trimmed(patch.MedicineName)
		normalized.Dosage = trimmed(patch.Dosage)
		patch = &normalized

		if err := requireNonBlank("medicineName", patch.MedicineName); err != nil {
			return 0, err
		}
		if err := requireNonBlank("dosage", patch.Dosage); err != nil {
			return 0, err
		}
	}

	current, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMedicineNotFound) {
			return 0, domainerrors.ErrMedicineNotFound.WithDetails(formatID("medicine", id))
		}

		return 0, errors.Wrap(err, "failed to find medicine")
	}

	if patch.IsEmpty() {
		return 0, nil
	}

	if patch.MedicineName != nil && *patch.MedicineName != current.MedicineName {
		if err := ensureNameAvailable(ctx, s.medicineRepo, current.UserID, *patch.MedicineName); err != nil {
			return 0, err
		}
	}

	updated, err := s.medicineRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMedicine) {
			return 0, duplicateMedicineError(*patch.MedicineName)
		}

		return 0, errors.Wrap(err, "failed to update medicine")
	}

	return updated, nil
}

func (s *medicineService) DeleteMedicine(ctx context.Context, id uint) error {
	if _, err := s.medicineRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete medicine")
	}

	return nil
}

func (s *medicineService) DeleteAllMedicinesForUser(ctx context.Context, userID uint) error {
	deleted, err := s.medicineRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete medicines for user")
	}

	s.logger.Debug("Medicines deleted for user", slog.Uint64("userID", uint64(userID)), slog.Int64("count", deleted))

	return nil
}

func (s *medicineService) ClearAllMedicines(ctx context.Context) error {
	if err := s.medicineRepo.DeleteAll(ctx); err != nil {
		return errors.Wrap(err, "failed to clear medicines")
	}

	return nil
}

func (s *medicineService) GetAllMedicines(ctx context.Context) ([]*entity.Medicine, error) {
	medicines, err := s.medicineRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list medicines")
	}

	return medicines, nil
}

func (s *medicineService) GetMedicinesByUser(ctx context.Context, userID uint) ([]*entity.Medicine, error) {
	medicines, err := s.medicineRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list medicines by user")
	}

	return medicines, nil
}

func (s *medicineService) GetMedicineByID(ctx context.Context, id uint) (*entity.Medicine, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrMedicineNotFound) {
		return nil, domainerrors.ErrMedicineNotFound.WithDetails(formatID("medicine", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find medicine")
	}

	return medicine, nil
}

// GetMedicineWithUser returns both halves nil when the medicine is absent.
func (s *medicineService) GetMedicineWithUser(ctx context.Context, id uint) (*entity.MedicineWithUser, error) {
	result := &entity.MedicineWithUser{}

	err := s.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		medicine, err := repoFactory.MedicineRepo().FindByID(ctx, id)
		if errors.Is(err, repository.ErrMedicineNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result.Medicine = medicine

		user, err := repoFactory.UserRepo().FindByID(ctx, medicine.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		result.User = user

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load medicine with user")
	}

	return result, nil
}

func (s *medicineService) SearchMedicines(ctx context.Context, term string) ([]*entity.Medicine, error) {
	medicines, err := s.medicineRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search medicines")
	}

	return filterMedicines(medicines, term), nil
}

func (s *medicineService) SearchMedicinesByUser(ctx context.Context, userID uint, term string) ([]*entity.Medicine, error) {
	medicines, err := s.medicineRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search medicines by user")
	}

	return filterMedicines(medicines, term), nil
}

func filterMedicines(medicines []*entity.Medicine, term string) []*entity.Medicine {
	matches := make([]*entity.Medicine, 0, len(medicines))
	for _, medicine := range medicines {
		if medicine.Matches(term) {
			matches = append(matches, medicine)
		}
	}

	return matches
}

func (s *medicineService) CountMedicines(ctx context.Context) (int64, error) {
	count, err := s.medicineRepo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count medicines")
	}

	return count, nil
}

func (s *medicineService) CountMedicinesByUser(ctx context.Context, userID uint) (int64, error) {
	count, err := s.medicineRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count medicines by user")
	}

	return count, nil
}

func formatID(kind string, id uint) string {
	return kind + " " + strconv.FormatUint(uint64(id), 10)
}
