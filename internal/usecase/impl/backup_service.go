package impl

import (
	"context"
	"fmt"
	"log/slog"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/domain/service"
	"medtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type backupService struct {
	txManager repository.TransactionManager
	clock     service.Clock
	logger    *slog.Logger
}

// BackupServiceParams holds dependencies for BackupService, injected by Fx.
type BackupServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewBackupService creates a new backup service instance
func NewBackupService(params BackupServiceParams) usecase.BackupUsecase {
	return &backupService{
		txManager: params.TxManager,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

// ExportData snapshots every user and medicine.
func (s *backupService) ExportData(ctx context.Context) (*entity.DataExport, error) {
	export := &entity.DataExport{
		ID:         uuid.NewString(),
		ExportedAt: s.clock.Now(),
	}

	err := s.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		if export.Users, err = repoFactory.UserRepo().List(ctx); err != nil {
			return err
		}
		export.Medicines, err = repoFactory.MedicineRepo().List(ctx)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to export data")
	}

	s.logger.Info("Data exported",
		slog.String("exportID", export.ID),
		slog.Int("users", len(export.Users)),
		slog.Int("medicines", len(export.Medicines)),
	)

	return export, nil
}

// ImportData clears users and medicines and inserts data with IDs preserved.
// A failure at any step leaves the previous data untouched. The records in
// data are copied, never modified.
func (s *backupService) ImportData(ctx context.Context, data *entity.DataExport) error {
	if data == nil {
		return domainerrors.ErrValidationFailed.WithDetails("import data is required")
	}

	now := s.clock.Now()
	users := make([]*entity.User, 0, len(data.Users))
	for i, user := range data.Users {
		if user == nil {
			return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("users[%d] is null", i))
		}
		record := *user
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		users = append(users, &record)
	}

	medicines := make([]*entity.Medicine, 0, len(data.Medicines))
	for i, medicine := range data.Medicines {
		if medicine == nil {
			return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("medicines[%d] is null", i))
		}
		record := *medicine
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		medicines = append(medicines, &record)
	}

	err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		medicineRepo := repoFactory.MedicineRepo()

		if err := medicineRepo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := userRepo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := userRepo.CreateBatch(ctx, users); err != nil {
			return err
		}
		if err := medicineRepo.CreateBatch(ctx, medicines); err != nil {
			if errors.Is(err, repository.ErrDuplicateMedicine) {
				return domainerrors.ErrDuplicateMedicine.WithDetails("import contains duplicate medicine names for a user")
			}

			return err
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Failed to import data", slog.Any("error", err))

		return errors.Wrap(err, "failed to import data")
	}

	s.logger.Info("Data imported", slog.Int("users", len(users)), slog.Int("medicines", len(medicines)))

	return nil
}
