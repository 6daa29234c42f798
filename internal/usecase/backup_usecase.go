package usecase

import (
	"context"

	"medtrack/internal/domain/entity"
)

// BackupUsecase exports and restores users and medicines. Orders are not part of a backup.
type BackupUsecase interface {
	ExportData(ctx context.Context) (*entity.DataExport, error)

	// ImportData replaces every user and medicine with data, atomically.
	ImportData(ctx context.Context, data *entity.DataExport) error
}
