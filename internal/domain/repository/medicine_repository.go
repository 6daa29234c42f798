package repository

import (
	"context"
	"errors"

	"medtrack/internal/domain/entity"
)

// Domain-specific errors for medicine persistence.
var (
	// ErrMedicineNotFound is returned when a medicine is not found.
	ErrMedicineNotFound = errors.New("medicine not found")
	// ErrDuplicateMedicine is returned when (user, name) is already taken.
	ErrDuplicateMedicine = errors.New("medicine already exists for user")
)

// MedicineRepository defines the interface for medicine-related database operations.
type MedicineRepository interface {
	// Create persists a new medicine and sets its ID.
	Create(ctx context.Context, medicine *entity.Medicine) error

	// CreateBatch persists medicines keeping any IDs they already carry.
	CreateBatch(ctx context.Context, medicines []*entity.Medicine) error

	// FindByID retrieves a medicine by its unique ID.
	FindByID(ctx context.Context, id uint) (*entity.Medicine, error)

	// FindByUserAndName looks up a medicine through the (user_id, medicine_name) unique index.
	FindByUserAndName(ctx context.Context, userID uint, name string) (*entity.Medicine, error)

	// List returns every medicine.
	List(ctx context.Context) ([]*entity.Medicine, error)

	// ListByUser returns the medicines owned by a user.
	ListByUser(ctx context.Context, userID uint) ([]*entity.Medicine, error)

	// ListByIDs returns the medicines whose ID is in ids. Missing IDs are skipped.
	ListByIDs(ctx context.Context, ids []uint) ([]*entity.Medicine, error)

	// Update applies a partial patch and returns the number of rows changed (0 or 1).
	Update(ctx context.Context, id uint, patch *entity.MedicinePatch) (int64, error)

	// Delete removes one medicine.
	Delete(ctx context.Context, id uint) (int64, error)

	// DeleteByUser removes every medicine owned by a user.
	DeleteByUser(ctx context.Context, userID uint) (int64, error)

	// DeleteAll removes every medicine.
	DeleteAll(ctx context.Context) error

	// Count returns the number of medicines.
	Count(ctx context.Context) (int64, error)

	// CountByUser returns the number of medicines owned by a user.
	CountByUser(ctx context.Context, userID uint) (int64, error)

	// CountOwners returns the number of distinct users owning at least one medicine.
	CountOwners(ctx context.Context) (int64, error)
}
