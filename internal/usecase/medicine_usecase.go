package usecase

import (
	"context"

	"medtrack/internal/domain/entity"
)

// AddMedicineInput is the payload for creating a medicine.
type AddMedicineInput struct {
	UserID       uint   `json:"userId"`
	MedicineName string `json:"medicineName" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Company      string `json:"company"`
}

// MedicineUsecase defines the interface for medicine management use cases
type MedicineUsecase interface {
	// AddMedicine fails with ErrUserReference when the owner is missing and
	// with ErrDuplicateMedicine when the owner already has that name.
	AddMedicine(ctx context.Context, input *AddMedicineInput) (uint, error)

	// UpdateMedicine fails with ErrMedicineNotFound when id is absent and
	// re-checks name uniqueness on rename.
	UpdateMedicine(ctx context.Context, id uint, patch *entity.MedicinePatch) (int64, error)

	DeleteMedicine(ctx context.Context, id uint) error
	DeleteAllMedicinesForUser(ctx context.Context, userID uint) error
	ClearAllMedicines(ctx context.Context) error

	GetAllMedicines(ctx context.Context) ([]*entity.Medicine, error)
	GetMedicinesByUser(ctx context.Context, userID uint) ([]*entity.Medicine, error)
	GetMedicineByID(ctx context.Context, id uint) (*entity.Medicine, error)
	GetMedicineWithUser(ctx context.Context, id uint) (*entity.MedicineWithUser, error)

	// SearchMedicines matches name, dosage and company ignoring case.
	SearchMedicines(ctx context.Context, term string) ([]*entity.Medicine, error)
	SearchMedicinesByUser(ctx context.Context, userID uint, term string) ([]*entity.Medicine, error)

	CountMedicines(ctx context.Context) (int64, error)
	CountMedicinesByUser(ctx context.Context, userID uint) (int64, error)
}
