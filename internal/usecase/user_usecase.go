package usecase

import (
	"context"

	"medtrack/internal/domain/entity"
)

// AddUserInput is the payload for creating a user.
type AddUserInput struct {
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Company     string `json:"company"`
	Address     string `json:"address"`
}

// MedicineDraft is a medicine created together with its owner.
type MedicineDraft struct {
	MedicineName string `json:"medicineName" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Company      string `json:"company"`
}

// AddUserWithMedicinesOutput reports the IDs assigned by AddUserWithMedicines.
type AddUserWithMedicinesOutput struct {
	UserID      uint   `json:"userId"`
	MedicineIDs []uint `json:"medicineIds"`
}

// UserUsecase defines the interface for user management use cases
type UserUsecase interface {
	// AddUser creates a user and returns the assigned ID. Names and phone
	// numbers are not unique.
	AddUser(ctx context.Context, input *AddUserInput) (uint, error)

	// UpdateUser applies a partial patch and returns the rows changed (0 if absent).
	UpdateUser(ctx context.Context, id uint, patch *entity.UserPatch) (int64, error)

	// DeleteUser removes a user and, in the same transaction, their medicines.
	// Orders are kept.
	DeleteUser(ctx context.Context, id uint) error

	GetAllUsers(ctx context.Context) ([]*entity.User, error)

	// GetUserByID fails with ErrUserNotFound when the user is absent.
	GetUserByID(ctx context.Context, id uint) (*entity.User, error)

	// SearchUsers matches name, company and address ignoring case, and the
	// phone number verbatim. Results keep insertion order.
	SearchUsers(ctx context.Context, term string) ([]*entity.User, error)

	CountUsers(ctx context.Context) (int64, error)

	// ClearAllUsers removes every medicine and every user atomically.
	ClearAllUsers(ctx context.Context) error

	// GetUserWithMedicines returns a nil User when the user does not exist.
	GetUserWithMedicines(ctx context.Context, id uint) (*entity.UserWithMedicines, error)

	GetAllUsersWithMedicines(ctx context.Context) ([]*entity.UserWithMedicines, error)

	// AddUserWithMedicines creates a user and their medicines atomically.
	AddUserWithMedicines(ctx context.Context, input *AddUserInput, medicines []*MedicineDraft) (*AddUserWithMedicinesOutput, error)
}
