// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"medtrack/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// Listings are returned in insertion order.
type UserRepository interface {
	// Create persists a new user and sets its ID.
	Create(ctx context.Context, user *entity.User) error

	// CreateBatch persists users keeping any IDs they already carry.
	CreateBatch(ctx context.Context, users []*entity.User) error

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// List returns every user.
	List(ctx context.Context) ([]*entity.User, error)

	// Update applies a partial patch and returns the number of rows changed (0 or 1).
	Update(ctx context.Context, id uint, patch *entity.UserPatch) (int64, error)

	// Delete removes a user and returns the number of rows removed.
	Delete(ctx context.Context, id uint) (int64, error)

	// DeleteAll removes every user.
	DeleteAll(ctx context.Context) error

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)
}
