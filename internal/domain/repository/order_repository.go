package repository

import (
	"context"
	"errors"
	"time"

	"medtrack/internal/domain/entity"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Create persists a new order and sets its ID.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order by its unique ID.
	FindByID(ctx context.Context, id uint) (*entity.Order, error)

	// List returns every order matching the export filter.
	List(ctx context.Context, filter entity.ExportFilter) ([]*entity.Order, error)

	// ListByUser returns a user's orders matching the export filter, served by
	// the (user_id, exported) index.
	ListByUser(ctx context.Context, userID uint, filter entity.ExportFilter) ([]*entity.Order, error)

	// Update applies a partial patch and returns the number of rows changed (0 or 1).
	Update(ctx context.Context, id uint, patch *entity.OrderPatch) (int64, error)

	// SetExported sets the export state of every listed order in one statement.
	SetExported(ctx context.Context, ids []uint, state entity.ExportState) error

	// Delete removes one order.
	Delete(ctx context.Context, id uint) (int64, error)

	// CountCreatedBefore counts orders created strictly before cutoff.
	CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteCreatedBefore removes orders created strictly before cutoff.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
