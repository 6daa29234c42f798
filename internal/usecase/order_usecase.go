package usecase

import (
	"context"

	"medtrack/internal/domain/entity"
)

// AddOrderInput is the payload for creating an order.
type AddOrderInput struct {
	UserID     uint               `json:"userId"`
	MedicineID uint               `json:"medicineId"`
	Quantity   int                `json:"quantity"`
	Exported   entity.ExportState `json:"exported" validate:"oneof=0 1"`
}

// OrderUsecase defines the interface for order management and enrichment use cases
type OrderUsecase interface {
	// AddOrder creates an order stamped with the current time. Quantity must
	// be positive and both references must resolve.
	AddOrder(ctx context.Context, input *AddOrderInput) (uint, error)

	// EditQuantity sets an order's quantity, rejecting values <= 0.
	EditQuantity(ctx context.Context, id uint, quantity int) (int64, error)

	// EditOrder applies a partial patch, rejecting quantities <= 0.
	EditOrder(ctx context.Context, id uint, patch *entity.OrderPatch) (int64, error)

	DeleteOrder(ctx context.Context, id uint) error

	GetAllOrders(ctx context.Context) ([]*entity.Order, error)
	GetOrderByID(ctx context.Context, id uint) (*entity.Order, error)
	GetOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error)
	GetUnexportedOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error)

	// BulkSetExported sets the export state of every id in one statement and
	// returns len(ids), whether or not each id exists.
	BulkSetExported(ctx context.Context, ids []uint, state entity.ExportState) (int, error)

	// SetOrderExported is the write path used after a successful share.
	SetOrderExported(ctx context.Context, id uint, state entity.ExportState) (int64, error)

	// DeleteOrdersOlderThan removes orders created more than days ago. days <= 0
	// uses the configured retention.
	DeleteOrdersOlderThan(ctx context.Context, days int) (int64, error)

	// GetUsersWithOrders returns every user with at least one order matching
	// filter, each order joined with its medicine.
	GetUsersWithOrders(ctx context.Context, filter entity.ExportFilter) ([]*entity.UserWithOrders, error)

	// GetUserWithOrders returns nil when the user does not exist.
	GetUserWithOrders(ctx context.Context, userID uint) (*entity.UserWithOrders, error)
}
