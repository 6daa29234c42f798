package entity

import "time"

// EnrichedOrder is an order joined with its medicine. Medicine is never nil;
// a missing medicine resolves to the DeletedMedicine placeholder.
type EnrichedOrder struct {
	Order
	Medicine *Medicine `json:"medicine"`
}

// OrderStats summarises a user's orders.
type OrderStats struct {
	TotalOrders     int        `json:"totalOrders"`
	TotalQuantity   int        `json:"totalQuantity"`
	AverageQuantity float64    `json:"averageQuantity"`
	LastOrderDate   *time.Time `json:"lastOrderDate"` // nil when there are no orders
}

// NewOrderStats computes stats over orders. An empty slice yields zero values
// and a nil LastOrderDate.
func NewOrderStats(orders []*EnrichedOrder) OrderStats {
	stats := OrderStats{TotalOrders: len(orders)}
	if len(orders) == 0 {
		return stats
	}

	var last time.Time
	for _, o := range orders {
		stats.TotalQuantity += o.Quantity
		if o.CreatedAt.After(last) {
			last = o.CreatedAt
		}
	}
	stats.AverageQuantity = float64(stats.TotalQuantity) / float64(stats.TotalOrders)
	stats.LastOrderDate = &last

	return stats
}

// UserWithOrders is a read-time projection of a user and their enriched orders.
type UserWithOrders struct {
	User
	Orders     []*EnrichedOrder `json:"orders"`
	OrderStats OrderStats       `json:"orderStats"`
}

// UserWithMedicines pairs a user with the medicines they own. User is nil
// when the requested user does not exist.
type UserWithMedicines struct {
	User      *User       `json:"user"`
	Medicines []*Medicine `json:"medicines"`
}

// MedicineWithUser pairs a medicine with its owner. Both are nil when the
// medicine does not exist.
type MedicineWithUser struct {
	Medicine *Medicine `json:"medicine"`
	User     *User     `json:"user"`
}

// Statistics is the dashboard summary over users and medicines.
type Statistics struct {
	TotalUsers              int64   `json:"totalUsers"`
	TotalMedicines          int64   `json:"totalMedicines"`
	UsersWithMedicines      int64   `json:"usersWithMedicines"`
	AverageMedicinesPerUser float64 `json:"averageMedicinesPerUser"`
}

// DataExport is a full backup of users and medicines.
type DataExport struct {
	ID         string      `json:"id"`
	Users      []*User     `json:"users"`
	Medicines  []*Medicine `json:"medicines"`
	ExportedAt time.Time   `json:"exportedAt"`
}
