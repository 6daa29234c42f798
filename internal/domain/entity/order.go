package entity

import "time"

// ExportState records whether an order has been handed off to the customer.
type ExportState int

const (
	ExportPending  ExportState = 0 // Not yet shared.
	ExportExported ExportState = 1 // Shared or included in an export.
)

// Valid reports whether s is a known export state.
func (s ExportState) Valid() bool {
	return s == ExportPending || s == ExportExported
}

// ExportFilter narrows order listings by export state.
type ExportFilter int

const (
	ExportFilterAny ExportFilter = iota
	ExportFilterPending
	ExportFilterExported
)

// State returns the export state selected by the filter. ok is false for ExportFilterAny.
func (f ExportFilter) State() (state ExportState, ok bool) {
	switch f {
	case ExportFilterPending:
		return ExportPending, true
	case ExportFilterExported:
		return ExportExported, true
	default:
		return ExportPending, false
	}
}

// Order is a quantity of one medicine requested for one user.
type Order struct {
	ID         uint        `json:"id"`
	UserID     uint        `json:"userId"`
	MedicineID uint        `json:"medicineId"`
	Quantity   int         `json:"quantity"` // Always > 0.
	CreatedAt  time.Time   `json:"createdAt"`
	Exported   ExportState `json:"exported"`
}

// OrderPatch is a partial update of an Order. ID, UserID and CreatedAt are
// immutable and therefore absent.
type OrderPatch struct {
	MedicineID *uint        `json:"medicineId,omitempty"`
	Quantity   *int         `json:"quantity,omitempty"`
	Exported   *ExportState `json:"exported,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *OrderPatch) IsEmpty() bool {
	return p == nil || (p.MedicineID == nil && p.Quantity == nil && p.Exported == nil)
}
