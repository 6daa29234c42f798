package entity

import (
	"strings"
	"time"
)

// DeletedMedicineName is shown for orders whose medicine no longer exists.
const DeletedMedicineName = "Deleted Medicine"

// Medicine is a prescribable item that belongs to exactly one User.
// The pair (UserID, MedicineName) is unique.
type Medicine struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	MedicineName string    `json:"medicineName"`
	Dosage       string    `json:"dosage"`
	Company      string    `json:"company"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Matches reports whether the medicine's name, dosage or company contains
// term, ignoring case.
func (m *Medicine) Matches(term string) bool {
	lower := strings.ToLower(term)

	return strings.Contains(strings.ToLower(m.MedicineName), lower) ||
		strings.Contains(strings.ToLower(m.Dosage), lower) ||
		strings.Contains(strings.ToLower(m.Company), lower)
}

// DeletedMedicine builds the placeholder used when an order's medicine is gone.
func DeletedMedicine(order *Order) *Medicine {
	return &Medicine{
		ID:           order.MedicineID,
		UserID:       order.UserID,
		MedicineName: DeletedMedicineName,
	}
}

// MedicinePatch is a partial update of a Medicine. The owning user cannot be changed.
type MedicinePatch struct {
	MedicineName *string `json:"medicineName,omitempty"`
	Dosage       *string `json:"dosage,omitempty"`
	Company      *string `json:"company,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *MedicinePatch) IsEmpty() bool {
	return p == nil || (p.MedicineName == nil && p.Dosage == nil && p.Company == nil)
}
