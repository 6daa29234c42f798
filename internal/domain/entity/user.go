// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

// User is a customer or patient of the pharmacy.
type User struct {
	ID          uint      `json:"id"`          // Engine-assigned identifier, immutable once set.
	FullName    string    `json:"fullName"`    // Required, never empty.
	PhoneNumber string    `json:"phoneNumber"` // Required contact number, matched verbatim in searches.
	Company     string    `json:"company"`     // Optional employer or organisation.
	Address     string    `json:"address"`     // Optional postal address.
	CreatedAt   time.Time `json:"createdAt"`   // Set once on insert.
}

// Matches reports whether the user matches a free-text search term.
// Name, company and address are compared case-insensitively; the phone
// number is a raw substring match.
func (u *User) Matches(term string) bool {
	lower := strings.ToLower(term)

	return strings.Contains(strings.ToLower(u.FullName), lower) ||
		strings.Contains(u.PhoneNumber, term) ||
		strings.Contains(strings.ToLower(u.Company), lower) ||
		strings.Contains(strings.ToLower(u.Address), lower)
}

// UserPatch is a partial update of a User. Nil fields are left untouched.
type UserPatch struct {
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Company     *string `json:"company,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *UserPatch) IsEmpty() bool {
	return p == nil || (p.FullName == nil && p.PhoneNumber == nil && p.Company == nil && p.Address == nil)
}
