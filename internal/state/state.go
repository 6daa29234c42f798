package state

import (
	"medtrack/internal/domain/entity"
)

// State is the read model consumed by the view layer. Collections are
// replaced wholesale after every action and never patched in place.
type State struct {
	Users     []*entity.User
	Medicines []*entity.Medicine
	Orders    []*entity.Order

	CurrentUser     *entity.User
	CurrentMedicine *entity.Medicine
	CurrentOrder    *entity.Order

	IsLoading bool
	Error     string // Empty when there is no error to display.
}

// TotalUsers returns the number of cached users.
func (st State) TotalUsers() int { return len(st.Users) }

// TotalMedicines returns the number of cached medicines.
func (st State) TotalMedicines() int { return len(st.Medicines) }

// TotalOrders returns the number of cached orders.
func (st State) TotalOrders() int { return len(st.Orders) }

// UsersWithMedicines counts cached users owning at least one cached medicine.
func (st State) UsersWithMedicines() int {
	owners := make(map[uint]struct{}, len(st.Medicines))
	for _, m := range st.Medicines {
		owners[m.UserID] = struct{}{}
	}

	count := 0
	for _, u := range st.Users {
		if _, ok := owners[u.ID]; ok {
			count++
		}
	}

	return count
}

// AverageMedicinesPerUser is 0 when no users are cached.
func (st State) AverageMedicinesPerUser() float64 {
	if len(st.Users) == 0 {
		return 0
	}

	return float64(len(st.Medicines)) / float64(len(st.Users))
}

func (st State) UserByID(id uint) *entity.User {
	for _, u := range st.Users {
		if u.ID == id {
			return u
		}
	}

	return nil
}

func (st State) MedicineByID(id uint) *entity.Medicine {
	for _, m := range st.Medicines {
		if m.ID == id {
			return m
		}
	}

	return nil
}

func (st State) OrderByID(id uint) *entity.Order {
	for _, o := range st.Orders {
		if o.ID == id {
			return o
		}
	}

	return nil
}

func (st State) MedicinesByUser(userID uint) []*entity.Medicine {
	var out []*entity.Medicine
	for _, m := range st.Medicines {
		if m.UserID == userID {
			out = append(out, m)
		}
	}

	return out
}

func (st State) OrdersByUser(userID uint) []*entity.Order {
	var out []*entity.Order
	for _, o := range st.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}

	return out
}

// clone deep-copies st so observers can never alias the store's records.
func (st State) clone() State {
	out := st
	out.Users = cloneAll(st.Users)
	out.Medicines = cloneAll(st.Medicines)
	out.Orders = cloneAll(st.Orders)
	out.CurrentUser = cloneOne(st.CurrentUser)
	out.CurrentMedicine = cloneOne(st.CurrentMedicine)
	out.CurrentOrder = cloneOne(st.CurrentOrder)

	return out
}

func cloneOne[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v

	return &c
}

func cloneAll[T any](in []*T) []*T {
	if in == nil {
		return nil
	}
	out := make([]*T, len(in))
	for i, v := range in {
		out[i] = cloneOne(v)
	}

	return out
}
