package impl

import (
	"context"
	"testing"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserService_AddUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.users.AddUser(ctx, &usecase.AddUserInput{FullName: "  Asha ", PhoneNumber: "555-1111", Company: "Acme"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	user, err := env.users.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.FullName)
	assert.Equal(t, "Acme", user.Company)
	assert.True(t, testNow.Equal(user.CreatedAt))

	// Duplicate names and phones are allowed.
	dupID, err := env.users.AddUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)
	assert.NotEqual(t, id, dupID)
}

func TestUserService_AddUserValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input *usecase.AddUserInput
	}{
		{name: "nil input", input: nil},
		{name: "blank name", input: &usecase.AddUserInput{FullName: "   ", PhoneNumber: "555"}},
		{name: "missing phone", input: &usecase.AddUserInput{FullName: "Asha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.AddUser(context.Background(), tt.input)
			require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			assert.Equal(t, domainerrors.KindValidation, domainerrors.KindOf(err))
		})
	}

	count, err := env.users.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.addUser(t, "Asha", "555-1111")

	n, err := env.users.UpdateUser(ctx, id, &entity.UserPatch{Address: strPtr("12 Hill Rd")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = env.users.UpdateUser(ctx, 42, &entity.UserPatch{Address: strPtr("nowhere")})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = env.users.UpdateUser(ctx, id, &entity.UserPatch{FullName: strPtr("")})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	user, err := env.users.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.FullName)
	assert.Equal(t, "12 Hill Rd", user.Address)
}

func TestUserService_GetUserByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.GetUserByID(context.Background(), 7)
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	assert.Equal(t, domainerrors.KindNotFound, domainerrors.KindOf(err))
}

func TestUserService_DeleteUserCascadesMedicinesButKeepsOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addUser(t, "Asha", "555-1111")
	ravi := env.addUser(t, "Ravi", "555-2222")
	para := env.addMedicine(t, asha, "Paracetamol", "500mg")
	env.addMedicine(t, asha, "Ibuprofen", "200mg")
	env.addMedicine(t, ravi, "Paracetamol", "500mg")
	env.addOrder(t, asha, para, 10)

	require.NoError(t, env.users.DeleteUser(ctx, asha))

	remaining, err := env.medicines.GetMedicinesByUser(ctx, asha)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	others, err := env.medicines.GetMedicinesByUser(ctx, ravi)
	require.NoError(t, err)
	assert.Len(t, others, 1)

	orders, err := env.orders.GetOrdersByUser(ctx, asha)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = env.users.GetUserByID(ctx, asha)
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	// Deleting an absent user is not an error.
	require.NoError(t, env.users.DeleteUser(ctx, 999))
}

func TestUserService_DeleteUserIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addUser(t, "Asha", "555-1111")
	env.addMedicine(t, asha, "Paracetamol", "500mg")
	env.addMedicine(t, asha, "Ibuprofen", "200mg")

	injected := errors.New("injected failure")
	require.NoError(t, env.db.Callback().Delete().Before("gorm:delete").Register("test:fail_user_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(injected)
		}
	}))

	err := env.users.DeleteUser(ctx, asha)
	require.ErrorIs(t, err, injected)

	require.NoError(t, env.db.Callback().Delete().Remove("test:fail_user_delete"))

	medicines, err := env.medicines.GetMedicinesByUser(ctx, asha)
	require.NoError(t, err)
	assert.Len(t, medicines, 2, "medicine deletes must roll back with the failed user delete")

	_, err = env.users.GetUserByID(ctx, asha)
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, asha))
	medicines, err = env.medicines.GetMedicinesByUser(ctx, asha)
	require.NoError(t, err)
	assert.Empty(t, medicines)
}

func TestUserService_SearchUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.AddUser(ctx, &usecase.AddUserInput{FullName: "Asha Rao", PhoneNumber: "555-1111", Company: "Sunrise Clinic"})
	require.NoError(t, err)
	_, err = env.users.AddUser(ctx, &usecase.AddUserInput{FullName: "Ravi", PhoneNumber: "98AB-77", Address: "4 Lake View"})
	require.NoError(t, err)
	_, err = env.users.AddUser(ctx, &usecase.AddUserInput{FullName: "Meera", PhoneNumber: "555-3333"})
	require.NoError(t, err)

	tests := []struct {
		term string
		want []string
	}{
		{term: "asha", want: []string{"Asha Rao"}},
		{term: "CLINIC", want: []string{"Asha Rao"}},
		{term: "lake", want: []string{"Ravi"}},
		{term: "555", want: []string{"Asha Rao", "Meera"}},
		{term: "98AB", want: []string{"Ravi"}},
		{term: "98ab", want: []string{}},
		{term: "", want: []string{"Asha Rao", "Ravi", "Meera"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			users, err := env.users.SearchUsers(ctx, tt.term)
			require.NoError(t, err)

			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestUserService_ClearAllUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addUser(t, "Asha", "555-1111")
	env.addMedicine(t, asha, "Paracetamol", "500mg")

	require.NoError(t, env.users.ClearAllUsers(ctx))

	users, err := env.users.CountUsers(ctx)
	require.NoError(t, err)
	medicines, err := env.medicines.CountMedicines(ctx)
	require.NoError(t, err)
	assert.Zero(t, users)
	assert.Zero(t, medicines)
}

func TestUserService_UsersWithMedicines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addUser(t, "Asha", "555-1111")
	ravi := env.addUser(t, "Ravi", "555-2222")
	env.addMedicine(t, asha, "Paracetamol", "500mg")

	single, err := env.users.GetUserWithMedicines(ctx, asha)
	require.NoError(t, err)
	require.NotNil(t, single.User)
	assert.Len(t, single.Medicines, 1)

	missing, err := env.users.GetUserWithMedicines(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing.User)
	assert.Empty(t, missing.Medicines)

	all, err := env.users.GetAllUsersWithMedicines(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, asha, all[0].User.ID)
	assert.Len(t, all[0].Medicines, 1)
	assert.Equal(t, ravi, all[1].User.ID)
	assert.Empty(t, all[1].Medicines)
}

func TestUserService_AddUserWithMedicines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.users.AddUserWithMedicines(ctx,
		&usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"},
		[]*usecase.MedicineDraft{
			{MedicineName: "Paracetamol", Dosage: "500mg"},
			{MedicineName: "Ibuprofen", Dosage: "200mg"},
		},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.UserID)
	assert.Len(t, out.MedicineIDs, 2)

	_, err = env.users.AddUserWithMedicines(ctx,
		&usecase.AddUserInput{FullName: "Ravi", PhoneNumber: "555-2222"},
		[]*usecase.MedicineDraft{
			{MedicineName: "Paracetamol", Dosage: "500mg"},
			{MedicineName: "Paracetamol", Dosage: "650mg"},
		},
	)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateMedicine)

	users, err := env.users.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users, "failed batch must not leave the user behind")

	medicines, err := env.medicines.CountMedicines(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, medicines)
}
