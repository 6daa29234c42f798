package impl

import (
	"context"
	"testing"
	"time"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_BulkSetExportedScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")

	orderID, err := env.orders.AddOrder(ctx, &usecase.AddOrderInput{
		UserID: userID, MedicineID: medicineID, Quantity: 10, Exported: entity.ExportPending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, orderID)

	n, err := env.orders.BulkSetExported(ctx, []uint{orderID}, entity.ExportExported)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := env.orders.GetUnexportedOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOrderService_BulkSetExportedCountsAttemptedIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.orders.BulkSetExported(ctx, nil, entity.ExportExported)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = env.orders.BulkSetExported(ctx, []uint{100, 200, 300}, entity.ExportExported)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOrderService_RetentionScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")

	env.clock.Set(testNow.AddDate(0, 0, -40))
	oldID := env.addOrder(t, userID, medicineID, 2)
	env.clock.Set(testNow.AddDate(0, 0, -1))
	recentID := env.addOrder(t, userID, medicineID, 3)
	env.clock.Set(testNow)

	deleted, err := env.orders.DeleteOrdersOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = env.orders.GetOrderByID(ctx, oldID)
	require.ErrorIs(t, err, domainerrors.ErrOrderNotFound)

	_, err = env.orders.GetOrderByID(ctx, recentID)
	require.NoError(t, err)

	deleted, err = env.orders.DeleteOrdersOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestOrderService_RetentionDefaultsToConfiguredDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")

	env.clock.Set(testNow.AddDate(0, 0, -31))
	env.addOrder(t, userID, medicineID, 1)
	env.clock.Set(testNow.AddDate(0, 0, -29))
	env.addOrder(t, userID, medicineID, 1)
	env.clock.Set(testNow)

	deleted, err := env.orders.DeleteOrdersOlderThan(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestOrderService_RejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")
	orderID := env.addOrder(t, userID, medicineID, 5)

	for _, q := range []int{0, -3} {
		_, err := env.orders.AddOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: q})
		require.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

		_, err = env.orders.EditQuantity(ctx, orderID, q)
		require.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

		quantity := q
		_, err = env.orders.EditOrder(ctx, orderID, &entity.OrderPatch{Quantity: &quantity})
		require.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
		assert.Equal(t, domainerrors.KindValidation, domainerrors.KindOf(err))
	}

	order, err := env.orders.GetOrderByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, 5, order.Quantity)

	all, err := env.orders.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := env.orders.EditQuantity(ctx, orderID, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = env.orders.EditQuantity(ctx, 404, 8)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderService_AddOrderValidatesReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")

	for _, missingUser := range []uint{0, 404} {
		_, err := env.orders.AddOrder(ctx, &usecase.AddOrderInput{UserID: missingUser, MedicineID: medicineID, Quantity: 1})
		require.ErrorIs(t, err, domainerrors.ErrUserReference, "userID %d", missingUser)
	}

	for _, missingMedicine := range []uint{0, 404} {
		_, err := env.orders.AddOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: missingMedicine, Quantity: 1})
		require.ErrorIs(t, err, domainerrors.ErrMedicineReference, "medicineID %d", missingMedicine)
	}

	_, err := env.orders.AddOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: 1, Exported: 7})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	orderID := env.addOrder(t, userID, medicineID, 1)
	missing := uint(404)
	_, err = env.orders.EditOrder(ctx, orderID, &entity.OrderPatch{MedicineID: &missing})
	require.ErrorIs(t, err, domainerrors.ErrMedicineReference)
}

func TestOrderService_GetUserWithOrdersUsesDeletedMedicineSentinel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	para := env.addMedicine(t, userID, "Paracetamol", "500mg")
	ibu := env.addMedicine(t, userID, "Ibuprofen", "200mg")

	env.clock.Set(testNow.Add(-2 * time.Hour))
	env.addOrder(t, userID, para, 4)
	env.clock.Set(testNow)
	env.addOrder(t, userID, ibu, 2)

	require.NoError(t, env.medicines.DeleteMedicine(ctx, ibu))

	result, err := env.orders.GetUserWithOrders(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Orders, 2)

	assert.Equal(t, "Paracetamol", result.Orders[0].Medicine.MedicineName)

	sentinel := result.Orders[1].Medicine
	assert.Equal(t, entity.DeletedMedicineName, sentinel.MedicineName)
	assert.Equal(t, ibu, sentinel.ID)
	assert.Equal(t, userID, sentinel.UserID)
	assert.Empty(t, sentinel.Dosage)
	assert.Empty(t, sentinel.Company)

	assert.Equal(t, 2, result.OrderStats.TotalOrders)
	assert.Equal(t, 6, result.OrderStats.TotalQuantity)
	assert.InDelta(t, 3.0, result.OrderStats.AverageQuantity, 1e-9)
	require.NotNil(t, result.OrderStats.LastOrderDate)
	assert.True(t, testNow.Equal(*result.OrderStats.LastOrderDate))
}

func TestOrderService_GetUserWithOrdersEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing, err := env.orders.GetUserWithOrders(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)

	userID := env.addUser(t, "Asha", "555-1111")
	empty, err := env.orders.GetUserWithOrders(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Empty(t, empty.Orders)
	assert.Zero(t, empty.OrderStats.TotalOrders)
	assert.Zero(t, empty.OrderStats.AverageQuantity)
	assert.Nil(t, empty.OrderStats.LastOrderDate)
}

func TestOrderService_GetUsersWithOrdersFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	asha := env.addUser(t, "Asha", "555-1111")
	ravi := env.addUser(t, "Ravi", "555-2222")
	env.addUser(t, "Meera", "555-3333")
	ashaMed := env.addMedicine(t, asha, "Paracetamol", "500mg")
	raviMed := env.addMedicine(t, ravi, "Cetirizine", "10mg")

	shared := env.addOrder(t, asha, ashaMed, 10)
	env.addOrder(t, asha, ashaMed, 4)
	env.addOrder(t, ravi, raviMed, 1)

	_, err := env.orders.SetOrderExported(ctx, shared, entity.ExportExported)
	require.NoError(t, err)

	all, err := env.orders.GetUsersWithOrders(ctx, entity.ExportFilterAny)
	require.NoError(t, err)
	require.Len(t, all, 2, "users without orders are dropped")
	assert.Equal(t, "Asha", all[0].FullName)
	assert.Equal(t, 2, all[0].OrderStats.TotalOrders)
	assert.InDelta(t, 7.0, all[0].OrderStats.AverageQuantity, 1e-9)

	pending, err := env.orders.GetUsersWithOrders(ctx, entity.ExportFilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].OrderStats.TotalOrders)
	assert.Equal(t, 4, pending[0].OrderStats.TotalQuantity)

	exported, err := env.orders.GetUsersWithOrders(ctx, entity.ExportFilterExported)
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, asha, exported[0].ID)
	assert.Equal(t, "Paracetamol", exported[0].Orders[0].Medicine.MedicineName)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.addUser(t, "Asha", "555-1111")
	medicineID := env.addMedicine(t, userID, "Paracetamol", "500mg")
	orderID := env.addOrder(t, userID, medicineID, 1)

	require.NoError(t, env.orders.DeleteOrder(ctx, orderID))

	orders, err := env.orders.GetOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
