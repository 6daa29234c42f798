package state_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"medtrack/config"
	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/infra/persistence/sqlite"
	"medtrack/internal/infra/persistence/sqlite/sqlitetest"
	"medtrack/internal/state"
	"medtrack/internal/usecase"
	"medtrack/internal/usecase/impl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newStore(t *testing.T) *state.Store {
	t.Helper()

	db := sqlitetest.NewDB(t)
	logger := sqlitetest.DiscardLogger()
	clock := fixedClock{now: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)}
	txManager := sqlite.NewTransactionManager(db)
	userRepo := sqlite.NewUserRepository(db)
	medicineRepo := sqlite.NewMedicineRepository(db)
	orderRepo := sqlite.NewOrderRepository(db)

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return state.New(state.Params{
		Users: impl.NewUserService(impl.UserServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, Clock: clock, Logger: logger,
		}),
		Medicines: impl.NewMedicineService(impl.MedicineServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, Clock: clock, Logger: logger,
		}),
		Orders: impl.NewOrderService(impl.OrderServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, OrderRepo: orderRepo,
			Clock: clock, Config: cfg, Logger: logger,
		}),
		Statistics: impl.NewStatisticsService(txManager, logger),
		Backup: impl.NewBackupService(impl.BackupServiceParams{
			TxManager: txManager, Clock: clock, Logger: logger,
		}),
		Logger: logger,
	})
}

type recorder struct {
	mu        sync.Mutex
	snapshots []state.State
}

func (r *recorder) record(st state.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots = append(r.snapshots, st)
}

func (r *recorder) all() []state.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]state.State(nil), r.snapshots...)
}

func TestStore_CreateFlowsRefreshReadModel(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)

	medicineID, err := store.CreateMedicine(ctx, &usecase.AddMedicineInput{
		UserID: userID, MedicineName: "Paracetamol", Dosage: "500mg",
	})
	require.NoError(t, err)

	orderID, err := store.CreateOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: 10})
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 1, snap.TotalUsers())
	assert.Equal(t, 1, snap.TotalMedicines())
	assert.Equal(t, 1, snap.TotalOrders())
	require.NotNil(t, snap.CurrentUser)
	assert.Equal(t, userID, snap.CurrentUser.ID)
	require.NotNil(t, snap.CurrentMedicine)
	assert.Equal(t, medicineID, snap.CurrentMedicine.ID)
	require.NotNil(t, snap.CurrentOrder)
	assert.Equal(t, orderID, snap.CurrentOrder.ID)
	assert.Equal(t, 1, snap.UsersWithMedicines())
	assert.InDelta(t, 1.0, snap.AverageMedicinesPerUser(), 1e-9)
}

func TestStore_FailureRecordsMessageAndClearsLoading(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)
	_, err = store.CreateMedicine(ctx, &usecase.AddMedicineInput{UserID: userID, MedicineName: "Paracetamol", Dosage: "500mg"})
	require.NoError(t, err)

	_, err = store.CreateMedicine(ctx, &usecase.AddMedicineInput{UserID: userID, MedicineName: "Paracetamol", Dosage: "650mg"})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateMedicine)

	snap := store.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Contains(t, snap.Error, "medicine with this name already exists")
	assert.Equal(t, 1, snap.TotalMedicines())

	// The next action clears the previous error.
	require.NoError(t, store.LoadUsers(ctx))
	assert.Empty(t, store.Snapshot().Error)
}

func TestStore_ObserversSeeLoadingTransitions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec := &recorder{}
	unsubscribe := store.Subscribe(rec.record)

	require.NoError(t, store.Initialize(ctx))

	snapshots := rec.all()
	require.GreaterOrEqual(t, len(snapshots), 2)
	assert.True(t, snapshots[0].IsLoading)
	assert.False(t, snapshots[len(snapshots)-1].IsLoading)

	unsubscribe()
	store.SetError("boom")
	assert.Len(t, rec.all(), len(snapshots))
	assert.Equal(t, "boom", store.Snapshot().Error)

	store.ClearError()
	assert.Empty(t, store.Snapshot().Error)
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)

	snap := store.Snapshot()
	snap.Users[0].FullName = "Mutated"
	snap.CurrentUser.FullName = "Mutated"

	fresh := store.Snapshot()
	assert.Equal(t, "Asha", fresh.Users[0].FullName)
	assert.Equal(t, "Asha", fresh.CurrentUser.FullName)
}

func TestStore_DeleteUserClearsSelectionAndMedicines(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)
	medicineID, err := store.CreateMedicine(ctx, &usecase.AddMedicineInput{UserID: userID, MedicineName: "Paracetamol", Dosage: "500mg"})
	require.NoError(t, err)
	_, err = store.CreateOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, userID))

	snap := store.Snapshot()
	assert.Nil(t, snap.CurrentUser)
	assert.Nil(t, snap.CurrentMedicine)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Medicines)
	assert.Len(t, snap.Orders, 1, "orders are kept as history")
}

func TestStore_OrderActions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)
	medicineID, err := store.CreateMedicine(ctx, &usecase.AddMedicineInput{UserID: userID, MedicineName: "Paracetamol", Dosage: "500mg"})
	require.NoError(t, err)
	first, err := store.CreateOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: 10})
	require.NoError(t, err)
	second, err := store.CreateOrder(ctx, &usecase.AddOrderInput{UserID: userID, MedicineID: medicineID, Quantity: 3})
	require.NoError(t, err)

	_, err = store.UpdateOrderQuantity(ctx, first, 0)
	require.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
	assert.Equal(t, 10, store.Snapshot().OrderByID(first).Quantity)

	updated, err := store.UpdateOrderQuantity(ctx, first, 12)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)
	assert.Equal(t, 12, store.Snapshot().OrderByID(first).Quantity)

	n, err := store.BulkSetExported(ctx, []uint{first}, entity.ExportExported)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := store.GetUnexportedOrdersByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)

	_, err = store.SetOrderExported(ctx, second, entity.ExportExported)
	require.NoError(t, err)
	assert.Equal(t, entity.ExportExported, store.Snapshot().OrderByID(second).Exported)

	withOrders, err := store.LoadUsersWithOrders(ctx, entity.ExportFilterPending)
	require.NoError(t, err)
	assert.Empty(t, withOrders)

	userOrders, err := store.LoadOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, userOrders, 2)

	require.NoError(t, store.DeleteOrder(ctx, first))
	assert.Nil(t, store.Snapshot().OrderByID(first))
}

func TestStore_ExportImport(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, &usecase.AddUserInput{FullName: "Asha", PhoneNumber: "555-1111"})
	require.NoError(t, err)
	_, err = store.CreateMedicine(ctx, &usecase.AddMedicineInput{UserID: userID, MedicineName: "Paracetamol", Dosage: "500mg"})
	require.NoError(t, err)

	export, err := store.ExportData(ctx)
	require.NoError(t, err)

	require.NoError(t, store.ClearUsers(ctx))
	assert.Empty(t, store.Snapshot().Users)

	require.NoError(t, store.ImportData(ctx, export))
	snap := store.Snapshot()
	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.MedicinesByUser(userID), 1)

	stats, err := store.GetStatistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.UsersWithMedicines)
}
