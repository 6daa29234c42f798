package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"medtrack/config"
	"medtrack/internal/infra/persistence/sqlite"
	"medtrack/internal/infra/persistence/sqlite/sqlitetest"
	"medtrack/internal/usecase"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}

type testEnv struct {
	db        *gorm.DB
	clock     *fakeClock
	users     usecase.UserUsecase
	medicines usecase.MedicineUsecase
	orders    usecase.OrderUsecase
	stats     usecase.StatisticsUsecase
	backup    usecase.BackupUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := sqlitetest.NewDB(t)
	logger := sqlitetest.DiscardLogger()
	clock := &fakeClock{now: testNow}
	txManager := sqlite.NewTransactionManager(db)
	userRepo := sqlite.NewUserRepository(db)
	medicineRepo := sqlite.NewMedicineRepository(db)
	orderRepo := sqlite.NewOrderRepository(db)

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return &testEnv{
		db:    db,
		clock: clock,
		users: NewUserService(UserServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, Clock: clock, Logger: logger,
		}),
		medicines: NewMedicineService(MedicineServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, Clock: clock, Logger: logger,
		}),
		orders: NewOrderService(OrderServiceParams{
			TxManager: txManager, UserRepo: userRepo, MedicineRepo: medicineRepo, OrderRepo: orderRepo,
			Clock: clock, Config: cfg, Logger: logger,
		}),
		stats: NewStatisticsService(txManager, logger),
		backup: NewBackupService(BackupServiceParams{
			TxManager: txManager, Clock: clock, Logger: logger,
		}),
	}
}

func (env *testEnv) addUser(t *testing.T, name, phone string) uint {
	t.Helper()

	id, err := env.users.AddUser(context.Background(), &usecase.AddUserInput{FullName: name, PhoneNumber: phone})
	require.NoError(t, err)

	return id
}

func (env *testEnv) addMedicine(t *testing.T, userID uint, name, dosage string) uint {
	t.Helper()

	id, err := env.medicines.AddMedicine(context.Background(), &usecase.AddMedicineInput{
		UserID: userID, MedicineName: name, Dosage: dosage,
	})
	require.NoError(t, err)

	return id
}

func (env *testEnv) addOrder(t *testing.T, userID, medicineID uint, quantity int) uint {
	t.Helper()

	id, err := env.orders.AddOrder(context.Background(), &usecase.AddOrderInput{
		UserID: userID, MedicineID: medicineID, Quantity: quantity,
	})
	require.NoError(t, err)

	return id
}

func strPtr(s string) *string { return &s }
