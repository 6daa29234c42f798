// Package state holds the observable read model the view layer renders from.
package state

import (
	"context"
	"log/slog"
	"sync"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/usecase"

	"go.uber.org/fx"
)

// Store mirrors storage into a State and notifies observers on every change.
// Every action re-reads the affected collections after it mutates anything,
// so the cache never diverges from storage.
type Store struct {
	users      usecase.UserUsecase
	medicines  usecase.MedicineUsecase
	orders     usecase.OrderUsecase
	statistics usecase.StatisticsUsecase
	backup     usecase.BackupUsecase
	logger     *slog.Logger

	mu    sync.Mutex
	state State

	subMu       sync.Mutex
	nextSubID   int
	subscribers []subscriber
}

type subscriber struct {
	id int
	fn func(State)
}

// Params holds dependencies for Store, injected by Fx.
type Params struct {
	fx.In

	Users      usecase.UserUsecase
	Medicines  usecase.MedicineUsecase
	Orders     usecase.OrderUsecase
	Statistics usecase.StatisticsUsecase
	Backup     usecase.BackupUsecase
	Logger     *slog.Logger
}

// New creates an empty store. Call Initialize to populate it.
func New(params Params) *Store {
	return &Store{
		users:      params.Users,
		medicines:  params.Medicines,
		orders:     params.Orders,
		statistics: params.Statistics,
		backup:     params.Backup,
		logger:     params.Logger,
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()

		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)

				return
			}
		}
	}
}

// update applies mutate under the lock and then notifies subscribers outside it.
func (s *Store) update(mutate func(st *State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot.clone())
	}
}

// SetError records a display message without running an action.
func (s *Store) SetError(message string) {
	s.update(func(st *State) { st.Error = message })
}

func (s *Store) ClearError() {
	s.SetError("")
}

// run wraps an action: loading is raised and the previous error cleared
// before fn, loading is always lowered afterwards, and a failure is recorded
// as a display message before being returned.
func (s *Store) run(action, fallback string, fn func() error) error {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	err := fn()
	if err != nil {
		message := domainerrors.DisplayMessage(err, fallback)
		s.update(func(st *State) { st.Error = message })
		s.logger.Warn("Store action failed",
			slog.String("action", action),
			slog.String("message", message),
			slog.Any("error", err),
		)
	}

	return err
}

// reload replaces every cached collection and re-resolves the current
// selections against the fresh data.
func (s *Store) reload(ctx context.Context) error {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	medicines, err := s.medicines.GetAllMedicines(ctx)
	if err != nil {
		return err
	}
	orders, err := s.orders.GetAllOrders(ctx)
	if err != nil {
		return err
	}

	s.update(func(st *State) {
		st.Users = users
		st.Medicines = medicines
		st.Orders = orders

		if st.CurrentUser != nil {
			st.CurrentUser = State{Users: users}.UserByID(st.CurrentUser.ID)
		}
		if st.CurrentMedicine != nil {
			st.CurrentMedicine = State{Medicines: medicines}.MedicineByID(st.CurrentMedicine.ID)
		}
		if st.CurrentOrder != nil {
			st.CurrentOrder = State{Orders: orders}.OrderByID(st.CurrentOrder.ID)
		}
	})

	return nil
}

// Initialize loads every collection.
func (s *Store) Initialize(ctx context.Context) error {
	return s.run("initialize", "Failed to initialize store", func() error {
		return s.reload(ctx)
	})
}

// --- Users ---

func (s *Store) LoadUsers(ctx context.Context) error {
	return s.run("loadUsers", "Failed to load users", func() error {
		users, err := s.users.GetAllUsers(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) { st.Users = users })

		return nil
	})
}

// LoadUserByID selects a user as CurrentUser.
func (s *Store) LoadUserByID(ctx context.Context, id uint) (*entity.User, error) {
	var user *entity.User
	err := s.run("loadUserById", "Failed to load user", func() error {
		var err error
		if user, err = s.users.GetUserByID(ctx, id); err != nil {
			return err
		}
		s.update(func(st *State) { st.CurrentUser = user })

		return nil
	})

	return user, err
}

// CreateUser adds a user and selects it as CurrentUser.
func (s *Store) CreateUser(ctx context.Context, input *usecase.AddUserInput) (uint, error) {
	var id uint
	err := s.run("createUser", "Failed to create user", func() error {
		var err error
		if id, err = s.users.AddUser(ctx, input); err != nil {
			return err
		}
		if err := s.reload(ctx); err != nil {
			return err
		}
		s.update(func(st *State) { st.CurrentUser = st.UserByID(id) })

		return nil
	})

	return id, err
}

func (s *Store) UpdateUser(ctx context.Context, id uint, patch *entity.UserPatch) (int64, error) {
	var updated int64
	err := s.run("updateUser", "Failed to update user", func() error {
		var err error
		if updated, err = s.users.UpdateUser(ctx, id, patch); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return updated, err
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.run("deleteUser", "Failed to delete user", func() error {
		if err := s.users.DeleteUser(ctx, id); err != nil {
			return err
		}

		return s.reload(ctx)
	})
}

func (s *Store) SearchUsers(ctx context.Context, term string) ([]*entity.User, error) {
	var users []*entity.User
	err := s.run("searchUsers", "Failed to search users", func() error {
		var err error
		users, err = s.users.SearchUsers(ctx, term)

		return err
	})

	return users, err
}

// ClearUsers removes every user and medicine.
func (s *Store) ClearUsers(ctx context.Context) error {
	return s.run("clearUsers", "Failed to clear users", func() error {
		if err := s.users.ClearAllUsers(ctx); err != nil {
			return err
		}

		return s.reload(ctx)
	})
}

// --- Medicines ---

func (s *Store) LoadMedicines(ctx context.Context) error {
	return s.run("loadMedicines", "Failed to load medicines", func() error {
		medicines, err := s.medicines.GetAllMedicines(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) { st.Medicines = medicines })

		return nil
	})
}

func (s *Store) LoadMedicinesByUser(ctx context.Context, userID uint) ([]*entity.Medicine, error) {
	var medicines []*entity.Medicine
	err := s.run("loadMedicinesByUser", "Failed to load medicines", func() error {
		var err error
		medicines, err = s.medicines.GetMedicinesByUser(ctx, userID)

		return err
	})

	return medicines, err
}

func (s *Store) LoadMedicineWithUser(ctx context.Context, id uint) (*entity.MedicineWithUser, error) {
	var result *entity.MedicineWithUser
	err := s.run("loadMedicineUserById", "Failed to load medicine", func() error {
		var err error
		result, err = s.medicines.GetMedicineWithUser(ctx, id)

		return err
	})

	return result, err
}

// LoadUserWithMedicines selects the user as CurrentUser when it exists.
func (s *Store) LoadUserWithMedicines(ctx context.Context, userID uint) (*entity.UserWithMedicines, error) {
	var result *entity.UserWithMedicines
	err := s.run("loadUserWithMedicines", "Failed to load user with medicines", func() error {
		var err error
		if result, err = s.users.GetUserWithMedicines(ctx, userID); err != nil {
			return err
		}
		if result.User == nil {
			return nil
		}
		if err := s.reload(ctx); err != nil {
			return err
		}
		s.update(func(st *State) { st.CurrentUser = st.UserByID(userID) })

		return nil
	})

	return result, err
}

// LoadAllUsersWithMedicines replaces the cached users and medicines.
func (s *Store) LoadAllUsersWithMedicines(ctx context.Context) ([]*entity.UserWithMedicines, error) {
	var results []*entity.UserWithMedicines
	err := s.run("loadAllUsersWithMedicines", "Failed to load users with medicines", func() error {
		var err error
		if results, err = s.users.GetAllUsersWithMedicines(ctx); err != nil {
			return err
		}

		users := make([]*entity.User, 0, len(results))
		var medicines []*entity.Medicine
		for _, r := range results {
			users = append(users, r.User)
			medicines = append(medicines, r.Medicines...)
		}
		s.update(func(st *State) {
			st.Users = users
			st.Medicines = medicines
		})

		return nil
	})

	return results, err
}

// CreateMedicine adds a medicine and selects it as CurrentMedicine.
func (s *Store) CreateMedicine(ctx context.Context, input *usecase.AddMedicineInput) (uint, error) {
	var id uint
	err := s.run("createMedicine", "Failed to create medicine", func() error {
		var err error
		if id, err = s.medicines.AddMedicine(ctx, input); err != nil {
			return err
		}
		if err := s.reload(ctx); err != nil {
			return err
		}
		s.update(func(st *State) { st.CurrentMedicine = st.MedicineByID(id) })

		return nil
	})

	return id, err
}

func (s *Store) UpdateMedicine(ctx context.Context, id uint, patch *entity.MedicinePatch) (int64, error) {
	var updated int64
	err := s.run("updateMedicine", "Failed to update medicine", func() error {
		var err error
		if updated, err = s.medicines.UpdateMedicine(ctx, id, patch); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return updated, err
}

func (s *Store) DeleteMedicine(ctx context.Context, id uint) error {
	return s.run("deleteMedicine", "Failed to delete medicine", func() error {
		if err := s.medicines.DeleteMedicine(ctx, id); err != nil {
			return err
		}

		return s.reload(ctx)
	})
}

func (s *Store) SearchMedicines(ctx context.Context, term string) ([]*entity.Medicine, error) {
	var medicines []*entity.Medicine
	err := s.run("searchMedicines", "Failed to search medicines", func() error {
		var err error
		medicines, err = s.medicines.SearchMedicines(ctx, term)

		return err
	})

	return medicines, err
}

func (s *Store) SearchMedicinesByUser(ctx context.Context, userID uint, term string) ([]*entity.Medicine, error) {
	var medicines []*entity.Medicine
	err := s.run("searchMedicinesByUser", "Failed to search medicines", func() error {
		var err error
		medicines, err = s.medicines.SearchMedicinesByUser(ctx, userID, term)

		return err
	})

	return medicines, err
}

// CreateUserWithMedicines adds a user and its medicines atomically.
func (s *Store) CreateUserWithMedicines(
	ctx context.Context,
	input *usecase.AddUserInput,
	drafts []*usecase.MedicineDraft,
) (*usecase.AddUserWithMedicinesOutput, error) {
	var out *usecase.AddUserWithMedicinesOutput
	err := s.run("createUserWithMedicines", "Failed to create user with medicines", func() error {
		var err error
		if out, err = s.users.AddUserWithMedicines(ctx, input, drafts); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return out, err
}

// --- Orders ---

// LoadAllOrders replaces the cached orders.
func (s *Store) LoadAllOrders(ctx context.Context) ([]*entity.Order, error) {
	var orders []*entity.Order
	err := s.run("loadAllOrders", "Failed to load orders", func() error {
		var err error
		if orders, err = s.orders.GetAllOrders(ctx); err != nil {
			return err
		}
		s.update(func(st *State) { st.Orders = orders })

		return nil
	})

	return orders, err
}

// LoadOrdersByUser refreshes the cached orders and returns the user's.
func (s *Store) LoadOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error) {
	var orders []*entity.Order
	err := s.run("loadOrdersByUserId", "Failed to load user orders", func() error {
		all, err := s.orders.GetAllOrders(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) { st.Orders = all })
		orders = State{Orders: all}.OrdersByUser(userID)

		return nil
	})

	return orders, err
}

// GetUnexportedOrdersByUser reads straight from storage without touching the
// loading flag.
func (s *Store) GetUnexportedOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error) {
	return s.orders.GetUnexportedOrdersByUser(ctx, userID)
}

func (s *Store) LoadUsersWithOrders(ctx context.Context, filter entity.ExportFilter) ([]*entity.UserWithOrders, error) {
	var results []*entity.UserWithOrders
	err := s.run("loadUsersWithOrders", "Failed to load orders", func() error {
		var err error
		results, err = s.orders.GetUsersWithOrders(ctx, filter)

		return err
	})

	return results, err
}

// LoadUserWithOrders returns nil when the user does not exist.
func (s *Store) LoadUserWithOrders(ctx context.Context, userID uint) (*entity.UserWithOrders, error) {
	var result *entity.UserWithOrders
	err := s.run("loadUserWithOrders", "Failed to load user orders", func() error {
		var err error
		result, err = s.orders.GetUserWithOrders(ctx, userID)

		return err
	})

	return result, err
}

// CreateOrder adds an order and selects it as CurrentOrder.
func (s *Store) CreateOrder(ctx context.Context, input *usecase.AddOrderInput) (uint, error) {
	var id uint
	err := s.run("createOrder", "Failed to create order", func() error {
		var err error
		if id, err = s.orders.AddOrder(ctx, input); err != nil {
			return err
		}
		if err := s.reload(ctx); err != nil {
			return err
		}
		s.update(func(st *State) { st.CurrentOrder = st.OrderByID(id) })

		return nil
	})

	return id, err
}

func (s *Store) UpdateOrderQuantity(ctx context.Context, id uint, quantity int) (int64, error) {
	var updated int64
	err := s.run("updateOrderQuantity", "Failed to update order quantity", func() error {
		var err error
		if updated, err = s.orders.EditQuantity(ctx, id, quantity); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return updated, err
}

func (s *Store) UpdateOrder(ctx context.Context, id uint, patch *entity.OrderPatch) (int64, error) {
	var updated int64
	err := s.run("updateOrder", "Failed to update order", func() error {
		var err error
		if updated, err = s.orders.EditOrder(ctx, id, patch); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return updated, err
}

func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	return s.run("deleteOrder", "Failed to delete order", func() error {
		if err := s.orders.DeleteOrder(ctx, id); err != nil {
			return err
		}

		return s.reload(ctx)
	})
}

// DeleteOrdersOlderThan runs the retention sweep. days <= 0 uses the configured default.
func (s *Store) DeleteOrdersOlderThan(ctx context.Context, days int) (int64, error) {
	var deleted int64
	err := s.run("deleteOrdersOlderThan", "Failed to delete old orders", func() error {
		var err error
		if deleted, err = s.orders.DeleteOrdersOlderThan(ctx, days); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return deleted, err
}

func (s *Store) BulkSetExported(ctx context.Context, ids []uint, state entity.ExportState) (int, error) {
	var count int
	err := s.run("bulkSetExported", "Failed to set export state", func() error {
		var err error
		if count, err = s.orders.BulkSetExported(ctx, ids, state); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return count, err
}

// SetOrderExported is the only write the sharing subsystem performs.
func (s *Store) SetOrderExported(ctx context.Context, id uint, state entity.ExportState) (int64, error) {
	var updated int64
	err := s.run("setOrderExported", "Failed to set export state", func() error {
		var err error
		if updated, err = s.orders.SetOrderExported(ctx, id, state); err != nil {
			return err
		}

		return s.reload(ctx)
	})

	return updated, err
}

// --- Aggregates and backup ---

func (s *Store) GetStatistics(ctx context.Context) (*entity.Statistics, error) {
	var stats *entity.Statistics
	err := s.run("getStatistics", "Failed to get statistics", func() error {
		var err error
		stats, err = s.statistics.GetStatistics(ctx)

		return err
	})

	return stats, err
}

func (s *Store) ExportData(ctx context.Context) (*entity.DataExport, error) {
	var export *entity.DataExport
	err := s.run("exportData", "Failed to export data", func() error {
		var err error
		export, err = s.backup.ExportData(ctx)

		return err
	})

	return export, err
}

// ImportData replaces every user and medicine with data.
func (s *Store) ImportData(ctx context.Context, data *entity.DataExport) error {
	return s.run("importData", "Failed to import data", func() error {
		if err := s.backup.ImportData(ctx, data); err != nil {
			return err
		}

		return s.reload(ctx)
	})
}
