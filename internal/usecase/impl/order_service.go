package impl

import (
	"context"
	"log/slog"

	"medtrack/config"
	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/domain/service"
	"medtrack/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultRetentionDays = 30

type orderService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	medicineRepo  repository.MedicineRepository
	orderRepo     repository.OrderRepository
	clock         service.Clock
	retentionDays int
	logger        *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	MedicineRepo repository.MedicineRepository
	OrderRepo    repository.OrderRepository
	Clock        service.Clock
	Config       *config.Config
	Logger       *slog.Logger
}

// NewOrderService creates a new order service instance
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	retentionDays := defaultRetentionDays
	if params.Config != nil && params.Config.Retention != nil && params.Config.Retention.OrderMaxAgeDays > 0 {
		retentionDays = params.Config.Retention.OrderMaxAgeDays
	}

	return &orderService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		medicineRepo:  params.MedicineRepo,
		orderRepo:     params.OrderRepo,
		clock:         params.Clock,
		retentionDays: retentionDays,
		logger:        params.Logger,
	}
}

// AddOrder validates the payload and both references, then inserts.
func (s *orderService) AddOrder(ctx context.Context, input *usecase.AddOrderInput) (uint, error) {
	if input == nil {
		return 0, domainerrors.ErrValidationFailed.WithDetails("order input is required")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return 0, err
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}

	if err := s.ensureUserExists(ctx, input.UserID); err != nil {
		return 0, err
	}
	if err := s.ensureMedicineExists(ctx, input.MedicineID); err != nil {
		return 0, err
	}

	order := &entity.Order{
		UserID:     input.UserID,
		MedicineID: input.MedicineID,
		Quantity:   input.Quantity,
		Exported:   input.Exported,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to add order", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to add order")
	}

	s.logger.Debug("Order added",
		slog.Uint64("orderID", uint64(order.ID)),
		slog.Uint64("userID", uint64(order.UserID)),
		slog.Uint64("medicineID", uint64(order.MedicineID)),
	)

	return order.ID, nil
}

func (s *orderService) ensureUserExists(ctx context.Context, userID uint) error {
	_, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserReference.WithDetails(formatID("user", userID))
	}
	if err != nil {
		return errors.Wrap(err, "failed to find order user")
	}

	return nil
}

func (s *orderService) ensureMedicineExists(ctx context.Context, medicineID uint) error {
	_, err := s.medicineRepo.FindByID(ctx, medicineID)
	if errors.Is(err, repository.ErrMedicineNotFound) {
		return domainerrors.ErrMedicineReference.WithDetails(formatID("medicine", medicineID))
	}
	if err != nil {
		return errors.Wrap(err, "failed to find order medicine")
	}

	return nil
}

// EditQuantity sets an order's quantity. Returns 0 when the order is absent.
func (s *orderService) EditQuantity(ctx context.Context, id uint, quantity int) (int64, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, err
	}

	updated, err := s.orderRepo.Update(ctx, id, &entity.OrderPatch{Quantity: &quantity})
	if err != nil {
		return 0, errors.Wrap(err, "failed to edit order quantity")
	}

	return updated, nil
}

// EditOrder applies a partial patch. Returns 0 when the order is absent.
func (s *orderService) EditOrder(ctx context.Context, id uint, patch *entity.OrderPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}
	if patch.Quantity != nil {
		if err := validateQuantity(*patch.Quantity); err != nil {
			return 0, err
		}
	}
	if patch.Exported != nil && !patch.Exported.Valid() {
		return 0, domainerrors.ErrValidationFailed.WithDetails("exported must be 0 or 1")
	}
	if patch.MedicineID != nil {
		if err := s.ensureMedicineExists(ctx, *patch.MedicineID); err != nil {
			return 0, err
		}
	}

	updated, err := s.orderRepo.Update(ctx, id, patch)
	if err != nil {
		return 0, errors.Wrap(err, "failed to edit order")
	}

	return updated, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	if _, err := s.orderRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete order")
	}

	return nil
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]*entity.Order, error) {
	orders, err := s.orderRepo.List(ctx, entity.ExportFilterAny)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uint) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, domainerrors.ErrOrderNotFound.WithDetails(formatID("order", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	return order, nil
}

func (s *orderService) GetOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID, entity.ExportFilterAny)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders by user")
	}

	return orders, nil
}

func (s *orderService) GetUnexportedOrdersByUser(ctx context.Context, userID uint) ([]*entity.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID, entity.ExportFilterPending)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unexported orders by user")
	}

	return orders, nil
}

// BulkSetExported returns the number of ids attempted, not rows changed.
func (s *orderService) BulkSetExported(ctx context.Context, ids []uint, state entity.ExportState) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if !state.Valid() {
		return 0, domainerrors.ErrValidationFailed.WithDetails("exported must be 0 or 1")
	}

	if err := s.orderRepo.SetExported(ctx, ids, state); err != nil {
		s.logger.Error("Failed to bulk set exported", slog.Int("count", len(ids)), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to bulk set exported")
	}

	s.logger.Debug("Orders export state updated", slog.Int("count", len(ids)), slog.Int("state", int(state)))

	return len(ids), nil
}

func (s *orderService) SetOrderExported(ctx context.Context, id uint, state entity.ExportState) (int64, error) {
	if !state.Valid() {
		return 0, domainerrors.ErrValidationFailed.WithDetails("exported must be 0 or 1")
	}

	updated, err := s.orderRepo.Update(ctx, id, &entity.OrderPatch{Exported: &state})
	if err != nil {
		return 0, errors.Wrap(err, "failed to set order exported")
	}

	return updated, nil
}

// DeleteOrdersOlderThan removes orders created before now minus days.
func (s *orderService) DeleteOrdersOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = s.retentionDays
	}
	cutoff := s.clock.Now().AddDate(0, 0, -days)

	var deleted int64
	err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		expired, err := orderRepo.CountCreatedBefore(ctx, cutoff)
		if err != nil || expired == 0 {
			return err
		}

		deleted, err = orderRepo.DeleteCreatedBefore(ctx, cutoff)

		return err
	})
	if err != nil {
		s.logger.Error("Failed to delete expired orders", slog.Int("days", days), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to delete expired orders")
	}

	if deleted > 0 {
		s.logger.Info("Expired orders deleted", slog.Int("days", days), slog.Int64("count", deleted))
	}

	return deleted, nil
}

// GetUsersWithOrders loads users, filtered orders and medicines from one
// snapshot and joins them in memory.
func (s *orderService) GetUsersWithOrders(ctx context.Context, filter entity.ExportFilter) ([]*entity.UserWithOrders, error) {
	var result []*entity.UserWithOrders

	err := s.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		users, err := repoFactory.UserRepo().List(ctx)
		if err != nil {
			return err
		}
		orders, err := repoFactory.OrderRepo().List(ctx, filter)
		if err != nil {
			return err
		}
		medicines, err := repoFactory.MedicineRepo().List(ctx)
		if err != nil {
			return err
		}

		result = buildUsersWithOrders(users, orders, indexMedicines(medicines))

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load users with orders")
	}

	return result, nil
}

// GetUserWithOrders returns nil, nil when the user does not exist.
func (s *orderService) GetUserWithOrders(ctx context.Context, userID uint) (*entity.UserWithOrders, error) {
	var result *entity.UserWithOrders

	err := s.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		orders, err := repoFactory.OrderRepo().ListByUser(ctx, userID, entity.ExportFilterAny)
		if err != nil {
			return err
		}
		medicines, err := repoFactory.MedicineRepo().ListByIDs(ctx, uniqueMedicineIDs(orders))
		if err != nil {
			return err
		}

		enriched := enrichOrders(orders, indexMedicines(medicines))
		result = &entity.UserWithOrders{
			User:       *user,
			Orders:     enriched,
			OrderStats: entity.NewOrderStats(enriched),
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user with orders")
	}

	return result, nil
}
