package sqlite

import (
	"context"
	"time"

	"medtrack/internal/domain/entity"
	domainerrors "medtrack/internal/domain/errors"
	"medtrack/internal/domain/repository"
	"medtrack/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements the repository.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order and sets its ID.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)
	orderM.ID = 0

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrInvalidQuantity
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = model.FromMillis(orderM.CreatedAtMs)

	return nil
}

// FindByID retrieves an order by its unique ID.
func (repo *orderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var orderM model.OrderModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find order by ID")
	}

	return toOrderDomain(&orderM), nil
}

// List returns every order matching the export filter.
func (repo *orderRepository) List(ctx context.Context, filter entity.ExportFilter) ([]*entity.Order, error) {
	return repo.find(withExportFilter(repo.db.WithContext(ctx), filter), "failed to list orders")
}

// ListByUser returns a user's orders matching the export filter.
func (repo *orderRepository) ListByUser(ctx context.Context, userID uint, filter entity.ExportFilter) ([]*entity.Order, error) {
	query := withExportFilter(repo.db.WithContext(ctx).Where("user_id = ?", userID), filter)

	return repo.find(query, "failed to list orders by user")
}

func withExportFilter(query *gorm.DB, filter entity.ExportFilter) *gorm.DB {
	if state, ok := filter.State(); ok {
		return query.Where("exported = ?", int(state))
	}

	return query
}

func (repo *orderRepository) find(query *gorm.DB, details string) ([]*entity.Order, error) {
	var orderModels []*model.OrderModel

	if err := query.Order("id ASC").Find(&orderModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, details)
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		orders = append(orders, toOrderDomain(orderM))
	}

	return orders, nil
}

// Update applies a partial patch and returns the number of rows changed.
func (repo *orderRepository) Update(ctx context.Context, id uint, patch *entity.OrderPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}

	updates := map[string]any{}
	if patch.MedicineID != nil {
		updates["medicine_id"] = *patch.MedicineID
	}
	if patch.Quantity != nil {
		updates["quantity"] = *patch.Quantity
	}
	if patch.Exported != nil {
		updates["exported"] = int(*patch.Exported)
	}

	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return 0, domainerrors.ErrInvalidQuantity
		}

		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order")
	}

	return result.RowsAffected, nil
}

// SetExported sets the export state of every listed order in one statement.
func (repo *orderRepository) SetExported(ctx context.Context, ids []uint, state entity.ExportState) error {
	if len(ids) == 0 {
		return nil
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id IN ?", ids).
		Update("exported", int(state)).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to set orders exported")
	}

	return nil
}

// Delete removes one order.
func (repo *orderRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.OrderModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete order")
	}

	return result.RowsAffected, nil
}

// CountCreatedBefore counts orders created strictly before cutoff.
func (repo *orderRepository) CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("created_at < ?", model.ToMillis(cutoff)).
		Count(&count).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count expired orders")
	}

	return count, nil
}

// DeleteCreatedBefore removes orders created strictly before cutoff.
func (repo *orderRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("created_at < ?", model.ToMillis(cutoff)).
		Delete(&model.OrderModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired orders")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	return &entity.Order{
		ID:         data.ID,
		UserID:     data.UserID,
		MedicineID: data.MedicineID,
		Quantity:   data.Quantity,
		CreatedAt:  model.FromMillis(data.CreatedAtMs),
		Exported:   entity.ExportState(data.Exported),
	}
}

// fromOrderDomain converts a domain Order entity to a GORM OrderModel.
func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	return &model.OrderModel{
		ID:          data.ID,
		UserID:      data.UserID,
		MedicineID:  data.MedicineID,
		Quantity:    data.Quantity,
		CreatedAtMs: model.ToMillis(data.CreatedAt),
		Exported:    int(data.Exported),
	}
}
