package impl

import "medtrack/internal/domain/entity"

func indexMedicines(medicines []*entity.Medicine) map[uint]*entity.Medicine {
	byID := make(map[uint]*entity.Medicine, len(medicines))
	for _, medicine := range medicines {
		byID[medicine.ID] = medicine
	}

	return byID
}

// enrichOrder joins an order with its medicine, substituting the deleted
// medicine placeholder for dangling references.
func enrichOrder(order *entity.Order, medicineByID map[uint]*entity.Medicine) *entity.EnrichedOrder {
	medicine, ok := medicineByID[order.MedicineID]
	if !ok {
		medicine = entity.DeletedMedicine(order)
	}

	return &entity.EnrichedOrder{Order: *order, Medicine: medicine}
}

func enrichOrders(orders []*entity.Order, medicineByID map[uint]*entity.Medicine) []*entity.EnrichedOrder {
	enriched := make([]*entity.EnrichedOrder, 0, len(orders))
	for _, order := range orders {
		enriched = append(enriched, enrichOrder(order, medicineByID))
	}

	return enriched
}

// buildUsersWithOrders groups orders under their users. Users without a
// matching order are dropped; orders whose user no longer exists are not
// reported. User order is preserved.
func buildUsersWithOrders(
	users []*entity.User,
	orders []*entity.Order,
	medicineByID map[uint]*entity.Medicine,
) []*entity.UserWithOrders {
	ordersByUser := make(map[uint][]*entity.EnrichedOrder)
	for _, order := range orders {
		ordersByUser[order.UserID] = append(ordersByUser[order.UserID], enrichOrder(order, medicineByID))
	}

	result := make([]*entity.UserWithOrders, 0, len(ordersByUser))
	for _, user := range users {
		userOrders := ordersByUser[user.ID]
		if len(userOrders) == 0 {
			continue
		}

		result = append(result, &entity.UserWithOrders{
			User:       *user,
			Orders:     userOrders,
			OrderStats: entity.NewOrderStats(userOrders),
		})
	}

	return result
}

func uniqueMedicineIDs(orders []*entity.Order) []uint {
	seen := make(map[uint]struct{}, len(orders))
	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.MedicineID]; ok {
			continue
		}
		seen[order.MedicineID] = struct{}{}
		ids = append(ids, order.MedicineID)
	}

	return ids
}
