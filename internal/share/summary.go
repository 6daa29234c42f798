package share

import (
	"fmt"
	"strings"

	"medtrack/internal/domain/entity"
)

// FormatOrderSummary renders one numbered line per order as
// "<n> <medicine> <dosage> - <quantity>".
func FormatOrderSummary(userOrders *entity.UserWithOrders) string {
	if userOrders == nil {
		return ""
	}

	lines := make([]string, 0, len(userOrders.Orders))
	for i, order := range userOrders.Orders {
		name, dosage := entity.DeletedMedicineName, ""
		if order.Medicine != nil {
			name, dosage = order.Medicine.MedicineName, order.Medicine.Dosage
		}
		lines = append(lines, fmt.Sprintf("%d %s %s - %d", i+1, name, dosage, order.Quantity))
	}

	return strings.Join(lines, "\n")
}
