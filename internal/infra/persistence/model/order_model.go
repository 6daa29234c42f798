package model

// OrderModel mirrors the 'orders' table. user_id and medicine_id carry no
// foreign key constraint: orders outlive deleted users and medicines.
type OrderModel struct {
	ID          uint  `gorm:"primaryKey;autoIncrement"`
	UserID      uint  `gorm:"not null;index;index:idx_orders_user_exported,priority:1"`
	MedicineID  uint  `gorm:"not null;index"`
	Quantity    int   `gorm:"not null;check:quantity > 0"`
	CreatedAtMs int64 `gorm:"column:created_at;not null;index"`
	Exported    int   `gorm:"not null;default:0;index;index:idx_orders_user_exported,priority:2"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}
