package model

// MedicineModel mirrors the 'medicines' table. (user_id, medicine_name) is
// backed by a unique index.
type MedicineModel struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	UserID       uint   `gorm:"not null;index;uniqueIndex:idx_medicines_user_name,priority:1"`
	MedicineName string `gorm:"type:text;not null;uniqueIndex:idx_medicines_user_name,priority:2"`
	Dosage       string `gorm:"type:text;not null"`
	Company      string `gorm:"type:text;not null"`
	CreatedAtMs  int64  `gorm:"column:created_at;not null"`
}

// TableName explicitly sets the table name for GORM.
func (MedicineModel) TableName() string {
	return "medicines"
}
