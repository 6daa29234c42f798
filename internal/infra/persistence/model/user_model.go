package model

import "time"

// UserModel mirrors the 'users' table. Timestamps are stored as unix
// milliseconds so range comparisons stay numeric in SQLite.
type UserModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	FullName    string `gorm:"type:text;not null"`
	PhoneNumber string `gorm:"type:text;not null"`
	Company     string `gorm:"type:text;not null"`
	Address     string `gorm:"type:text;not null"`
	CreatedAtMs int64  `gorm:"column:created_at;not null"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToMillis converts t to the stored representation.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored timestamp back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
