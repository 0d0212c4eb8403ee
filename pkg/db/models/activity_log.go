package models

import "time"

// ActivityLog is an append-only audit row. Rows are never mutated or
// deleted by normal operation.
type ActivityLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	Action      string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"not null;index"`
	RelatedID   *int64    `gorm:"column:related_id"`
	RelatedType *string   `gorm:"column:related_type;type:text"`
}
