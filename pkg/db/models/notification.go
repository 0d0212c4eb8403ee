package models

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// Notification is an in-app message addressed to a single user. MarkRead is
// the only state transition it undergoes.
type Notification struct {
	ID          int64                  `gorm:"primaryKey;autoIncrement"`
	UserID      int64                  `gorm:"column:user_id;not null;index"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	Type        enums.NotificationType `gorm:"type:text;not null"`
	IsRead      bool                   `gorm:"column:is_read;not null;default:false"`
	RelatedID   *int64                 `gorm:"column:related_id"`
	RelatedType *string                `gorm:"column:related_type;type:text"`
	Link        *string                `gorm:"type:text"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
