package models

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// User represents the canonical identity entity. PasswordHash holds an
// Argon2id hash string and must never be serialized into API responses.
type User struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"`
	Username     string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"type:text;not null"`
	Role         enums.UserRole `gorm:"type:text;not null;default:'driver'"`
	Email        *string        `gorm:"type:text"`
	Phone        *string        `gorm:"type:text"`
	ProfileImage *string        `gorm:"column:profile_image;type:text"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
