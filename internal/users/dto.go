package users

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Name         string         `json:"name"`
	Role         enums.UserRole `json:"role"`
	Email        *string        `json:"email,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	ProfileImage *string        `json:"profile_image,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
// PasswordHash must already be an encoded Argon2id hash.
type CreateUserDTO struct {
	Username     string
	PasswordHash string
	Name         string
	Role         enums.UserRole
	Email        *string
	Phone        *string
	ProfileImage *string
}

// UpdateUserDTO carries the explicit set of mutable fields. Nil means
// leave the column untouched; there is no blind merging of request bodies.
type UpdateUserDTO struct {
	Name         *string
	Role         *enums.UserRole
	Email        *string
	Phone        *string
	ProfileImage *string
	PasswordHash *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Role:         u.Role,
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleDriver
	}
	return &models.User{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Role:         role,
		Email:        c.Email,
		Phone:        c.Phone,
		ProfileImage: c.ProfileImage,
	}
}

func (u UpdateUserDTO) changes() map[string]any {
	changes := map[string]any{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Role != nil {
		changes["role"] = *u.Role
	}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.Phone != nil {
		changes["phone"] = *u.Phone
	}
	if u.ProfileImage != nil {
		changes["profile_image"] = *u.ProfileImage
	}
	if u.PasswordHash != nil {
		changes["password_hash"] = *u.PasswordHash
	}
	return changes
}
