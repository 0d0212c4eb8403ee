package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
	"github.com/fleetyard/fleetyard-backend/pkg/security"
)

const minPasswordLength = 8

// Service defines user management operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, params UpdateParams) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type service struct {
	repo        Repository
	recorder    activity.Recorder
	passwordCfg config.PasswordConfig
}

// CreateParams carries the fields accepted when registering a user.
type CreateParams struct {
	ActorID      int64
	Username     string
	Password     string
	Name         string
	Role         enums.UserRole
	Email        *string
	Phone        *string
	ProfileImage *string
}

// UpdateParams is an explicit partial update. Nil fields are untouched.
type UpdateParams struct {
	ActorID      int64
	ID           int64
	Name         *string
	Role         *enums.UserRole
	Email        *string
	Phone        *string
	ProfileImage *string
	Password     *string
}

// ListParams configures pagination for the user list.
type ListParams struct {
	Role   string
	Limit  int
	Cursor string
}

// ListResult wraps returned users and the cursor for the next page.
type ListResult struct {
	Items  []UserDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

// NewService wires user management dependencies.
func NewService(repo Repository, recorder activity.Recorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	return &service{repo: repo, recorder: recorder, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*UserDTO, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if len(params.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if params.Role != "" && !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	count, err := s.repo.CountByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username availability")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}

	hash, err := security.HashPassword(params.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Name:         params.Name,
		Role:         params.Role,
		Email:        params.Email,
		Phone:        params.Phone,
		ProfileImage: params.ProfileImage,
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorOrSelf(params.ActorID, user.ID),
		Action:      "user.create",
		Description: fmt.Sprintf("created user %s", user.Username),
		RelatedID:   &user.ID,
		RelatedType: relatedUser(),
	})
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Role != "" {
		if _, err := enums.ParseUserRole(params.Role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
	}

	query := listUsersParams{Role: params.Role, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*UserDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.Role != nil && !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	update := UpdateUserDTO{
		Name:         params.Name,
		Role:         params.Role,
		Email:        params.Email,
		Phone:        params.Phone,
		ProfileImage: params.ProfileImage,
	}
	if params.Password != nil {
		if len(*params.Password) < minPasswordLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := security.HashPassword(*params.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		update.PasswordHash = &hash
	}

	changes := update.changes()
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	user, err := s.repo.FindByID(ctx, params.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorOrSelf(params.ActorID, user.ID),
		Action:      "user.update",
		Description: fmt.Sprintf("updated user %s", user.Username),
		RelatedID:   &user.ID,
		RelatedType: relatedUser(),
	})
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorOrSelf(actorID, id),
		Action:      "user.delete",
		Description: fmt.Sprintf("deleted user %d", id),
		RelatedID:   &id,
		RelatedType: relatedUser(),
	})
	return nil
}

func actorOrSelf(actorID, fallback int64) int64 {
	if actorID != 0 {
		return actorID
	}
	return fallback
}

func relatedUser() *string {
	t := "user"
	return &t
}
