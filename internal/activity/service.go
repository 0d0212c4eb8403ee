package activity

import (
	"context"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// Service defines activity log read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for activity logs. UserID of zero lists
// entries for all users.
type ListParams struct {
	UserID int64
	Limit  int
	Cursor string
}

// ListResult wraps returned logs and the cursor for the next page.
type ListResult struct {
	Items  []models.ActivityLog `json:"items"`
	Cursor string               `json:"cursor"`
}

// NewService wires activity log dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listLogsParams{
		UserID: params.UserID,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity logs")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent activity logs")
	}
	return rows, nil
}
