package parts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// LowStockNotifier receives a part whose quantity has fallen below its
// minimum. Implementations must not fail the triggering mutation.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, part *models.Part)
}

// Service defines inventory management operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*PartDTO, error)
	Get(ctx context.Context, id int64) (*PartDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListLowStock(ctx context.Context) ([]PartDTO, error)
	Update(ctx context.Context, params UpdateParams) (*PartDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
	Restock(ctx context.Context, params RestockParams) (*PartDTO, error)
}

type service struct {
	repo     Repository
	recorder activity.Recorder
	notifier LowStockNotifier
	now      func() time.Time
}

// CreateParams carries the fields accepted when registering a part.
type CreateParams struct {
	ActorID            int64
	Name               string
	SKU                string
	Description        *string
	Category           string
	Quantity           int
	MinimumStock       int
	Price              decimal.Decimal
	Supplier           *string
	Location           *string
	CompatibleVehicles types.StringList
	IsStandard         *bool
}

// UpdateParams is an explicit partial update for a part.
type UpdateParams struct {
	ActorID            int64
	ID                 int64
	Name               *string
	Description        *string
	Category           *string
	Quantity           *int
	MinimumStock       *int
	Price              *decimal.Decimal
	Supplier           *string
	Location           *string
	CompatibleVehicles *types.StringList
	IsStandard         *bool
}

// RestockParams increments on-hand stock for a part.
type RestockParams struct {
	ActorID  int64
	ID       int64
	Quantity int
}

// ListParams configures filtering and pagination for the part list.
type ListParams struct {
	Category string
	Supplier string
	Limit    int
	Cursor   string
}

// ListResult wraps returned parts and the cursor for the next page.
type ListResult struct {
	Items  []PartDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

// NewService wires inventory dependencies. The notifier is optional.
func NewService(repo Repository, recorder activity.Recorder, notifier LowStockNotifier) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "parts repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	return &service{
		repo:     repo,
		recorder: recorder,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*PartDTO, error) {
	sku := strings.TrimSpace(params.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if params.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if params.Quantity < 0 || params.MinimumStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity and minimum stock must be non-negative")
	}
	if params.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	count, err := s.repo.CountBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku availability")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already registered")
	}

	part, err := s.repo.Create(ctx, CreatePartDTO{
		Name:               params.Name,
		SKU:                sku,
		Description:        params.Description,
		Category:           params.Category,
		Quantity:           params.Quantity,
		MinimumStock:       params.MinimumStock,
		Price:              params.Price,
		Supplier:           params.Supplier,
		Location:           params.Location,
		CompatibleVehicles: params.CompatibleVehicles,
		IsStandard:         params.IsStandard,
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create part")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "part.create",
		Description: fmt.Sprintf("added part %s (%s)", part.Name, part.SKU),
		RelatedID:   &part.ID,
		RelatedType: relatedPart(),
	})
	s.maybeNotifyLowStock(ctx, part)
	return FromModel(part), nil
}

func (s *service) Get(ctx context.Context, id int64) (*PartDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load part")
	}
	return FromModel(part), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listPartsParams{
		Category: params.Category,
		Supplier: params.Supplier,
		Limit:    params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parts")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]PartDTO, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock parts")
	}
	return FromModels(rows), nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*PartDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if params.Quantity != nil && *params.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if params.MinimumStock != nil && *params.MinimumStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock must be non-negative")
	}
	if params.Price != nil && params.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	update := UpdatePartDTO{
		Name:               params.Name,
		Description:        params.Description,
		Category:           params.Category,
		Quantity:           params.Quantity,
		MinimumStock:       params.MinimumStock,
		Price:              params.Price,
		Supplier:           params.Supplier,
		Location:           params.Location,
		CompatibleVehicles: params.CompatibleVehicles,
		IsStandard:         params.IsStandard,
	}
	changes := update.changes()
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update part")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}

	part, err := s.repo.FindByID(ctx, params.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload part")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "part.update",
		Description: fmt.Sprintf("updated part %s", part.Name),
		RelatedID:   &part.ID,
		RelatedType: relatedPart(),
	})
	s.maybeNotifyLowStock(ctx, part)
	return FromModel(part), nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete part")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "part.delete",
		Description: fmt.Sprintf("deleted part %d", id),
		RelatedID:   &id,
		RelatedType: relatedPart(),
	})
	return nil
}

func (s *service) Restock(ctx context.Context, params RestockParams) (*PartDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if params.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	now := s.now()
	affected, err := s.repo.IncrementQuantity(ctx, params.ID, params.Quantity, &now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock part")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}

	part, err := s.repo.FindByID(ctx, params.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload part")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "part.restock",
		Description: fmt.Sprintf("restocked part %s by %d", part.Name, params.Quantity),
		RelatedID:   &part.ID,
		RelatedType: relatedPart(),
	})
	return FromModel(part), nil
}

func (s *service) maybeNotifyLowStock(ctx context.Context, part *models.Part) {
	if s.notifier == nil || part == nil || !part.IsLowStock() {
		return
	}
	s.notifier.NotifyLowStock(ctx, part)
}

func relatedPart() *string {
	t := "part"
	return &t
}
