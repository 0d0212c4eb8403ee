package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

// Service defines purchase order lifecycle operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*OrderDTO, error)
	Get(ctx context.Context, id int64) (*OrderDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, params UpdateParams) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, params StatusParams) (*OrderDTO, error)
	Delete(ctx context.Context, actorID, id int64) error

	AddItem(ctx context.Context, params AddItemParams) (*OrderItemDTO, error)
	ListItems(ctx context.Context, orderID int64) ([]OrderItemDTO, error)
	RemoveItem(ctx context.Context, actorID, orderID, itemID int64) error
}

type service struct {
	repo      Repository
	sequences Sequences
	catalog   Catalog
	recorder  activity.Recorder
	notifier  Notifier
	now       func() time.Time
}

// CreateParams opens a new purchase order. Lines reference parts by id;
// each line snapshots the part's current price.
type CreateParams struct {
	ActorID  int64
	Supplier *string
	Notes    *string
	Items    []CreateItemParams
}

// CreateItemParams is a requested line on a new order.
type CreateItemParams struct {
	PartID   int64
	Quantity int
}

// UpdateParams mutates the order's free-form fields. RecomputeTotal
// re-derives TotalAmount from the current line items.
type UpdateParams struct {
	ActorID        int64
	ID             int64
	Supplier       *string
	Notes          *string
	TotalAmount    *decimal.Decimal
	RecomputeTotal bool
}

// StatusParams requests a status transition.
type StatusParams struct {
	ActorID int64
	ID      int64
	Status  enums.OrderStatus
}

// AddItemParams appends a line to an existing order.
type AddItemParams struct {
	ActorID  int64
	OrderID  int64
	PartID   int64
	Quantity int
}

// ListParams configures filtering and pagination for the order list.
type ListParams struct {
	Status    string
	CreatedBy int64
	Limit     int
	Cursor    string
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []OrderDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// NewService wires purchase order dependencies. The notifier is optional.
func NewService(repo Repository, sequences Sequences, catalog Catalog, recorder activity.Recorder, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if sequences == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sequences required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "parts catalog required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	return &service{
		repo:      repo,
		sequences: sequences,
		catalog:   catalog,
		recorder:  recorder,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*OrderDTO, error) {
	if params.ActorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator required")
	}
	for _, item := range params.Items {
		if item.PartID <= 0 || item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order lines need a part id and positive quantity")
		}
	}

	now := s.now()
	seq, err := s.sequences.Next(ctx, fmt.Sprintf("orders:%d", now.Year()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := &models.Order{
		OrderNumber: FormatOrderNumber(now.Year(), seq),
		Status:      enums.OrderStatusPending,
		CreatedDate: now,
		CreatedBy:   params.ActorID,
		Supplier:    params.Supplier,
		Notes:       params.Notes,
	}

	total := decimal.Zero
	for _, item := range params.Items {
		part, err := s.catalog.FindByID(ctx, item.PartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("part %d not found", item.PartID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order line part")
		}
		line := models.OrderItem{
			PartID:   part.ID,
			Quantity: item.Quantity,
			Price:    part.Price,
		}
		order.Items = append(order.Items, line)
		total = total.Add(line.LineTotal())
	}
	if len(order.Items) > 0 {
		order.TotalAmount = &total
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already allocated")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "order.create",
		Description: fmt.Sprintf("opened purchase order %s", order.OrderNumber),
		RelatedID:   &order.ID,
		RelatedType: relatedOrder(),
	})
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		if _, err := enums.ParseOrderStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}

	query := listOrdersParams{
		Status:    params.Status,
		CreatedBy: params.CreatedBy,
		Limit:     params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*OrderDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	changes := map[string]any{}
	if params.Supplier != nil {
		changes["supplier"] = *params.Supplier
	}
	if params.Notes != nil {
		changes["notes"] = *params.Notes
	}
	if params.TotalAmount != nil {
		if params.TotalAmount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be non-negative")
		}
		changes["total_amount"] = *params.TotalAmount
	}
	if params.RecomputeTotal {
		items, err := s.repo.ListItems(ctx, params.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}
		total := decimal.Zero
		for i := range items {
			total = total.Add(items[i].LineTotal())
		}
		changes["total_amount"] = total
	}
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order, err := s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "order.update",
		Description: fmt.Sprintf("updated purchase order %s", order.OrderNumber),
		RelatedID:   &order.ID,
		RelatedType: relatedOrder(),
	})
	return FromModel(order), nil
}

func (s *service) UpdateStatus(ctx context.Context, params StatusParams) (*OrderDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if order.Status == params.Status {
		return FromModel(order), nil
	}
	if !CanTransition(order.Status, params.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeState,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, params.Status))
	}

	affected, err := s.repo.Update(ctx, params.ID, transitionChanges(order, params.Status, s.now()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order, err = s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "order.status",
		Description: fmt.Sprintf("moved purchase order %s to %s", order.OrderNumber, order.Status),
		RelatedID:   &order.ID,
		RelatedType: relatedOrder(),
	})
	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(ctx, order)
	}
	return FromModel(order), nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "order.delete",
		Description: fmt.Sprintf("deleted purchase order %d", id),
		RelatedID:   &id,
		RelatedType: relatedOrder(),
	})
	return nil
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) (*OrderItemDTO, error) {
	if params.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if params.PartID <= 0 || params.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order lines need a part id and positive quantity")
	}

	order, err := s.load(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}
	// Lines are frozen once the order has been placed.
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeState, "order lines can only change before the order is placed")
	}

	part, err := s.catalog.FindByID(ctx, params.PartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "part not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order line part")
	}

	item := &models.OrderItem{
		OrderID:  params.OrderID,
		PartID:   part.ID,
		Quantity: params.Quantity,
		Price:    part.Price,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add order line")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "order.item_add",
		Description: fmt.Sprintf("added part %d x%d to purchase order %s", part.ID, params.Quantity, order.OrderNumber),
		RelatedID:   &order.ID,
		RelatedType: relatedOrder(),
	})
	return itemFromModel(item), nil
}

func (s *service) ListItems(ctx context.Context, orderID int64) ([]OrderItemDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order lines")
	}
	return itemsFromModels(rows), nil
}

func (s *service) RemoveItem(ctx context.Context, actorID, orderID, itemID int64) error {
	if orderID <= 0 || itemID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and item id required")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusApproved {
		return pkgerrors.New(pkgerrors.CodeState, "order lines can only change before the order is placed")
	}

	affected, err := s.repo.DeleteItem(ctx, orderID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove order line")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "order.item_remove",
		Description: fmt.Sprintf("removed line %d from purchase order %s", itemID, order.OrderNumber),
		RelatedID:   &order.ID,
		RelatedType: relatedOrder(),
	})
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func relatedOrder() *string {
	t := "order"
	return &t
}
