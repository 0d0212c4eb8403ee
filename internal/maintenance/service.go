package maintenance

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
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// Notifier pushes maintenance events to interested users. Implementations
// must not fail the triggering mutation.
type Notifier interface {
	NotifyAssigned(ctx context.Context, task *models.Maintenance)
	NotifyApprovalRequested(ctx context.Context, task *models.Maintenance)
}

// Service defines maintenance lifecycle operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*MaintenanceDTO, error)
	Get(ctx context.Context, id int64) (*MaintenanceDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListByVehicle(ctx context.Context, vehicleID int64) ([]MaintenanceDTO, error)
	ListPending(ctx context.Context) ([]MaintenanceDTO, error)
	ListUnscheduled(ctx context.Context) ([]MaintenanceDTO, error)
	ListPendingApproval(ctx context.Context) ([]MaintenanceDTO, error)
	Update(ctx context.Context, params UpdateParams) (*MaintenanceDTO, error)
	Complete(ctx context.Context, params CompleteParams) (*MaintenanceDTO, error)
	Approve(ctx context.Context, actorID, id int64) (*MaintenanceDTO, error)
	Reject(ctx context.Context, actorID, id int64) (*MaintenanceDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type service struct {
	repo     Repository
	recorder activity.Recorder
	notifier Notifier
	now      func() time.Time
}

// CreateParams carries the fields accepted when scheduling a task.
type CreateParams struct {
	ActorID       int64
	VehicleID     int64
	Type          string
	Description   *string
	DueDate       time.Time
	Priority      enums.MaintenancePriority
	AssignedTo    *int64
	Notes         *string
	IsUnscheduled bool
}

// UpdateParams is an explicit partial update for a task.
type UpdateParams struct {
	ActorID      int64
	ID           int64
	Type         *string
	Description  *string
	DueDate      *time.Time
	Status       *enums.MaintenanceStatus
	Priority     *enums.MaintenancePriority
	AssignedTo   *int64
	Notes        *string
	Cost         *decimal.Decimal
	Bill         *string
	BillImageURL *string
}

// CompleteParams closes out a task, optionally recording parts and cost.
// Stock decrements for PartsUsed are the caller's responsibility.
type CompleteParams struct {
	ActorID   int64
	ID        int64
	PartsUsed types.PartsUsedList
	Cost      *decimal.Decimal
	Notes     *string
}

// ListParams configures filtering and pagination for the task list.
type ListParams struct {
	Status     string
	AssignedTo int64
	Limit      int
	Cursor     string
}

// ListResult wraps returned tasks and the cursor for the next page.
type ListResult struct {
	Items  []MaintenanceDTO `json:"items"`
	Cursor string           `json:"cursor"`
}

// NewService wires maintenance lifecycle dependencies. The notifier is
// optional.
func NewService(repo Repository, recorder activity.Recorder, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maintenance repository required")
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

func (s *service) Create(ctx context.Context, params CreateParams) (*MaintenanceDTO, error) {
	if params.VehicleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if params.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maintenance type required")
	}
	if params.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date required")
	}
	if params.Priority != "" && !params.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	dto := CreateMaintenanceDTO{
		VehicleID:     params.VehicleID,
		Type:          params.Type,
		Description:   params.Description,
		DueDate:       params.DueDate,
		Priority:      params.Priority,
		AssignedTo:    params.AssignedTo,
		Notes:         params.Notes,
		IsUnscheduled: params.IsUnscheduled,
	}
	if params.IsUnscheduled {
		pending := enums.ApprovalStatusPending
		dto.ApprovalStatus = &pending
	}

	task, err := s.repo.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create maintenance task")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "maintenance.create",
		Description: fmt.Sprintf("scheduled %s for vehicle %d", task.Type, task.VehicleID),
		RelatedID:   &task.ID,
		RelatedType: relatedMaintenance(),
	})
	if s.notifier != nil {
		if task.AssignedTo != nil {
			s.notifier.NotifyAssigned(ctx, task)
		}
		if task.IsUnscheduled {
			s.notifier.NotifyApprovalRequested(ctx, task)
		}
	}
	return FromModel(task, s.now()), nil
}

func (s *service) Get(ctx context.Context, id int64) (*MaintenanceDTO, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(task, s.now()), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		if _, err := enums.ParseMaintenanceStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}

	query := listTasksParams{
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
		Limit:      params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list maintenance tasks")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows, s.now()), Cursor: cursor}, nil
}

func (s *service) ListByVehicle(ctx context.Context, vehicleID int64) ([]MaintenanceDTO, error) {
	if vehicleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	rows, err := s.repo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle maintenance")
	}
	return FromModels(rows, s.now()), nil
}

func (s *service) ListPending(ctx context.Context) ([]MaintenanceDTO, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending maintenance")
	}
	return FromModels(rows, s.now()), nil
}

func (s *service) ListUnscheduled(ctx context.Context) ([]MaintenanceDTO, error) {
	rows, err := s.repo.ListUnscheduled(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unscheduled maintenance")
	}
	return FromModels(rows, s.now()), nil
}

func (s *service) ListPendingApproval(ctx context.Context) ([]MaintenanceDTO, error) {
	rows, err := s.repo.ListPendingApproval(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending approvals")
	}
	return FromModels(rows, s.now()), nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*MaintenanceDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maintenance id required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	// Completion goes through Complete so the completed date stays coupled
	// to the status flip.
	if params.Status != nil && *params.Status == enums.MaintenanceStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the complete operation to close a task")
	}

	update := UpdateMaintenanceDTO{
		Type:         params.Type,
		Description:  params.Description,
		DueDate:      params.DueDate,
		Status:       params.Status,
		Priority:     params.Priority,
		AssignedTo:   params.AssignedTo,
		Notes:        params.Notes,
		Cost:         params.Cost,
		Bill:         params.Bill,
		BillImageURL: params.BillImageURL,
	}
	changes := update.changes()
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	previous, err := s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update maintenance task")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance task not found")
	}

	task, err := s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "maintenance.update",
		Description: fmt.Sprintf("updated %s for vehicle %d", task.Type, task.VehicleID),
		RelatedID:   &task.ID,
		RelatedType: relatedMaintenance(),
	})
	if s.notifier != nil && params.AssignedTo != nil && !sameAssignee(previous.AssignedTo, task.AssignedTo) {
		s.notifier.NotifyAssigned(ctx, task)
	}
	return FromModel(task, s.now()), nil
}

func (s *service) Complete(ctx context.Context, params CompleteParams) (*MaintenanceDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maintenance id required")
	}
	for _, usage := range params.PartsUsed {
		if usage.PartID <= 0 || usage.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parts used entries need a part id and positive quantity")
		}
	}

	task, err := s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	// Completing an already-completed task keeps the original date.
	if task.Status == enums.MaintenanceStatusCompleted && task.CompletedDate != nil {
		return FromModel(task, s.now()), nil
	}

	now := s.now()
	changes := map[string]any{
		"status":         enums.MaintenanceStatusCompleted,
		"completed_date": now,
	}
	if len(params.PartsUsed) > 0 {
		changes["parts_used"] = params.PartsUsed
	}
	if params.Cost != nil {
		changes["cost"] = *params.Cost
	}
	if params.Notes != nil {
		changes["notes"] = *params.Notes
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete maintenance task")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance task not found")
	}

	task, err = s.load(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "maintenance.complete",
		Description: fmt.Sprintf("completed %s for vehicle %d", task.Type, task.VehicleID),
		RelatedID:   &task.ID,
		RelatedType: relatedMaintenance(),
	})
	return FromModel(task, s.now()), nil
}

func (s *service) Approve(ctx context.Context, actorID, id int64) (*MaintenanceDTO, error) {
	return s.decide(ctx, actorID, id, enums.ApprovalStatusApproved)
}

func (s *service) Reject(ctx context.Context, actorID, id int64) (*MaintenanceDTO, error) {
	return s.decide(ctx, actorID, id, enums.ApprovalStatusRejected)
}

// decide records an approval verdict. It touches only the approval fields;
// the task status is left for the normal lifecycle.
func (s *service) decide(ctx context.Context, actorID, id int64, verdict enums.ApprovalStatus) (*MaintenanceDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maintenance id required")
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsUnscheduled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only unscheduled tasks go through approval")
	}
	if task.ApprovalStatus == nil || *task.ApprovalStatus != enums.ApprovalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeState, "approval already decided")
	}

	affected, err := s.repo.Update(ctx, id, map[string]any{
		"approval_status": verdict,
		"approved_by":     actorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record approval decision")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance task not found")
	}

	task, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "maintenance." + string(verdict),
		Description: fmt.Sprintf("%s unscheduled %s for vehicle %d", verdict, task.Type, task.VehicleID),
		RelatedID:   &task.ID,
		RelatedType: relatedMaintenance(),
	})
	return FromModel(task, s.now()), nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "maintenance id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete maintenance task")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "maintenance task not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "maintenance.delete",
		Description: fmt.Sprintf("deleted maintenance task %d", id),
		RelatedID:   &id,
		RelatedType: relatedMaintenance(),
	})
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Maintenance, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maintenance id required")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenance task")
	}
	return task, nil
}

func sameAssignee(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func relatedMaintenance() *string {
	t := "maintenance"
	return &t
}
