package maintenance

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	paginationpkg "github.com/fleetyard/fleetyard-backend/pkg/pagination"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

type fakeRepository struct {
	createFn   func(ctx context.Context, dto CreateMaintenanceDTO) (*models.Maintenance, error)
	findByIDFn func(ctx context.Context, id int64) (*models.Maintenance, error)
	updateFn   func(ctx context.Context, id int64, changes map[string]any) (int64, error)
	deleteFn   func(ctx context.Context, id int64) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, dto CreateMaintenanceDTO) (*models.Maintenance, error) {
	if f.createFn != nil {
		return f.createFn(ctx, dto)
	}
	task := dto.ToModel()
	task.ID = 1
	return task, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*models.Maintenance, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params listTasksParams) ([]models.Maintenance, *paginationpkg.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRepository) ListPending(ctx context.Context) ([]models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRepository) ListUnscheduled(ctx context.Context) ([]models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRepository) ListPendingApproval(ctx context.Context) ([]models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRepository) Update(ctx context.Context, id int64, changes map[string]any) (int64, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, changes)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return 0, nil
}

type fakeRecorder struct {
	entries []activity.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry activity.Entry) {
	f.entries = append(f.entries, entry)
}

type fakeNotifier struct {
	assigned  []*models.Maintenance
	approvals []*models.Maintenance
}

func (f *fakeNotifier) NotifyAssigned(ctx context.Context, task *models.Maintenance) {
	f.assigned = append(f.assigned, task)
}

func (f *fakeNotifier) NotifyApprovalRequested(ctx context.Context, task *models.Maintenance) {
	f.approvals = append(f.approvals, task)
}

func newServiceWithRepo(repo Repository, notifier Notifier) Service {
	svc, _ := NewService(repo, &fakeRecorder{}, notifier)
	return svc
}

func TestService_CreateForcesPendingStatus(t *testing.T) {
	var persisted CreateMaintenanceDTO
	repo := &fakeRepository{
		createFn: func(ctx context.Context, dto CreateMaintenanceDTO) (*models.Maintenance, error) {
			persisted = dto
			task := dto.ToModel()
			task.ID = 3
			return task, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)

	dto, err := svc.Create(context.Background(), CreateParams{
		VehicleID: 2,
		Type:      "oil change",
		DueDate:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if dto.Status != enums.MaintenanceStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.CompletedDate != nil {
		t.Fatal("expected nil completed date at creation")
	}
	if persisted.ApprovalStatus != nil {
		t.Fatal("scheduled task must not enter approval workflow")
	}
}

func TestService_CreateUnscheduledEntersApproval(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newServiceWithRepo(&fakeRepository{}, notifier)

	dto, err := svc.Create(context.Background(), CreateParams{
		VehicleID:     2,
		Type:          "brake failure",
		DueDate:       time.Now(),
		IsUnscheduled: true,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if dto.ApprovalStatus == nil || *dto.ApprovalStatus != enums.ApprovalStatusPending {
		t.Fatalf("expected pending approval, got %v", dto.ApprovalStatus)
	}
	if len(notifier.approvals) != 1 {
		t.Fatalf("expected one approval notification, got %d", len(notifier.approvals))
	}
}

func TestService_CreateNotifiesAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newServiceWithRepo(&fakeRepository{}, notifier)

	driver := int64(5)
	_, err := svc.Create(context.Background(), CreateParams{
		VehicleID:  2,
		Type:       "tire rotation",
		DueDate:    time.Now(),
		AssignedTo: &driver,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if len(notifier.assigned) != 1 {
		t.Fatalf("expected one assignment notification, got %d", len(notifier.assigned))
	}
}

func TestService_CompleteSetsDateAndIsIdempotent(t *testing.T) {
	completedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	state := &models.Maintenance{
		ID:        4,
		VehicleID: 2,
		Type:      "oil change",
		Status:    enums.MaintenanceStatusPending,
		DueDate:   time.Now(),
	}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id int64) (*models.Maintenance, error) {
			copyTask := *state
			return &copyTask, nil
		},
		updateFn: func(ctx context.Context, id int64, changes map[string]any) (int64, error) {
			state.Status = enums.MaintenanceStatusCompleted
			state.CompletedDate = &completedAt
			return 1, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)

	first, err := svc.Complete(context.Background(), CompleteParams{ActorID: 1, ID: 4})
	if err != nil {
		t.Fatalf("unexpected complete error: %v", err)
	}
	if first.Status != enums.MaintenanceStatusCompleted || first.CompletedDate == nil {
		t.Fatalf("expected completed with date, got %+v", first)
	}

	second, err := svc.Complete(context.Background(), CompleteParams{ActorID: 1, ID: 4})
	if err != nil {
		t.Fatalf("unexpected repeat complete error: %v", err)
	}
	if !second.CompletedDate.Equal(completedAt) {
		t.Fatalf("expected original completed date preserved, got %v", second.CompletedDate)
	}
}

func TestService_CompleteRejectsBadPartsUsed(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	_, err := svc.Complete(context.Background(), CompleteParams{
		ID:        4,
		PartsUsed: types.PartsUsedList{{PartID: 0, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_ApproveOnlyPendingUnscheduled(t *testing.T) {
	approved := enums.ApprovalStatusApproved
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id int64) (*models.Maintenance, error) {
			return &models.Maintenance{
				ID:             id,
				IsUnscheduled:  true,
				ApprovalStatus: &approved,
			}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	_, err := svc.Approve(context.Background(), 1, 9)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeState {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_ApproveRejectsScheduledTask(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id int64) (*models.Maintenance, error) {
			return &models.Maintenance{ID: id, IsUnscheduled: false}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	_, err := svc.Approve(context.Background(), 1, 9)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdateCannotComplete(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	completed := enums.MaintenanceStatusCompleted
	_, err := svc.Update(context.Background(), UpdateParams{ID: 1, Status: &completed})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_DeleteMissing(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	err := svc.Delete(context.Background(), 1, 42)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
