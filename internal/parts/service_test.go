package parts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	paginationpkg "github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn     func(ctx context.Context, dto CreatePartDTO) (*models.Part, error)
	findByIDFn   func(ctx context.Context, id int64) (*models.Part, error)
	countBySKUFn func(ctx context.Context, sku string) (int64, error)
	incrementFn  func(ctx context.Context, id int64, delta int, restockedAt *time.Time) (int64, error)
	updateFn     func(ctx context.Context, id int64, changes map[string]any) (int64, error)
	deleteFn     func(ctx context.Context, id int64) (int64, error)
	lowStockFn   func(ctx context.Context) ([]models.Part, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, dto CreatePartDTO) (*models.Part, error) {
	if f.createFn != nil {
		return f.createFn(ctx, dto)
	}
	part := dto.ToModel()
	part.ID = 1
	return part, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*models.Part, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindBySKU(ctx context.Context, sku string) (*models.Part, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params listPartsParams) ([]models.Part, *paginationpkg.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeRepository) ListLowStock(ctx context.Context) ([]models.Part, error) {
	if f.lowStockFn != nil {
		return f.lowStockFn(ctx)
	}
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

func (f *fakeRepository) CountBySKU(ctx context.Context, sku string) (int64, error) {
	if f.countBySKUFn != nil {
		return f.countBySKUFn(ctx, sku)
	}
	return 0, nil
}

func (f *fakeRepository) IncrementQuantity(ctx context.Context, id int64, delta int, restockedAt *time.Time) (int64, error) {
	if f.incrementFn != nil {
		return f.incrementFn(ctx, id, delta, restockedAt)
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
	parts []*models.Part
}

func (f *fakeNotifier) NotifyLowStock(ctx context.Context, part *models.Part) {
	f.parts = append(f.parts, part)
}

func newServiceWithRepo(repo Repository, notifier LowStockNotifier) Service {
	svc, _ := NewService(repo, &fakeRecorder{}, notifier)
	return svc
}

func TestService_CreateSKUConflict(t *testing.T) {
	repo := &fakeRepository{
		countBySKUFn: func(ctx context.Context, sku string) (int64, error) {
			return 1, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	_, err := svc.Create(context.Background(), CreateParams{Name: "x", SKU: "DUP-01"})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_CreateBelowMinimumNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newServiceWithRepo(&fakeRepository{}, notifier)

	dto, err := svc.Create(context.Background(), CreateParams{
		Name: "Brake pad", SKU: "BRK-01", Quantity: 1, MinimumStock: 4,
		Price: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if !dto.LowStock {
		t.Fatal("expected low_stock true on dto")
	}
	if len(notifier.parts) != 1 {
		t.Fatalf("expected one low-stock notification, got %d", len(notifier.parts))
	}
}

func TestService_CreateHealthyStockDoesNotNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newServiceWithRepo(&fakeRepository{}, notifier)

	_, err := svc.Create(context.Background(), CreateParams{
		Name: "Brake pad", SKU: "BRK-02", Quantity: 10, MinimumStock: 4,
		Price: decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if len(notifier.parts) != 0 {
		t.Fatalf("expected no notification, got %d", len(notifier.parts))
	}
}

func TestService_RestockRejectsNonPositive(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	_, err := svc.Restock(context.Background(), RestockParams{ID: 1, Quantity: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_RestockMissingPart(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	_, err := svc.Restock(context.Background(), RestockParams{ID: 99, Quantity: 5})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteMissing(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	err := svc.Delete(context.Background(), 1, 99)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
