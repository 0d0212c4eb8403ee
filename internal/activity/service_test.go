package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	paginationpkg "github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.ActivityLog) error
	listFn   func(ctx context.Context, params listLogsParams) ([]models.ActivityLog, *paginationpkg.Cursor, error)
	recentFn func(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listLogsParams) ([]models.ActivityLog, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if f.recentFn != nil {
		return f.recentFn(ctx, limit)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestRecorder_RecordSwallowsRepoError(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.ActivityLog) error {
			return errors.New("db down")
		},
	}
	rec, err := NewRecorder(repo, testLogger())
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	rec.Record(context.Background(), Entry{UserID: 1, Action: "vehicle.create"})
}

func TestRecorder_RecordStampsTimestamp(t *testing.T) {
	var captured *models.ActivityLog
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.ActivityLog) error {
			captured = entry
			return nil
		},
	}
	rec, _ := NewRecorder(repo, testLogger())
	before := time.Now().UTC()
	rec.Record(context.Background(), Entry{UserID: 7, Action: "part.restock", Description: "added 5"})
	if captured == nil {
		t.Fatal("expected a persisted entry")
	}
	if captured.Timestamp.Before(before) {
		t.Fatalf("timestamp %v predates call", captured.Timestamp)
	}
	if captured.UserID != 7 || captured.Action != "part.restock" {
		t.Fatalf("unexpected entry %+v", captured)
	}
}

func TestRecorder_DropsEntryWithoutActor(t *testing.T) {
	called := false
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.ActivityLog) error {
			called = true
			return nil
		},
	}
	rec, _ := NewRecorder(repo, testLogger())
	rec.Record(context.Background(), Entry{Action: "orphan"})
	if called {
		t.Fatal("expected entry without actor to be dropped")
	}
}

func TestService_ListWithCursor(t *testing.T) {
	newest := models.ActivityLog{ID: 2, Timestamp: time.Now()}
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listLogsParams) ([]models.ActivityLog, *paginationpkg.Cursor, error) {
			return []models.ActivityLog{newest}, &paginationpkg.Cursor{CreatedAt: newest.Timestamp, ID: newest.ID}, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	result, err := svc.List(context.Background(), ListParams{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
}

func TestService_ListInvalidCursor(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_RecentClampsLimit(t *testing.T) {
	var got int
	repo := &fakeRepository{
		recentFn: func(ctx context.Context, limit int) ([]models.ActivityLog, error) {
			got = limit
			return nil, nil
		},
	}
	svc, _ := NewService(repo)

	if _, err := svc.Recent(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != defaultRecentLimit {
		t.Fatalf("expected default limit %d, got %d", defaultRecentLimit, got)
	}

	if _, err := svc.Recent(context.Background(), 10_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != maxRecentLimit {
		t.Fatalf("expected clamped limit %d, got %d", maxRecentLimit, got)
	}
}
