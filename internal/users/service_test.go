package users

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	paginationpkg "github.com/fleetyard/fleetyard-backend/pkg/pagination"
	"github.com/fleetyard/fleetyard-backend/pkg/security"
)

type fakeRepository struct {
	createFn          func(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	findByIDFn        func(ctx context.Context, id int64) (*models.User, error)
	findByUsernameFn  func(ctx context.Context, username string) (*models.User, error)
	listFn            func(ctx context.Context, params listUsersParams) ([]models.User, *paginationpkg.Cursor, error)
	updateFn          func(ctx context.Context, id int64, changes map[string]any) (int64, error)
	deleteFn          func(ctx context.Context, id int64) (int64, error)
	countByUsernameFn func(ctx context.Context, username string) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, dto)
	}
	user := dto.ToModel()
	user.ID = 1
	return user, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.findByUsernameFn != nil {
		return f.findByUsernameFn(ctx, username)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params listUsersParams) ([]models.User, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
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

func (f *fakeRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	if f.countByUsernameFn != nil {
		return f.countByUsernameFn(ctx, username)
	}
	return 0, nil
}

func (f *fakeRepository) ListIDsByRole(ctx context.Context, role string) ([]int64, error) {
	return nil, nil
}

type fakeRecorder struct {
	entries []activity.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry activity.Entry) {
	f.entries = append(f.entries, entry)
}

func newServiceWithRepo(repo Repository, recorder activity.Recorder) Service {
	svc, _ := NewService(repo, recorder, config.PasswordConfig{})
	return svc
}

func TestService_CreateHashesPassword(t *testing.T) {
	var persisted CreateUserDTO
	repo := &fakeRepository{
		createFn: func(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
			persisted = dto
			user := dto.ToModel()
			user.ID = 42
			return user, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newServiceWithRepo(repo, rec)

	dto, err := svc.Create(context.Background(), CreateParams{
		Username: "jortega",
		Password: "correct horse battery",
		Name:     "J. Ortega",
		Role:     enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if !strings.HasPrefix(persisted.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", persisted.PasswordHash)
	}
	ok, err := security.VerifyPassword("correct horse battery", persisted.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
	if dto.ID != 42 {
		t.Fatalf("expected id 42, got %d", dto.ID)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != "user.create" {
		t.Fatalf("expected user.create activity entry, got %+v", rec.entries)
	}
}

func TestService_CreateRejectsShortPassword(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, &fakeRecorder{})
	_, err := svc.Create(context.Background(), CreateParams{Username: "x", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateUsernameConflict(t *testing.T) {
	repo := &fakeRepository{
		countByUsernameFn: func(ctx context.Context, username string) (int64, error) {
			return 1, nil
		},
	}
	svc := newServiceWithRepo(repo, &fakeRecorder{})
	_, err := svc.Create(context.Background(), CreateParams{Username: "taken", Password: "long enough"})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_GetNotFound(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, &fakeRecorder{})
	_, err := svc.Get(context.Background(), 99)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_UpdateNoFields(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, &fakeRecorder{})
	_, err := svc.Update(context.Background(), UpdateParams{ID: 1})
	if err == nil {
		t.Fatal("expected validation error for empty update")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdateMissingUser(t *testing.T) {
	repo := &fakeRepository{
		updateFn: func(ctx context.Context, id int64, changes map[string]any) (int64, error) {
			return 0, nil
		},
	}
	svc := newServiceWithRepo(repo, &fakeRecorder{})
	name := "New Name"
	_, err := svc.Update(context.Background(), UpdateParams{ID: 5, Name: &name})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteMissingUser(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, &fakeRecorder{})
	err := svc.Delete(context.Background(), 1, 99)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteRecordsActivity(t *testing.T) {
	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, id int64) (int64, error) {
			return 1, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newServiceWithRepo(repo, rec)
	if err := svc.Delete(context.Background(), 7, 3); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if len(rec.entries) != 1 || rec.entries[0].UserID != 7 {
		t.Fatalf("expected actor 7 on delete entry, got %+v", rec.entries)
	}
}
