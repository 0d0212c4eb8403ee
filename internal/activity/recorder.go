package activity

import (
	"context"
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
)

// Entry is a single audit event captured as a side effect of a mutation.
type Entry struct {
	UserID      int64
	Action      string
	Description string
	RelatedID   *int64
	RelatedType *string
}

// Recorder appends audit entries. A failed append must never fail the
// mutation that produced it, so Record logs and swallows repo errors.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewRecorder wires the activity recorder dependencies.
func NewRecorder(repo Repository, logg *logger.Logger) (Recorder, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &recorder{repo: repo, logg: logg, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	if entry.UserID == 0 || entry.Action == "" {
		r.logg.Warn(r.logg.WithField(ctx, "action", entry.Action), "activity entry missing actor or action, dropped")
		return
	}

	row := &models.ActivityLog{
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		Timestamp:   r.now(),
		RelatedID:   entry.RelatedID,
		RelatedType: entry.RelatedType,
	}
	if err := r.repo.Create(ctx, row); err != nil {
		r.logg.Error(r.logg.WithField(ctx, "action", entry.Action), "record activity entry", err)
	}
}
