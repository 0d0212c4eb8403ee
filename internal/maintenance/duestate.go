package maintenance

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// DueStateValue classifies a task against the clock.
type DueStateValue string

const (
	DueStateOverdue  DueStateValue = "overdue"
	DueStateUpcoming DueStateValue = "upcoming"
	DueStateNone     DueStateValue = "none"
)

// DueState classifies a maintenance task relative to now. Completed tasks
// are never overdue, regardless of their due date.
func DueState(m *models.Maintenance, now time.Time) DueStateValue {
	if m == nil {
		return DueStateNone
	}
	switch m.Status {
	case enums.MaintenanceStatusCompleted:
		return DueStateNone
	case enums.MaintenanceStatusPending, enums.MaintenanceStatusOverdue:
		if now.After(m.DueDate) {
			return DueStateOverdue
		}
	}
	if m.Status == enums.MaintenanceStatusPending && !now.After(m.DueDate) {
		return DueStateUpcoming
	}
	return DueStateNone
}
