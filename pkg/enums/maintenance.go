package enums

import "fmt"

// MaintenanceStatus describes the allowed values for the maintenance.status column.
type MaintenanceStatus string

const (
	MaintenanceStatusPending   MaintenanceStatus = "pending"
	MaintenanceStatusScheduled MaintenanceStatus = "scheduled"
	MaintenanceStatusOverdue   MaintenanceStatus = "overdue"
	MaintenanceStatusCompleted MaintenanceStatus = "completed"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusPending,
	MaintenanceStatusScheduled,
	MaintenanceStatusOverdue,
	MaintenanceStatusCompleted,
}

func (s MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts the raw string to MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}

// MaintenancePriority ranks how urgently a task should be handled.
type MaintenancePriority string

const (
	MaintenancePriorityLow      MaintenancePriority = "low"
	MaintenancePriorityNormal   MaintenancePriority = "normal"
	MaintenancePriorityHigh     MaintenancePriority = "high"
	MaintenancePriorityCritical MaintenancePriority = "critical"
)

var validMaintenancePriorities = []MaintenancePriority{
	MaintenancePriorityLow,
	MaintenancePriorityNormal,
	MaintenancePriorityHigh,
	MaintenancePriorityCritical,
}

func (p MaintenancePriority) IsValid() bool {
	for _, candidate := range validMaintenancePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseMaintenancePriority converts the raw string to MaintenancePriority.
func ParseMaintenancePriority(value string) (MaintenancePriority, error) {
	for _, candidate := range validMaintenancePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance priority %q", value)
}

// ApprovalStatus tracks the review state of an unscheduled maintenance task.
// It is meaningful only when the task is flagged unscheduled.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}
