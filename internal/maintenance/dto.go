package maintenance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// MaintenanceDTO is the transport shape for a maintenance task. DueState
// is computed at serialization time and never stored.
type MaintenanceDTO struct {
	ID             int64                     `json:"id"`
	VehicleID      int64                     `json:"vehicle_id"`
	Type           string                    `json:"type"`
	Description    *string                   `json:"description,omitempty"`
	DueDate        time.Time                 `json:"due_date"`
	Status         enums.MaintenanceStatus   `json:"status"`
	Priority       enums.MaintenancePriority `json:"priority"`
	AssignedTo     *int64                    `json:"assigned_to,omitempty"`
	CompletedDate  *time.Time                `json:"completed_date,omitempty"`
	Notes          *string                   `json:"notes,omitempty"`
	PartsUsed      types.PartsUsedList       `json:"parts_used"`
	Cost           *decimal.Decimal          `json:"cost,omitempty"`
	Bill           *string                   `json:"bill,omitempty"`
	BillImageURL   *string                   `json:"bill_image_url,omitempty"`
	IsUnscheduled  bool                      `json:"is_unscheduled"`
	ApprovalStatus *enums.ApprovalStatus     `json:"approval_status,omitempty"`
	ApprovedBy     *int64                    `json:"approved_by,omitempty"`
	DueState       DueStateValue             `json:"due_state"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// CreateMaintenanceDTO holds the data required by the repo to persist a
// task. Status, CompletedDate and approval fields are set by the service,
// never taken from the caller.
type CreateMaintenanceDTO struct {
	VehicleID      int64
	Type           string
	Description    *string
	DueDate        time.Time
	Priority       enums.MaintenancePriority
	AssignedTo     *int64
	Notes          *string
	IsUnscheduled  bool
	ApprovalStatus *enums.ApprovalStatus
}

// UpdateMaintenanceDTO carries the explicit set of mutable fields.
type UpdateMaintenanceDTO struct {
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

func FromModel(m *models.Maintenance, now time.Time) *MaintenanceDTO {
	if m == nil {
		return nil
	}
	partsUsed := m.PartsUsed
	if partsUsed == nil {
		partsUsed = types.PartsUsedList{}
	}
	return &MaintenanceDTO{
		ID:             m.ID,
		VehicleID:      m.VehicleID,
		Type:           m.Type,
		Description:    m.Description,
		DueDate:        m.DueDate,
		Status:         m.Status,
		Priority:       m.Priority,
		AssignedTo:     m.AssignedTo,
		CompletedDate:  m.CompletedDate,
		Notes:          m.Notes,
		PartsUsed:      partsUsed,
		Cost:           m.Cost,
		Bill:           m.Bill,
		BillImageURL:   m.BillImageURL,
		IsUnscheduled:  m.IsUnscheduled,
		ApprovalStatus: m.ApprovalStatus,
		ApprovedBy:     m.ApprovedBy,
		DueState:       DueState(m, now),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromModels(rows []models.Maintenance, now time.Time) []MaintenanceDTO {
	out := make([]MaintenanceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], now))
	}
	return out
}

func (c CreateMaintenanceDTO) ToModel() *models.Maintenance {
	priority := c.Priority
	if priority == "" {
		priority = enums.MaintenancePriorityNormal
	}
	return &models.Maintenance{
		VehicleID:      c.VehicleID,
		Type:           c.Type,
		Description:    c.Description,
		DueDate:        c.DueDate,
		Status:         enums.MaintenanceStatusPending,
		Priority:       priority,
		AssignedTo:     c.AssignedTo,
		Notes:          c.Notes,
		IsUnscheduled:  c.IsUnscheduled,
		ApprovalStatus: c.ApprovalStatus,
	}
}

func (u UpdateMaintenanceDTO) changes() map[string]any {
	changes := map[string]any{}
	if u.Type != nil {
		changes["type"] = *u.Type
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.DueDate != nil {
		changes["due_date"] = *u.DueDate
	}
	if u.Status != nil {
		changes["status"] = *u.Status
	}
	if u.Priority != nil {
		changes["priority"] = *u.Priority
	}
	if u.AssignedTo != nil {
		changes["assigned_to"] = *u.AssignedTo
	}
	if u.Notes != nil {
		changes["notes"] = *u.Notes
	}
	if u.Cost != nil {
		changes["cost"] = *u.Cost
	}
	if u.Bill != nil {
		changes["bill"] = *u.Bill
	}
	if u.BillImageURL != nil {
		changes["bill_image_url"] = *u.BillImageURL
	}
	return changes
}
