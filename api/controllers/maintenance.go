package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/api/middleware"
	"github.com/fleetyard/fleetyard-backend/api/responses"
	"github.com/fleetyard/fleetyard-backend/api/validators"
	"github.com/fleetyard/fleetyard-backend/internal/maintenance"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

type createMaintenanceRequest struct {
	VehicleID     int64     `json:"vehicle_id" validate:"required,gt=0"`
	Type          string    `json:"type" validate:"required"`
	Description   *string   `json:"description"`
	DueDate       time.Time `json:"due_date" validate:"required"`
	Priority      string    `json:"priority" validate:"omitempty,oneof=low normal high critical"`
	AssignedTo    *int64    `json:"assigned_to"`
	Notes         *string   `json:"notes"`
	IsUnscheduled bool      `json:"is_unscheduled"`
}

type updateMaintenanceRequest struct {
	Type         *string          `json:"type"`
	Description  *string          `json:"description"`
	DueDate      *time.Time       `json:"due_date"`
	Status       *string          `json:"status" validate:"omitempty,oneof=pending scheduled overdue completed"`
	Priority     *string          `json:"priority" validate:"omitempty,oneof=low normal high critical"`
	AssignedTo   *int64           `json:"assigned_to"`
	Notes        *string          `json:"notes"`
	Cost         *decimal.Decimal `json:"cost"`
	Bill         *string          `json:"bill"`
	BillImageURL *string          `json:"bill_image_url"`
}

type completeMaintenanceRequest struct {
	PartsUsed types.PartsUsedList `json:"parts_used"`
	Cost      *decimal.Decimal    `json:"cost"`
	Notes     *string             `json:"notes"`
}

func MaintenanceCreate(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), maintenance.CreateParams{
			ActorID:       middleware.UserIDFromContext(r.Context()),
			VehicleID:     body.VehicleID,
			Type:          body.Type,
			Description:   body.Description,
			DueDate:       body.DueDate,
			Priority:      enums.MaintenancePriority(body.Priority),
			AssignedTo:    body.AssignedTo,
			Notes:         body.Notes,
			IsUnscheduled: body.IsUnscheduled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func MaintenanceList(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assignedTo, err := validators.ParseQueryInt64(r, "assigned_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), maintenance.ListParams{
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			AssignedTo: assignedTo,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MaintenancePending unions pending and overdue tasks, soonest due first.
func MaintenancePending(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func MaintenanceUnscheduled(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListUnscheduled(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func MaintenancePendingApproval(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPendingApproval(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func MaintenanceDetail(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func MaintenanceUpdate(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := maintenance.UpdateParams{
			ActorID:      middleware.UserIDFromContext(r.Context()),
			ID:           id,
			Type:         body.Type,
			Description:  body.Description,
			DueDate:      body.DueDate,
			AssignedTo:   body.AssignedTo,
			Notes:        body.Notes,
			Cost:         body.Cost,
			Bill:         body.Bill,
			BillImageURL: body.BillImageURL,
		}
		if body.Status != nil {
			status := enums.MaintenanceStatus(*body.Status)
			params.Status = &status
		}
		if body.Priority != nil {
			priority := enums.MaintenancePriority(*body.Priority)
			params.Priority = &priority
		}

		dto, err := svc.Update(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func MaintenanceComplete(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body completeMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Complete(r.Context(), maintenance.CompleteParams{
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ID:        id,
			PartsUsed: body.PartsUsed,
			Cost:      body.Cost,
			Notes:     body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func MaintenanceApprove(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Approve(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func MaintenanceReject(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Reject(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func MaintenanceDelete(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
