package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleetyard/fleetyard-backend/api/middleware"
	"github.com/fleetyard/fleetyard-backend/api/responses"
	"github.com/fleetyard/fleetyard-backend/api/validators"
	"github.com/fleetyard/fleetyard-backend/internal/maintenance"
	"github.com/fleetyard/fleetyard-backend/internal/vehicles"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
)

type createVehicleRequest struct {
	Name                   string     `json:"name" validate:"required"`
	Type                   string     `json:"type" validate:"required"`
	VIN                    string     `json:"vin" validate:"required,min=11,max=17"`
	LicensePlate           *string    `json:"license_plate"`
	Make                   string     `json:"make" validate:"required"`
	Model                  string     `json:"model" validate:"required"`
	Year                   int        `json:"year" validate:"required,gte=1950"`
	Mileage                int64      `json:"mileage" validate:"gte=0"`
	AssignedTo             *int64     `json:"assigned_to"`
	Status                 string     `json:"status" validate:"omitempty,oneof=active maintenance out_of_service"`
	NextMaintenanceDate    *time.Time `json:"next_maintenance_date"`
	NextMaintenanceMileage *int64     `json:"next_maintenance_mileage"`
	QRCode                 string     `json:"qr_code"`
}

type updateVehicleRequest struct {
	Name                   *string    `json:"name"`
	Type                   *string    `json:"type"`
	LicensePlate           *string    `json:"license_plate"`
	Make                   *string    `json:"make"`
	Model                  *string    `json:"model"`
	Year                   *int       `json:"year" validate:"omitempty,gte=1950"`
	Mileage                *int64     `json:"mileage" validate:"omitempty,gte=0"`
	AssignedTo             *int64     `json:"assigned_to"`
	UnassignDriver         bool       `json:"unassign_driver"`
	Status                 *string    `json:"status" validate:"omitempty,oneof=active maintenance out_of_service"`
	NextMaintenanceDate    *time.Time `json:"next_maintenance_date"`
	NextMaintenanceMileage *int64     `json:"next_maintenance_mileage"`
}

type attachPartRequest struct {
	PartID              int64      `json:"part_id" validate:"required,gt=0"`
	IsCustom            bool       `json:"is_custom"`
	MaintenanceInterval int64      `json:"maintenance_interval" validate:"gte=0"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
}

type updateBindingRequest struct {
	MaintenanceInterval    *int64     `json:"maintenance_interval" validate:"omitempty,gte=0"`
	LastMaintenanceDate    *time.Time `json:"last_maintenance_date"`
	LastMaintenanceMileage *int64     `json:"last_maintenance_mileage"`
	NextMaintenanceDate    *time.Time `json:"next_maintenance_date"`
	NextMaintenanceMileage *int64     `json:"next_maintenance_mileage"`
}

func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), vehicles.CreateParams{
			ActorID:                middleware.UserIDFromContext(r.Context()),
			Name:                   body.Name,
			Type:                   body.Type,
			VIN:                    body.VIN,
			LicensePlate:           body.LicensePlate,
			Make:                   body.Make,
			Model:                  body.Model,
			Year:                   body.Year,
			Mileage:                body.Mileage,
			AssignedTo:             body.AssignedTo,
			Status:                 enums.VehicleStatus(body.Status),
			NextMaintenanceDate:    body.NextMaintenanceDate,
			NextMaintenanceMileage: body.NextMaintenanceMileage,
			QRCode:                 body.QRCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.List(r.Context(), vehicles.ListParams{
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			Type:       strings.TrimSpace(r.URL.Query().Get("type")),
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

func VehicleDetail(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "vehicleId")
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

// VehicleByQRCode resolves the vehicle printed on a scanned label.
func VehicleByQRCode(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qr code required"))
			return
		}

		dto, err := svc.GetByQRCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := vehicles.UpdateParams{
			ActorID:                middleware.UserIDFromContext(r.Context()),
			ID:                     id,
			Name:                   body.Name,
			Type:                   body.Type,
			LicensePlate:           body.LicensePlate,
			Make:                   body.Make,
			Model:                  body.Model,
			Year:                   body.Year,
			Mileage:                body.Mileage,
			NextMaintenanceDate:    body.NextMaintenanceDate,
			NextMaintenanceMileage: body.NextMaintenanceMileage,
		}
		if body.Status != nil {
			status := enums.VehicleStatus(*body.Status)
			params.Status = &status
		}
		switch {
		case body.UnassignDriver:
			var cleared *int64
			params.AssignedTo = &cleared
		case body.AssignedTo != nil:
			assignee := body.AssignedTo
			params.AssignedTo = &assignee
		}

		dto, err := svc.Update(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func VehicleDelete(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "vehicleId")
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

// VehicleMaintenance lists the vehicle's maintenance history ordered by
// due date.
func VehicleMaintenance(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance service unavailable"))
			return
		}

		id, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByVehicle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func VehicleAttachPart(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body attachPartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AttachPart(r.Context(), vehicles.AttachPartParams{
			ActorID:             middleware.UserIDFromContext(r.Context()),
			VehicleID:           id,
			PartID:              body.PartID,
			IsCustom:            body.IsCustom,
			MaintenanceInterval: body.MaintenanceInterval,
			NextMaintenanceDate: body.NextMaintenanceDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func VehicleListParts(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListParts(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func VehicleUpdateBinding(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bindingID, err := validators.PathID(r, "bindingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateBindingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdatePartBinding(r.Context(), vehicles.UpdateBindingParams{
			ActorID:                middleware.UserIDFromContext(r.Context()),
			VehicleID:              vehicleID,
			BindingID:              bindingID,
			MaintenanceInterval:    body.MaintenanceInterval,
			LastMaintenanceDate:    body.LastMaintenanceDate,
			LastMaintenanceMileage: body.LastMaintenanceMileage,
			NextMaintenanceDate:    body.NextMaintenanceDate,
			NextMaintenanceMileage: body.NextMaintenanceMileage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func VehicleDetachPart(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.PathID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bindingID, err := validators.PathID(r, "bindingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DetachPart(r.Context(), middleware.UserIDFromContext(r.Context()), vehicleID, bindingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
