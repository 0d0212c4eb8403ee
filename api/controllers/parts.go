package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/api/middleware"
	"github.com/fleetyard/fleetyard-backend/api/responses"
	"github.com/fleetyard/fleetyard-backend/api/validators"
	"github.com/fleetyard/fleetyard-backend/internal/parts"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

type createPartRequest struct {
	Name               string           `json:"name" validate:"required"`
	SKU                string           `json:"sku" validate:"required"`
	Description        *string          `json:"description"`
	Category           string           `json:"category" validate:"required"`
	Quantity           int              `json:"quantity" validate:"gte=0"`
	MinimumStock       int              `json:"minimum_stock" validate:"gte=0"`
	Price              decimal.Decimal  `json:"price"`
	Supplier           *string          `json:"supplier"`
	Location           *string          `json:"location"`
	CompatibleVehicles types.StringList `json:"compatible_vehicles"`
	IsStandard         *bool            `json:"is_standard"`
}

type updatePartRequest struct {
	Name               *string           `json:"name"`
	Description        *string           `json:"description"`
	Category           *string           `json:"category"`
	Quantity           *int              `json:"quantity" validate:"omitempty,gte=0"`
	MinimumStock       *int              `json:"minimum_stock" validate:"omitempty,gte=0"`
	Price              *decimal.Decimal  `json:"price"`
	Supplier           *string           `json:"supplier"`
	Location           *string           `json:"location"`
	CompatibleVehicles *types.StringList `json:"compatible_vehicles"`
	IsStandard         *bool             `json:"is_standard"`
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func PartCreate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), parts.CreateParams{
			ActorID:            middleware.UserIDFromContext(r.Context()),
			Name:               body.Name,
			SKU:                body.SKU,
			Description:        body.Description,
			Category:           body.Category,
			Quantity:           body.Quantity,
			MinimumStock:       body.MinimumStock,
			Price:              body.Price,
			Supplier:           body.Supplier,
			Location:           body.Location,
			CompatibleVehicles: body.CompatibleVehicles,
			IsStandard:         body.IsStandard,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func PartList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), parts.ListParams{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Supplier: strings.TrimSpace(r.URL.Query().Get("supplier")),
			Limit:    limit,
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PartLowStock returns every part below its minimum stock threshold.
func PartLowStock(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func PartDetail(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "partId")
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

func PartUpdate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "partId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), parts.UpdateParams{
			ActorID:            middleware.UserIDFromContext(r.Context()),
			ID:                 id,
			Name:               body.Name,
			Description:        body.Description,
			Category:           body.Category,
			Quantity:           body.Quantity,
			MinimumStock:       body.MinimumStock,
			Price:              body.Price,
			Supplier:           body.Supplier,
			Location:           body.Location,
			CompatibleVehicles: body.CompatibleVehicles,
			IsStandard:         body.IsStandard,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func PartDelete(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "partId")
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

func PartRestock(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "partId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Restock(r.Context(), parts.RestockParams{
			ActorID:  middleware.UserIDFromContext(r.Context()),
			ID:       id,
			Quantity: body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
