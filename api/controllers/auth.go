package controllers

import (
	"net/http"

	"github.com/fleetyard/fleetyard-backend/api/middleware"
	"github.com/fleetyard/fleetyard-backend/api/responses"
	"github.com/fleetyard/fleetyard-backend/api/validators"
	"github.com/fleetyard/fleetyard-backend/internal/auth"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginParams{
			Username: body.Username,
			Password: body.Password,
			RemoteIP: middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
