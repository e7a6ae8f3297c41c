package controllers

import (
	"net/http"

	"github.com/giglane/giglane-backend/api/middleware"
	"github.com/giglane/giglane-backend/api/responses"
	"github.com/giglane/giglane-backend/api/validators"
	disputesvc "github.com/giglane/giglane-backend/internal/disputes"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
)

// DisputeRaise opens (or re-opens) a dispute on an order.
func DisputeRaise(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload raiseDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := disputesvc.RaiseInput{
			OrderID: orderID,
			ActorID: middleware.UserIDFromContext(r.Context()),
			Reason:  payload.Reason,
			Message: payload.Message,
		}

		resolution, err := svc.Raise(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newResolutionResponse(resolution))
	}
}

// DisputeRespond settles an open dispute. Accepting cancels the order;
// rejecting returns it to the active flow.
func DisputeRespond(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload respondDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := disputesvc.RespondInput{
			OrderID:  orderID,
			ActorID:  middleware.UserIDFromContext(r.Context()),
			IsAdmin:  middleware.RoleFromContext(r.Context()) == enums.UserRoleAdmin.String(),
			Accept:   payload.Accept,
			Response: payload.Response,
		}

		if err := svc.Respond(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "responded"})
	}
}

type raiseDisputeRequest struct {
	Reason  string `json:"reason" validate:"required"`
	Message string `json:"message" validate:"required,max=500"`
}

// Response is optional: a peer accepting a dispute does not have to
// attach a note.
type respondDisputeRequest struct {
	Accept   bool   `json:"accept"`
	Response string `json:"response" validate:"max=500"`
}
