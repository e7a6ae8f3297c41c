package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/api/middleware"
	"github.com/giglane/giglane-backend/api/responses"
	"github.com/giglane/giglane-backend/api/validators"
	coworkersvc "github.com/giglane/giglane-backend/internal/coworkers"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
)

// CoworkerInvite invites a secondary seller into an order.
func CoworkerInvite(svc coworkersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coworkers service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inviteCoworkerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priceType, err := enums.ParseCoworkerPriceType(payload.PriceType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price type"))
			return
		}

		input := coworkersvc.InviteInput{
			OrderID:   orderID,
			ActorID:   middleware.UserIDFromContext(r.Context()),
			SellerID:  payload.SellerID,
			PriceType: priceType,
			Rate:      payload.Rate,
			MaxHours:  payload.MaxHours,
		}

		coworker, err := svc.Invite(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderCoworkerResponse(coworker))
	}
}

// CoworkerRespond records the invited seller's accept/reject decision.
func CoworkerRespond(svc coworkersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coworkers service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload respondCoworkerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coworkersvc.RespondInput{
			OrderID:  orderID,
			SellerID: middleware.UserIDFromContext(r.Context()),
			Accept:   payload.Accept,
		}

		result, err := svc.Respond(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coworkerRespondResponse{
			Coworker:         newOrderCoworkerResponse(result.Coworker),
			AlreadyResponded: result.AlreadyResponded,
		})
	}
}

type inviteCoworkerRequest struct {
	SellerID  uuid.UUID       `json:"seller_id" validate:"required"`
	PriceType string          `json:"price_type" validate:"required"`
	Rate      decimal.Decimal `json:"rate" validate:"required"`
	MaxHours  *int            `json:"max_hours"`
}

type respondCoworkerRequest struct {
	Accept bool `json:"accept"`
}

type coworkerRespondResponse struct {
	Coworker         orderCoworkerResponse `json:"coworker"`
	AlreadyResponded bool                  `json:"already_responded"`
}
