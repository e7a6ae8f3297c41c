package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/api/middleware"
	"github.com/giglane/giglane-backend/api/responses"
	"github.com/giglane/giglane-backend/api/validators"
	ordersvc "github.com/giglane/giglane-backend/internal/orders"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
	"github.com/giglane/giglane-backend/pkg/types"
)

// OrderCreate places a new order against a gig package.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID := middleware.UserIDFromContext(r.Context())
		if buyerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderDetailResponse(order))
	}
}

// OrderDeliver appends a seller delivery to an active order.
func OrderDeliver(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deliverOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.DeliverInput{
			OrderID:  orderID,
			SellerID: middleware.UserIDFromContext(r.Context()),
			Message:  payload.Message,
		}
		if payload.File != nil {
			input.File = &ordersvc.FileRef{URL: payload.File.URL, StorageID: payload.File.StorageID}
		}

		if err := svc.Deliver(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "delivered"})
	}
}

// OrderRequestRevision records a buyer revision request on a delivered order.
func OrderRequestRevision(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload revisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.RevisionInput{
			OrderID: orderID,
			BuyerID: middleware.UserIDFromContext(r.Context()),
			Message: payload.Message,
		}

		if err := svc.RequestRevision(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "revision_requested"})
	}
}

// OrderApprove finalizes a delivered order on the buyer's behalf.
func OrderApprove(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.ApproveInput{
			OrderID: orderID,
			BuyerID: middleware.UserIDFromContext(r.Context()),
		}

		if err := svc.Approve(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}

// OrderReview records post-completion feedback from either party.
func OrderReview(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.ReviewInput{
			OrderID: orderID,
			ActorID: middleware.UserIDFromContext(r.Context()),
			Rating:  payload.Rating,
			Comment: payload.Comment,
		}

		if err := svc.SubmitReview(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "review_submitted"})
	}
}

// OrdersBuyerList returns the acting buyer's orders, newest first.
func OrdersBuyerList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listOrders(svc, logg, func(ctx *http.Request, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
		return svc.ListBuyerOrders(ctx.Context(), params)
	})
}

// OrdersSellerList returns the acting seller's orders, newest first.
func OrdersSellerList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listOrders(svc, logg, func(ctx *http.Request, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
		return svc.ListSellerOrders(ctx.Context(), params)
	})
}

func listOrders(svc ordersvc.Service, logg *logger.Logger, list func(*http.Request, ordersvc.ListParams) (*ordersvc.OrderList, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params := ordersvc.ListParams{UserID: middleware.UserIDFromContext(r.Context())}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if statusStr := strings.TrimSpace(r.URL.Query().Get("status")); statusStr != "" {
			status := enums.OrderStatus(statusStr)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		result, err := list(r, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderDetail returns the full aggregate for one order. Access is limited to
// the order participants and admins.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		role := enums.UserRole(middleware.RoleFromContext(r.Context()))

		order, err := svc.Detail(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

// AdminOrderDelete hard-deletes an order and releases its stored files.
func AdminOrderDelete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

type orderFilePayload struct {
	URL       string `json:"url" validate:"required"`
	StorageID string `json:"storage_id" validate:"required"`
}

type customPackagePayload struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	DeliveryDays int             `json:"delivery_days" validate:"required,min=1"`
}

type createOrderRequest struct {
	GigID         uuid.UUID             `json:"gig_id" validate:"required"`
	PackageType   string                `json:"package_type" validate:"required"`
	Requirements  string                `json:"requirements"`
	PaymentMethod string                `json:"payment_method" validate:"required"`
	Files         []orderFilePayload    `json:"files" validate:"dive"`
	Custom        *customPackagePayload `json:"custom"`
}

func (p createOrderRequest) toInput(buyerID uuid.UUID) (ordersvc.CreateInput, error) {
	packageType, err := enums.ParsePackageType(p.PackageType)
	if err != nil {
		return ordersvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package type")
	}
	method, err := enums.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return ordersvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	files := make([]ordersvc.FileRef, len(p.Files))
	for i, file := range p.Files {
		files[i] = ordersvc.FileRef{URL: file.URL, StorageID: file.StorageID}
	}

	input := ordersvc.CreateInput{
		GigID:         p.GigID,
		BuyerID:       buyerID,
		PackageType:   packageType,
		Requirements:  p.Requirements,
		PaymentMethod: method,
		Files:         files,
	}
	if p.Custom != nil {
		input.Custom = &ordersvc.CustomPackage{
			Name:         p.Custom.Name,
			Description:  p.Custom.Description,
			Price:        p.Custom.Price,
			DeliveryDays: p.Custom.DeliveryDays,
		}
	}
	return input, nil
}

type deliverOrderRequest struct {
	Message string            `json:"message" validate:"required"`
	File    *orderFilePayload `json:"file"`
}

type revisionRequest struct {
	Message string `json:"message" validate:"required"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type orderFileResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	StorageID string    `json:"storage_id"`
	Position  int       `json:"position"`
}

type orderDeliveryResponse struct {
	ID             uuid.UUID `json:"id"`
	RevisionNumber int       `json:"revision_number"`
	Message        string    `json:"message"`
	FileURL        *string   `json:"file_url,omitempty"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

type orderRevisionResponse struct {
	ID             uuid.UUID `json:"id"`
	RevisionNumber int       `json:"revision_number"`
	Message        string    `json:"message"`
	RequestedAt    time.Time `json:"requested_at"`
}

type orderCoworkerResponse struct {
	ID          uuid.UUID  `json:"id"`
	SellerID    uuid.UUID  `json:"seller_id"`
	PriceType   string     `json:"price_type"`
	Rate        string     `json:"rate"`
	MaxHours    *int       `json:"max_hours,omitempty"`
	Status      string     `json:"status"`
	InvitedAt   time.Time  `json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type resolutionResponse struct {
	TicketID      string     `json:"ticket_id"`
	Reason        string     `json:"reason"`
	Message       string     `json:"message"`
	RequestedBy   uuid.UUID  `json:"requested_by"`
	RequestedAt   time.Time  `json:"requested_at"`
	Status        string     `json:"status"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

type orderDetailResponse struct {
	ID              uuid.UUID               `json:"id"`
	GigID           uuid.UUID               `json:"gig_id"`
	BuyerID         uuid.UUID               `json:"buyer_id"`
	SellerID        uuid.UUID               `json:"seller_id"`
	PackageType     string                  `json:"package_type"`
	PackageDetails  types.PackageSnapshot   `json:"package_details"`
	Requirements    string                  `json:"requirements"`
	Status          string                  `json:"status"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaymentMethod   string                  `json:"payment_method"`
	IsPaid          bool                    `json:"is_paid"`
	DeliveryDueDate time.Time               `json:"delivery_due_date"`
	DeliveredAt     *time.Time              `json:"delivered_at,omitempty"`
	ApprovedAt      *time.Time              `json:"approved_at,omitempty"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	CancelledAt     *time.Time              `json:"cancelled_at,omitempty"`
	AutoCompletedAt *time.Time              `json:"auto_completed_at,omitempty"`
	SystemNote      *string                 `json:"system_note,omitempty"`
	BuyerReview     *types.Review           `json:"buyer_review,omitempty"`
	SellerReview    *types.Review           `json:"seller_review,omitempty"`
	Files           []orderFileResponse     `json:"files"`
	Deliveries      []orderDeliveryResponse `json:"deliveries"`
	Revisions       []orderRevisionResponse `json:"revisions"`
	Coworkers       []orderCoworkerResponse `json:"coworkers"`
	Resolution      *resolutionResponse     `json:"resolution,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func newOrderDetailResponse(order *models.Order) orderDetailResponse {
	files := make([]orderFileResponse, 0, len(order.Files))
	for _, file := range order.Files {
		files = append(files, orderFileResponse{
			ID:        file.ID,
			URL:       file.URL,
			StorageID: file.StorageID,
			Position:  file.Position,
		})
	}

	deliveries := make([]orderDeliveryResponse, 0, len(order.Deliveries))
	for _, delivery := range order.Deliveries {
		deliveries = append(deliveries, orderDeliveryResponse{
			ID:             delivery.ID,
			RevisionNumber: delivery.RevisionNumber,
			Message:        delivery.Message,
			FileURL:        delivery.FileURL,
			DeliveredAt:    delivery.DeliveredAt,
		})
	}

	revisions := make([]orderRevisionResponse, 0, len(order.RevisionRequests))
	for _, revision := range order.RevisionRequests {
		revisions = append(revisions, orderRevisionResponse{
			ID:             revision.ID,
			RevisionNumber: revision.RevisionNumber,
			Message:        revision.Message,
			RequestedAt:    revision.RequestedAt,
		})
	}

	coworkers := make([]orderCoworkerResponse, 0, len(order.Coworkers))
	for _, coworker := range order.Coworkers {
		coworkers = append(coworkers, newOrderCoworkerResponse(&coworker))
	}

	resp := orderDetailResponse{
		ID:              order.ID,
		GigID:           order.GigID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		PackageType:     string(order.PackageType),
		PackageDetails:  order.PackageDetails,
		Requirements:    order.Requirements,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   string(order.PaymentMethod),
		IsPaid:          order.IsPaid,
		DeliveryDueDate: order.DeliveryDueDate,
		DeliveredAt:     order.DeliveredAt,
		ApprovedAt:      order.ApprovedAt,
		CompletedAt:     order.CompletedAt,
		CancelledAt:     order.CancelledAt,
		AutoCompletedAt: order.AutoCompletedAt,
		SystemNote:      order.SystemNote,
		BuyerReview:     order.BuyerReview,
		SellerReview:    order.SellerReview,
		Files:           files,
		Deliveries:      deliveries,
		Revisions:       revisions,
		Coworkers:       coworkers,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Resolution != nil {
		resolution := newResolutionResponse(order.Resolution)
		resp.Resolution = &resolution
	}
	return resp
}

func newOrderCoworkerResponse(coworker *models.OrderCoworker) orderCoworkerResponse {
	return orderCoworkerResponse{
		ID:          coworker.ID,
		SellerID:    coworker.SellerID,
		PriceType:   string(coworker.PriceType),
		Rate:        coworker.Rate.String(),
		MaxHours:    coworker.MaxHours,
		Status:      string(coworker.Status),
		InvitedAt:   coworker.InvitedAt,
		RespondedAt: coworker.RespondedAt,
	}
}

func newResolutionResponse(resolution *models.ResolutionRequest) resolutionResponse {
	return resolutionResponse{
		TicketID:      resolution.TicketID,
		Reason:        resolution.Reason,
		Message:       resolution.Message,
		RequestedBy:   resolution.RequestedBy,
		RequestedAt:   resolution.RequestedAt,
		Status:        string(resolution.Status),
		AdminResponse: resolution.AdminResponse,
		ResolvedAt:    resolution.ResolvedAt,
	}
}
