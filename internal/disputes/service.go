package disputes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
)

const maxMessageLength = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Dispatch(ctx context.Context, notes ...notifications.Note)
}

// Refunder returns captured provider funds for a payment reference.
type Refunder interface {
	Refund(ctx context.Context, paymentRef string) (string, error)
}

// Service defines dispute raise/respond operations.
type Service interface {
	Raise(ctx context.Context, input RaiseInput) (*models.ResolutionRequest, error)
	Respond(ctx context.Context, input RespondInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier notifier
	wallets  wallet.Service
	refunder Refunder
	logg     *logger.Logger
	now      func() time.Time
}

// RaiseInput opens (or re-opens) a dispute on an order.
type RaiseInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Reason  string
	Message string
}

// RespondInput settles an open dispute.
type RespondInput struct {
	OrderID  uuid.UUID
	ActorID  uuid.UUID
	IsAdmin  bool
	Accept   bool
	Response string
}

// ServiceParams wires the dispute service dependencies. Refunder may be
// nil when no card provider is configured.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Notifier notifier
	Wallets  wallet.Service
	Refunder Refunder
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService builds the disputes service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("disputes repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		notifier: params.Notifier,
		wallets:  params.Wallets,
		refunder: params.Refunder,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Raise(ctx context.Context, input RaiseInput) (*models.ResolutionRequest, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	if len(input.Message) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message exceeds 500 characters")
	}

	var (
		order      *models.Order
		resolution *models.ResolutionRequest
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != input.ActorID && order.SellerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "disputes cannot be raised on a finalized order")
		}

		now := s.now().UTC()
		existing, err := repo.FindResolutionByOrder(ctx, order.ID)
		switch {
		case err == nil:
			// Re-raising overwrites the previous request; the ticket id is
			// assigned once and kept.
			updates := map[string]any{
				"reason":         input.Reason,
				"message":        input.Message,
				"requested_by":   input.ActorID,
				"requested_at":   now,
				"status":         enums.ResolutionStatusOpen,
				"admin_response": nil,
				"responded_by":   nil,
				"resolved_at":    nil,
			}
			if err := repo.UpdateResolution(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update resolution request")
			}
			existing.Reason = input.Reason
			existing.Message = input.Message
			existing.RequestedBy = input.ActorID
			existing.RequestedAt = now
			existing.Status = enums.ResolutionStatusOpen
			existing.AdminResponse = nil
			existing.RespondedBy = nil
			existing.ResolvedAt = nil
			resolution = existing
		case err == gorm.ErrRecordNotFound:
			ticket, err := repo.NextTicketNumber(ctx)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign ticket number")
			}
			resolution = &models.ResolutionRequest{
				OrderID:     order.ID,
				TicketID:    fmt.Sprintf("RSL-%d", ticket),
				Reason:      input.Reason,
				Message:     input.Message,
				RequestedBy: input.ActorID,
				RequestedAt: now,
				Status:      enums.ResolutionStatusOpen,
			}
			if err := repo.CreateResolution(ctx, resolution); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create resolution request")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load resolution request")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusDisputed}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	counterparty := order.SellerID
	counterpartyRole := enums.UserRoleSeller
	initiatorRole := enums.UserRoleBuyer
	if input.ActorID == order.SellerID {
		counterparty = order.BuyerID
		counterpartyRole = enums.UserRoleBuyer
		initiatorRole = enums.UserRoleSeller
	}

	link := "/orders/" + order.ID.String()
	s.notifier.Dispatch(ctx,
		notifications.Note{
			UserID:       input.ActorID,
			Role:         initiatorRole,
			Type:         enums.NotificationTypeDispute,
			Title:        "Dispute Opened",
			Description:  fmt.Sprintf("Your dispute %s was opened.", resolution.TicketID),
			Link:         &link,
			EmailSubject: "Your dispute was opened",
			EmailHTML:    fmt.Sprintf("<p>Your dispute %s was opened. We will notify you when the other party responds.</p>", resolution.TicketID),
		},
		notifications.Note{
			UserID:       counterparty,
			Role:         counterpartyRole,
			Type:         enums.NotificationTypeDispute,
			Title:        "Dispute Raised",
			Description:  fmt.Sprintf("A dispute (%s) was raised on your order. Action needed.", resolution.TicketID),
			Link:         &link,
			EmailSubject: "A dispute was raised on your order",
			EmailHTML:    fmt.Sprintf("<p>A dispute (%s) was raised on your order. Please review and respond.</p>", resolution.TicketID),
		},
	)
	return resolution, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil && !input.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var (
		order      *models.Order
		resolution *models.ResolutionRequest
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		resolution, err = repo.FindResolutionByOrder(ctx, order.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no dispute on this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load resolution request")
		}
		if resolution.Status != enums.ResolutionStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "dispute is not open")
		}
		if !input.IsAdmin && order.BuyerID != input.ActorID && order.SellerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		now := s.now().UTC()
		resolutionUpdates := map[string]any{
			"resolved_at": now,
		}
		if input.ActorID != uuid.Nil {
			resolutionUpdates["responded_by"] = input.ActorID
		}
		if input.Response != "" {
			resolutionUpdates["admin_response"] = input.Response
		}

		if input.Accept {
			resolutionUpdates["status"] = enums.ResolutionStatusResolved
			if err := repo.UpdateResolution(ctx, resolution.ID, resolutionUpdates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update resolution request")
			}
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
				"status":       enums.OrderStatusCancelled,
				"cancelled_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
			}
			resolution.Status = enums.ResolutionStatusResolved
			order.Status = enums.OrderStatusCancelled
			return nil
		}

		// Rejection returns the order to pending regardless of the state it
		// held before the dispute. Kept for compatibility.
		resolutionUpdates["status"] = enums.ResolutionStatusRejected
		if err := repo.UpdateResolution(ctx, resolution.ID, resolutionUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update resolution request")
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusPending}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		resolution.Status = enums.ResolutionStatusRejected
		order.Status = enums.OrderStatusPending
		return nil
	})
	if err != nil {
		return err
	}

	if input.Accept && order.IsPaid {
		s.refund(ctx, order)
	}

	outcome := "rejected"
	if input.Accept {
		outcome = "resolved"
	}
	link := "/orders/" + order.ID.String()

	if input.IsAdmin {
		s.notifier.Dispatch(ctx,
			disputeOutcomeNote(order.BuyerID, enums.UserRoleBuyer, resolution.TicketID, outcome, link),
			disputeOutcomeNote(order.SellerID, enums.UserRoleSeller, resolution.TicketID, outcome, link),
		)
		return nil
	}

	counterparty := order.SellerID
	counterpartyRole := enums.UserRoleSeller
	responderRole := enums.UserRoleBuyer
	if input.ActorID == order.SellerID {
		counterparty = order.BuyerID
		counterpartyRole = enums.UserRoleBuyer
		responderRole = enums.UserRoleSeller
	}
	s.notifier.Dispatch(ctx,
		disputeOutcomeNote(counterparty, counterpartyRole, resolution.TicketID, outcome, link),
		notifications.Note{
			UserID:      input.ActorID,
			Role:        responderRole,
			Type:        enums.NotificationTypeDispute,
			Title:       "Dispute Response Recorded",
			Description: fmt.Sprintf("Your response to dispute %s was recorded (%s).", resolution.TicketID, outcome),
			Link:        &link,
		},
	)
	return nil
}

// refund runs after the cancellation has committed. Failures are logged
// and left for manual settlement, never surfaced to the responder.
func (s *service) refund(ctx context.Context, order *models.Order) {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	switch order.PaymentMethod {
	case enums.PaymentMethodBalance:
		err := s.wallets.Credit(ctx, wallet.CreditInput{
			UserID:      order.BuyerID,
			Amount:      order.TotalAmount,
			Description: fmt.Sprintf("Refund for cancelled order %s", order.ID),
			OrderID:     &order.ID,
		})
		if err != nil {
			s.logg.Error(ctx, "balance refund failed", err)
		}
	case enums.PaymentMethodCard:
		if s.refunder == nil || order.PaymentRef == nil {
			s.logg.Warn(ctx, "card refund skipped: no provider reference")
			return
		}
		refundID, err := s.refunder.Refund(ctx, *order.PaymentRef)
		if err != nil {
			s.logg.Error(ctx, "card refund failed", err)
			return
		}
		s.logg.Info(ctx, fmt.Sprintf("card payment refunded (%s)", refundID))
	}
}

func disputeOutcomeNote(userID uuid.UUID, role enums.UserRole, ticketID, outcome, link string) notifications.Note {
	return notifications.Note{
		UserID:       userID,
		Role:         role,
		Type:         enums.NotificationTypeDispute,
		Title:        "Dispute " + outcome,
		Description:  fmt.Sprintf("Dispute %s was %s.", ticketID, outcome),
		Link:         &link,
		EmailSubject: fmt.Sprintf("Dispute %s %s", ticketID, outcome),
		EmailHTML:    fmt.Sprintf("<p>Dispute %s was %s.</p>", ticketID, outcome),
	}
}
