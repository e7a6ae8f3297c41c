package coworkers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier interface {
	Dispatch(ctx context.Context, notes ...notifications.Note)
}

// Service defines the coworker sub-engagement operations.
type Service interface {
	Invite(ctx context.Context, input InviteInput) (*models.OrderCoworker, error)
	Respond(ctx context.Context, input RespondInput) (*RespondResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	users    userFinder
	notifier notifier
	now      func() time.Time
}

// InviteInput invites a secondary seller into an order.
type InviteInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	SellerID  uuid.UUID
	PriceType enums.CoworkerPriceType
	Rate      decimal.Decimal
	MaxHours  *int
}

// RespondInput is the invited seller's accept/reject decision.
type RespondInput struct {
	OrderID  uuid.UUID
	SellerID uuid.UUID
	Accept   bool
}

// RespondResult reports the entry plus whether the invite had already been
// answered. Repeat responses are a signal, not an error.
type RespondResult struct {
	Coworker         *models.OrderCoworker
	AlreadyResponded bool
}

// NewService builds the coworkers service.
func NewService(repo Repository, tx txRunner, users userFinder, notifier notifier, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coworkers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, users: users, notifier: notifier, now: now}, nil
}

func (s *service) Invite(ctx context.Context, input InviteInput) (*models.OrderCoworker, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coworker seller id required")
	}
	if input.SellerID == input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot invite yourself")
	}
	if !input.PriceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price type must be hourly or fixed")
	}
	if !input.Rate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}
	if input.PriceType == enums.CoworkerPriceTypeHourly {
		if input.MaxHours == nil || *input.MaxHours <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max hours required for hourly coworkers")
		}
	}

	target, err := s.users.FindUser(ctx, input.SellerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coworker not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coworker")
	}
	if !target.IsSeller {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coworker must be a seller")
	}

	var (
		coworker *models.OrderCoworker
		invited  bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SellerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the order seller can invite coworkers")
		}

		now := s.now().UTC()
		existing, err := repo.FindCoworker(ctx, order.ID, input.SellerID)
		switch {
		case err == nil:
			if existing.Status != enums.CoworkerStatusRejected {
				// Pending or accepted invites are left untouched.
				coworker = existing
				return nil
			}
			updates := map[string]any{
				"price_type":   input.PriceType,
				"rate":         input.Rate,
				"max_hours":    input.MaxHours,
				"status":       enums.CoworkerStatusPending,
				"invited_at":   now,
				"responded_at": nil,
			}
			if err := repo.Update(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coworker invite")
			}
			existing.PriceType = input.PriceType
			existing.Rate = input.Rate
			existing.MaxHours = input.MaxHours
			existing.Status = enums.CoworkerStatusPending
			existing.InvitedAt = now
			existing.RespondedAt = nil
			coworker = existing
			invited = true
			return nil
		case err == gorm.ErrRecordNotFound:
			coworker = &models.OrderCoworker{
				OrderID:   order.ID,
				SellerID:  input.SellerID,
				PriceType: input.PriceType,
				Rate:      input.Rate,
				MaxHours:  input.MaxHours,
				Status:    enums.CoworkerStatusPending,
				InvitedAt: now,
			}
			if err := repo.Create(ctx, coworker); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coworker invite")
			}
			invited = true
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coworker invite")
		}
	})
	if err != nil {
		return nil, err
	}

	if invited {
		link := fmt.Sprintf("/orders/%s/coworkers/respond", input.OrderID)
		s.notifier.Dispatch(ctx, notifications.Note{
			UserID:       input.SellerID,
			Role:         enums.UserRoleSeller,
			Type:         enums.NotificationTypeInvite,
			Title:        "Coworker Invitation",
			Description:  "You were invited to collaborate on an order.",
			Link:         &link,
			EmailSubject: "You were invited to collaborate on an order",
			EmailHTML: fmt.Sprintf(
				`<p>You were invited to collaborate on an order.</p><p><a href="%s?action=accept">Accept</a> | <a href="%s?action=reject">Reject</a></p>`,
				link, link,
			),
		})
	}
	return coworker, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*RespondResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var (
		result *RespondResult
		order  *models.Order
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

		coworker, err := repo.FindCoworker(ctx, order.ID, input.SellerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no invitation for this user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coworker invite")
		}

		if coworker.Status != enums.CoworkerStatusPending {
			result = &RespondResult{Coworker: coworker, AlreadyResponded: true}
			return nil
		}

		status := enums.CoworkerStatusRejected
		if input.Accept {
			status = enums.CoworkerStatusAccepted
		}
		now := s.now().UTC()
		if err := repo.Update(ctx, coworker.ID, map[string]any{
			"status":       status,
			"responded_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coworker invite")
		}
		coworker.Status = status
		coworker.RespondedAt = &now
		result = &RespondResult{Coworker: coworker}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyResponded {
		outcome := "rejected"
		if input.Accept {
			outcome = "accepted"
		}
		link := "/orders/" + order.ID.String()
		s.notifier.Dispatch(ctx, notifications.Note{
			UserID:      order.SellerID,
			Role:        enums.UserRoleSeller,
			Type:        enums.NotificationTypeInvite,
			Title:       "Coworker Responded",
			Description: fmt.Sprintf("Your coworker invitation was %s.", outcome),
			Link:        &link,
		})
	}
	return result, nil
}
