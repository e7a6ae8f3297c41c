package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	"github.com/giglane/giglane-backend/pkg/logger"
)

const defaultAutoCompleteAfter = 72 * time.Hour

type staleOrderReader interface {
	FindStaleDeliveredOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderFinalizer interface {
	CompleteDelivered(ctx context.Context, orderID uuid.UUID, updates map[string]any) (bool, error)
}

type notifier interface {
	Dispatch(ctx context.Context, notes ...notifications.Note)
}

// AutoCompleteJobParams configure the delivered-order sweep.
type AutoCompleteJobParams struct {
	Logger   *logger.Logger
	Orders   ordersRepo
	Notifier notifier
	After    time.Duration
	Now      func() time.Time
}

type ordersRepo interface {
	staleOrderReader
	orderFinalizer
}

// NewAutoCompleteJob builds the cron job that finalizes delivered orders the
// buyer never acted on.
func NewAutoCompleteJob(params AutoCompleteJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	after := params.After
	if after <= 0 {
		after = defaultAutoCompleteAfter
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &autoCompleteJob{
		logg:     params.Logger,
		orders:   params.Orders,
		notifier: params.Notifier,
		after:    after,
		now:      now,
	}, nil
}

type autoCompleteJob struct {
	logg     *logger.Logger
	orders   ordersRepo
	notifier notifier
	after    time.Duration
	now      func() time.Time
}

func (j *autoCompleteJob) Name() string { return "order-auto-complete" }

func (j *autoCompleteJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	stale, err := j.orders.FindStaleDeliveredOrders(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale delivered orders: %w", err)
	}

	var errs []error
	completed := 0
	for _, order := range stale {
		ok, err := j.completeOrder(ctx, order, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("auto-complete order %s: %w", order.ID, err))
			continue
		}
		if ok {
			completed++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(stale),
		"completed":  completed,
	})
	j.logg.Info(logCtx, "auto-complete sweep finished")
	return multierr.Combine(errs...)
}

func (j *autoCompleteJob) completeOrder(ctx context.Context, order models.Order, now time.Time) (bool, error) {
	note := fmt.Sprintf("Auto-completed after %d hours without buyer action", int(j.after.Hours()))
	updates := map[string]any{
		"status":            enums.OrderStatusCompleted,
		"approved_at":       now,
		"completed_at":      now,
		"auto_completed_at": now,
		"system_note":       note,
	}
	ok, err := j.orders.CompleteDelivered(ctx, order.ID, updates)
	if err != nil {
		return false, err
	}
	if !ok {
		// A buyer approval or dispute won the race; nothing to announce.
		return false, nil
	}

	link := "/orders/" + order.ID.String()
	j.notifier.Dispatch(ctx, notifications.Note{
		UserID:      order.SellerID,
		Role:        enums.UserRoleSeller,
		Type:        enums.NotificationTypeOrder,
		Title:       "Order Auto-Completed",
		Description: "A delivered order was automatically completed after the review window elapsed.",
		Link:        &link,
	})
	return true, nil
}
