package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/internal/payments"
	"github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
	"github.com/giglane/giglane-backend/pkg/pagination"
	"github.com/giglane/giglane-backend/pkg/types"
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

// FileStore releases stored attachments when an order is hard-deleted.
type FileStore interface {
	Delete(ctx context.Context, objectName string) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Deliver(ctx context.Context, input DeliverInput) error
	RequestRevision(ctx context.Context, input RevisionInput) error
	Approve(ctx context.Context, input ApproveInput) error
	SubmitReview(ctx context.Context, input ReviewInput) error
	ListBuyerOrders(ctx context.Context, params ListParams) (*OrderList, error)
	ListSellerOrders(ctx context.Context, params ListParams) (*OrderList, error)
	Detail(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error)
	AdminDelete(ctx context.Context, orderID uuid.UUID) error
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	Repo            Repository
	Tx              txRunner
	Capturer        payments.Capturer
	Wallets         wallet.Service
	Users           userFinder
	Notifier        notifier
	Files           FileStore
	Logger          *logger.Logger
	CustomRevisions int
	ReferralReward  decimal.Decimal
	Now             func() time.Time
}

type service struct {
	repo            Repository
	tx              txRunner
	capturer        payments.Capturer
	wallets         wallet.Service
	users           userFinder
	notifier        notifier
	files           FileStore
	logg            *logger.Logger
	customRevisions int
	referralReward  decimal.Decimal
	now             func() time.Time
}

// NewService builds the order lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Capturer == nil {
		return nil, fmt.Errorf("payment capturer required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.CustomRevisions <= 0 {
		params.CustomRevisions = 5
	}
	if !params.ReferralReward.IsPositive() {
		params.ReferralReward = decimal.NewFromInt(1)
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:            params.Repo,
		tx:              params.Tx,
		capturer:        params.Capturer,
		wallets:         params.Wallets,
		users:           params.Users,
		notifier:        params.Notifier,
		files:           params.Files,
		logg:            params.Logger,
		customRevisions: params.CustomRevisions,
		referralReward:  params.ReferralReward,
		now:             params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.GigID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PackageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid package type")
	}
	if input.Requirements == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requirements required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	buyer, err := s.users.FindUser(ctx, input.BuyerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	gig, err := s.repo.FindGig(ctx, input.GigID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gig not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	if gig.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot order your own gig")
	}

	snapshot, err := s.buildSnapshot(gig, input)
	if err != nil {
		return nil, err
	}
	if !snapshot.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}

	now := s.now().UTC()
	order := &models.Order{
		GigID:           gig.ID,
		BuyerID:         input.BuyerID,
		SellerID:        gig.SellerID,
		ReferrerID:      buyer.ReferrerID,
		PackageType:     input.PackageType,
		PackageDetails:  *snapshot,
		Requirements:    input.Requirements,
		Status:          enums.OrderStatusPending,
		TotalAmount:     snapshot.Price,
		PaymentMethod:   input.PaymentMethod,
		DeliveryDueDate: now.AddDate(0, 0, snapshot.DeliveryDays),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		capture, err := s.capturer.Capture(ctx, tx, payments.CaptureInput{
			BuyerID:     input.BuyerID,
			Amount:      snapshot.Price,
			Method:      input.PaymentMethod,
			Description: fmt.Sprintf("Order for gig %s (%s package)", gig.Title, input.PackageType),
			Metadata: map[string]string{
				"gig_id":   gig.ID.String(),
				"buyer_id": input.BuyerID.String(),
			},
		})
		if err != nil {
			return err
		}

		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentRef = capture.Ref

		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		files := make([]models.OrderFile, 0, len(input.Files))
		for i, f := range input.Files {
			files = append(files, models.OrderFile{
				OrderID:   order.ID,
				URL:       f.URL,
				StorageID: f.StorageID,
				Position:  i,
			})
		}
		if err := repo.CreateOrderFiles(ctx, files); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order files")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodePayment {
			s.notifier.Dispatch(ctx, notifications.Note{
				UserID:       input.BuyerID,
				Role:         enums.UserRoleBuyer,
				Type:         enums.NotificationTypePayment,
				Title:        "Payment Failed",
				Description:  "We could not capture payment for your order. Please check your balance or card and try again.",
				EmailSubject: "Payment failed",
				EmailHTML:    "<p>We could not capture payment for your order. Please try again.</p>",
			})
		}
		return nil, err
	}

	link := orderLink(order.ID)
	s.notifier.Dispatch(ctx,
		notifications.Note{
			UserID:       order.BuyerID,
			Role:         enums.UserRoleBuyer,
			Type:         enums.NotificationTypeOrder,
			Title:        "Order Placed",
			Description:  fmt.Sprintf("Your order for %s is confirmed.", snapshot.Name),
			Link:         &link,
			EmailSubject: "Your order is confirmed",
			EmailHTML:    fmt.Sprintf("<p>Your order for %s is confirmed and the seller has been notified.</p>", snapshot.Name),
		},
		notifications.Note{
			UserID:       order.SellerID,
			Role:         enums.UserRoleSeller,
			Type:         enums.NotificationTypeOrder,
			Title:        "New Order",
			Description:  fmt.Sprintf("You received a new %s order.", input.PackageType),
			Link:         &link,
			EmailSubject: "You received a new order",
			EmailHTML:    fmt.Sprintf("<p>You received a new %s order. Delivery is due by %s.</p>", input.PackageType, order.DeliveryDueDate.Format("Jan 2, 2006")),
		},
	)

	return order, nil
}

func (s *service) buildSnapshot(gig *models.Gig, input CreateInput) (*types.PackageSnapshot, error) {
	if input.PackageType == enums.PackageTypeCustom {
		if input.Custom == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom package details required")
		}
		if input.Custom.Description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom package description required")
		}
		if input.Custom.DeliveryDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom package delivery time required")
		}
		name := input.Custom.Name
		if name == "" {
			name = "Custom offer"
		}
		return &types.PackageSnapshot{
			Name:         name,
			Description:  input.Custom.Description,
			Price:        input.Custom.Price,
			DeliveryDays: input.Custom.DeliveryDays,
			Revisions:    s.customRevisions,
		}, nil
	}

	for _, pkg := range gig.Packages {
		if pkg.Type == input.PackageType {
			return &types.PackageSnapshot{
				Name:         pkg.Name,
				Description:  pkg.Description,
				Price:        pkg.Price,
				DeliveryDays: pkg.DeliveryDays,
				Revisions:    pkg.Revisions,
			}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found on gig")
}

func (s *service) Deliver(ctx context.Context, input DeliverInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery message required")
	}

	var order *models.Order
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
		if order.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusInProgress, enums.OrderStatusRevision:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be delivered in current state")
		}

		revisions, err := repo.CountRevisionRequests(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count revision requests")
		}

		now := s.now().UTC()
		delivery := &models.OrderDelivery{
			OrderID:        order.ID,
			RevisionNumber: int(revisions),
			Message:        input.Message,
			DeliveredAt:    now,
		}
		if input.File != nil {
			delivery.FileURL = &input.File.URL
			delivery.FileStorageID = &input.File.StorageID
		}
		if err := repo.CreateDelivery(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery")
		}

		updates := map[string]any{"status": enums.OrderStatusDelivered}
		if revisions == 0 && order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return err
	}

	link := orderLink(order.ID)
	s.notifier.Dispatch(ctx, notifications.Note{
		UserID:       order.BuyerID,
		Role:         enums.UserRoleBuyer,
		Type:         enums.NotificationTypeOrder,
		Title:        "Order Delivered",
		Description:  "The seller delivered your order. Review it and approve or request a revision.",
		Link:         &link,
		EmailSubject: "Your order was delivered",
		EmailHTML:    "<p>The seller delivered your order. Review the delivery and approve it or request a revision.</p>",
	})
	return nil
}

func (s *service) RequestRevision(ctx context.Context, input RevisionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "revision message required")
	}

	var order *models.Order
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
		if order.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "revisions can only be requested on a delivered order")
		}

		count, err := repo.CountRevisionRequests(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count revision requests")
		}
		if count >= int64(order.PackageDetails.Revisions) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "maximum revisions reached")
		}

		request := &models.OrderRevisionRequest{
			OrderID:        order.ID,
			RevisionNumber: int(count) + 1,
			Message:        input.Message,
			RequestedAt:    s.now().UTC(),
		}
		if err := repo.CreateRevisionRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record revision request")
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusRevision}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return err
	}

	link := orderLink(order.ID)
	s.notifier.Dispatch(ctx,
		notifications.Note{
			UserID:       order.SellerID,
			Role:         enums.UserRoleSeller,
			Type:         enums.NotificationTypeOrder,
			Title:        "Revision Requested",
			Description:  "The buyer requested a revision on your delivery.",
			Link:         &link,
			EmailSubject: "Revision requested",
			EmailHTML:    "<p>The buyer requested a revision. Review their notes and deliver an updated version.</p>",
		},
		notifications.Note{
			UserID:      order.BuyerID,
			Role:        enums.UserRoleBuyer,
			Type:        enums.NotificationTypeOrder,
			Title:       "Revision Request Sent",
			Description: "Your revision request was sent to the seller.",
			Link:        &link,
		},
	)
	return nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var order *models.Order
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
		if order.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only a delivered order can be approved")
		}

		now := s.now().UTC()
		ok, err := repo.CompleteDelivered(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusCompleted,
			"approved_at":  now,
			"completed_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was already finalized")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Referral settlement is best-effort: a failed credit must never undo
	// the approval. The unique referral row keeps retries idempotent.
	if order.ReferrerID != nil {
		creditErr := s.wallets.CreditReferral(ctx, wallet.ReferralCreditInput{
			ReferrerID:     *order.ReferrerID,
			ReferredUserID: order.BuyerID,
			OrderID:        order.ID,
			Amount:         s.referralReward,
		})
		if creditErr != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "referral credit failed", creditErr)
		}
	}

	link := orderLink(order.ID)
	s.notifier.Dispatch(ctx,
		notifications.Note{
			UserID:       order.SellerID,
			Role:         enums.UserRoleSeller,
			Type:         enums.NotificationTypeOrder,
			Title:        "Order Completed",
			Description:  "The buyer approved your delivery. The order is complete.",
			Link:         &link,
			EmailSubject: "Your delivery was approved",
			EmailHTML:    "<p>The buyer approved your delivery. The order is now complete.</p>",
		},
		notifications.Note{
			UserID:      order.BuyerID,
			Role:        enums.UserRoleBuyer,
			Type:        enums.NotificationTypeOrder,
			Title:       "Order Completed",
			Description: "You approved the delivery. The order is complete.",
			Link:        &link,
		},
	)
	return nil
}

func (s *service) SubmitReview(ctx context.Context, input ReviewInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reviews are only allowed on completed orders")
		}

		review := &types.Review{
			Rating:      input.Rating,
			Comment:     input.Comment,
			SubmittedAt: s.now().UTC(),
		}

		var column string
		switch input.ActorID {
		case order.BuyerID:
			if order.BuyerReview != nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "review already submitted")
			}
			column = "buyer_review"
		case order.SellerID:
			if order.SellerReview != nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "review already submitted")
			}
			column = "seller_review"
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{column: review}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store review")
		}
		return nil
	})
}

func (s *service) ListBuyerOrders(ctx context.Context, params ListParams) (*OrderList, error) {
	return s.list(ctx, params, true)
}

func (s *service) ListSellerOrders(ctx context.Context, params ListParams) (*OrderList, error) {
	return s.list(ctx, params, false)
}

func (s *service) list(ctx context.Context, params ListParams, asBuyer bool) (*OrderList, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listOrdersParams{Limit: params.Limit}
	if asBuyer {
		query.BuyerID = &params.UserID
	} else {
		query.SellerID = &params.UserID
	}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.Status = params.Status.String()
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, OrderSummary{
			ID:          row.ID,
			GigID:       row.GigID,
			BuyerID:     row.BuyerID,
			SellerID:    row.SellerID,
			PackageType: row.PackageType,
			Status:      row.Status,
			TotalAmount: row.TotalAmount,
			DueDate:     row.DeliveryDueDate,
			CreatedAt:   row.CreatedAt,
			DeliveredAt: row.DeliveredAt,
			CompletedAt: row.CompletedAt,
		})
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &OrderList{Orders: summaries, NextCursor: cursor}, nil
}

func (s *service) Detail(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if role != enums.UserRoleAdmin && order.BuyerID != actorID && order.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) AdminDelete(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if err := s.repo.DeleteOrder(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}

	// Storage cleanup after the row is gone; leaked objects are logged,
	// never surfaced.
	if s.files != nil {
		for _, f := range order.Files {
			if err := s.files.Delete(ctx, f.StorageID); err != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "release order file failed", err)
			}
		}
		for _, d := range order.Deliveries {
			if d.FileStorageID == nil {
				continue
			}
			if err := s.files.Delete(ctx, *d.FileStorageID); err != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "release delivery file failed", err)
			}
		}
	}
	return nil
}

func orderLink(orderID uuid.UUID) string {
	return "/orders/" + orderID.String()
}
