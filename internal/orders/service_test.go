package orders

import (
	"context"
	"testing"
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

type stubOrdersRepo struct {
	gig              *models.Gig
	order            *models.Order
	revisionCount    int64
	completeOK       bool
	createdOrder     *models.Order
	createdFiles     []models.OrderFile
	createdDelivery  *models.OrderDelivery
	createdRevision  *models.OrderRevisionRequest
	orderUpdates     []map[string]any
	completeUpdates  []map[string]any
	deletedOrderID   uuid.UUID
	createOrderErr   error
	countRevisionErr error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrderErr != nil {
		return nil, s.createOrderErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.createdOrder = order
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderFiles(ctx context.Context, files []models.OrderFile) error {
	s.createdFiles = append(s.createdFiles, files...)
	return nil
}

func (s *stubOrdersRepo) CreateDelivery(ctx context.Context, delivery *models.OrderDelivery) error {
	s.createdDelivery = delivery
	return nil
}

func (s *stubOrdersRepo) CreateRevisionRequest(ctx context.Context, request *models.OrderRevisionRequest) error {
	s.createdRevision = request
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrdersRepo) FindGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	if s.gig == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.gig, nil
}

func (s *stubOrdersRepo) CountRevisionRequests(ctx context.Context, orderID uuid.UUID) (int64, error) {
	if s.countRevisionErr != nil {
		return 0, s.countRevisionErr
	}
	return s.revisionCount, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.orderUpdates = append(s.orderUpdates, updates)
	return nil
}

func (s *stubOrdersRepo) CompleteDelivered(ctx context.Context, orderID uuid.UUID, updates map[string]any) (bool, error) {
	s.completeUpdates = append(s.completeUpdates, updates)
	return s.completeOK, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrdersRepo) FindStaleDeliveredOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	s.deletedOrderID = orderID
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCapturer struct {
	captures []payments.CaptureInput
	ref      *string
	err      error
}

func (s *stubCapturer) Capture(ctx context.Context, tx *gorm.DB, input payments.CaptureInput) (*payments.CaptureResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.captures = append(s.captures, input)
	return &payments.CaptureResult{Ref: s.ref}, nil
}

type stubWalletService struct {
	referralCredits []wallet.ReferralCreditInput
	referralErr     error
}

func (s *stubWalletService) Get(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubWalletService) Ensure(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID}, nil
}

func (s *stubWalletService) ListTransactions(ctx context.Context, params wallet.ListTransactionsParams) (*wallet.TransactionList, error) {
	return &wallet.TransactionList{}, nil
}

func (s *stubWalletService) Credit(ctx context.Context, input wallet.CreditInput) error { return nil }

func (s *stubWalletService) Debit(ctx context.Context, input wallet.DebitInput) error { return nil }

func (s *stubWalletService) CreditReferral(ctx context.Context, input wallet.ReferralCreditInput) error {
	if s.referralErr != nil {
		return s.referralErr
	}
	s.referralCredits = append(s.referralCredits, input)
	return nil
}

type stubUserFinder struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubNotifier struct {
	notes []notifications.Note
}

func (s *stubNotifier) Dispatch(ctx context.Context, notes ...notifications.Note) {
	s.notes = append(s.notes, notes...)
}

type orderServiceTestHelper struct {
	svc      Service
	repo     *stubOrdersRepo
	capturer *stubCapturer
	wallets  *stubWalletService
	notifier *stubNotifier
	users    *stubUserFinder
	now      time.Time
}

func newOrderServiceTest(t *testing.T, repo *stubOrdersRepo) *orderServiceTestHelper {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	capturer := &stubCapturer{}
	wallets := &stubWalletService{}
	notifier := &stubNotifier{}
	users := &stubUserFinder{users: map[uuid.UUID]*models.User{}}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       fakeTxRunner{},
		Capturer: capturer,
		Wallets:  wallets,
		Users:    users,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &orderServiceTestHelper{
		svc:      svc,
		repo:     repo,
		capturer: capturer,
		wallets:  wallets,
		notifier: notifier,
		users:    users,
		now:      now,
	}
}

func deliveredOrder(revisions int) *models.Order {
	return &models.Order{
		ID:       uuid.New(),
		GigID:    uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusDelivered,
		PackageDetails: types.PackageSnapshot{
			Name:         "Standard",
			Price:        decimal.NewFromInt(100),
			DeliveryDays: 3,
			Revisions:    revisions,
		},
		TotalAmount: decimal.NewFromInt(100),
	}
}

func TestCreate_balancePaymentPersistsOrderAndNotifies(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()
	repo := &stubOrdersRepo{
		gig: &models.Gig{
			ID:       uuid.New(),
			SellerID: sellerID,
			Title:    "Logo design",
			Packages: []models.GigPackage{
				{Type: enums.PackageTypeBasic, Name: "Basic", Price: decimal.NewFromInt(50), DeliveryDays: 2, Revisions: 1},
				{Type: enums.PackageTypeStandard, Name: "Standard", Price: decimal.NewFromInt(120), DeliveryDays: 4, Revisions: 3},
			},
		},
	}
	helper := newOrderServiceTest(t, repo)
	helper.users.users[buyerID] = &models.User{ID: buyerID, Email: "buyer@example.com"}

	order, err := helper.svc.Create(context.Background(), CreateInput{
		GigID:         repo.gig.ID,
		BuyerID:       buyerID,
		PackageType:   enums.PackageTypeStandard,
		Requirements:  "Need a round logo",
		PaymentMethod: enums.PaymentMethodBalance,
		Files:         []FileRef{{URL: "https://cdn/logo-brief.pdf", StorageID: "orders/brief-1"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if !order.IsPaid || order.PaidAt == nil {
		t.Fatal("expected order marked paid")
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected total: %s", order.TotalAmount)
	}
	if order.PackageDetails.Revisions != 3 {
		t.Fatalf("unexpected snapshot revisions: %d", order.PackageDetails.Revisions)
	}
	wantDue := helper.now.AddDate(0, 0, 4)
	if !order.DeliveryDueDate.Equal(wantDue) {
		t.Fatalf("unexpected due date: %s", order.DeliveryDueDate)
	}
	if len(helper.capturer.captures) != 1 {
		t.Fatalf("expected 1 capture, got %d", len(helper.capturer.captures))
	}
	if !helper.capturer.captures[0].Amount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected capture amount: %s", helper.capturer.captures[0].Amount)
	}
	if len(repo.createdFiles) != 1 || repo.createdFiles[0].Position != 0 {
		t.Fatalf("unexpected order files: %+v", repo.createdFiles)
	}
	if len(helper.notifier.notes) != 2 {
		t.Fatalf("expected buyer and seller notes, got %d", len(helper.notifier.notes))
	}
}

func TestCreate_selfPurchaseForbidden(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOrdersRepo{
		gig: &models.Gig{ID: uuid.New(), SellerID: buyerID, Title: "Own gig"},
	}
	helper := newOrderServiceTest(t, repo)
	helper.users.users[buyerID] = &models.User{ID: buyerID}

	_, err := helper.svc.Create(context.Background(), CreateInput{
		GigID:         repo.gig.ID,
		BuyerID:       buyerID,
		PackageType:   enums.PackageTypeBasic,
		Requirements:  "anything",
		PaymentMethod: enums.PaymentMethodBalance,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_paymentFailureLeavesNoOrder(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()
	repo := &stubOrdersRepo{
		gig: &models.Gig{
			ID:       uuid.New(),
			SellerID: sellerID,
			Packages: []models.GigPackage{
				{Type: enums.PackageTypeBasic, Name: "Basic", Price: decimal.NewFromInt(50), DeliveryDays: 2, Revisions: 1},
			},
		},
	}
	helper := newOrderServiceTest(t, repo)
	helper.users.users[buyerID] = &models.User{ID: buyerID}
	helper.capturer.err = pkgerrors.New(pkgerrors.CodePayment, "insufficient wallet balance")

	_, err := helper.svc.Create(context.Background(), CreateInput{
		GigID:         repo.gig.ID,
		BuyerID:       buyerID,
		PackageType:   enums.PackageTypeBasic,
		Requirements:  "anything",
		PaymentMethod: enums.PaymentMethodBalance,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatal("expected no order row after failed capture")
	}
	if len(helper.notifier.notes) != 1 || helper.notifier.notes[0].Title != "Payment Failed" {
		t.Fatalf("expected single payment-failed note, got %+v", helper.notifier.notes)
	}
}

func TestCreate_customPackageRequiresDetails(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()
	repo := &stubOrdersRepo{
		gig: &models.Gig{ID: uuid.New(), SellerID: sellerID},
	}
	helper := newOrderServiceTest(t, repo)
	helper.users.users[buyerID] = &models.User{ID: buyerID}

	_, err := helper.svc.Create(context.Background(), CreateInput{
		GigID:         repo.gig.ID,
		BuyerID:       buyerID,
		PackageType:   enums.PackageTypeCustom,
		Requirements:  "anything",
		PaymentMethod: enums.PaymentMethodBalance,
		Custom:        &CustomPackage{Price: decimal.NewFromInt(200)},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_customPackageUsesConfiguredRevisions(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()
	repo := &stubOrdersRepo{
		gig: &models.Gig{ID: uuid.New(), SellerID: sellerID},
	}
	helper := newOrderServiceTest(t, repo)
	helper.users.users[buyerID] = &models.User{ID: buyerID}

	order, err := helper.svc.Create(context.Background(), CreateInput{
		GigID:         repo.gig.ID,
		BuyerID:       buyerID,
		PackageType:   enums.PackageTypeCustom,
		Requirements:  "anything",
		PaymentMethod: enums.PaymentMethodCard,
		Custom: &CustomPackage{
			Description:  "Full brand kit",
			Price:        decimal.NewFromInt(300),
			DeliveryDays: 7,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.PackageDetails.Revisions != 5 {
		t.Fatalf("expected default custom revisions, got %d", order.PackageDetails.Revisions)
	}
	if order.PackageDetails.Name != "Custom offer" {
		t.Fatalf("unexpected snapshot name: %s", order.PackageDetails.Name)
	}
}

func TestDeliver_rejectsTerminalStates(t *testing.T) {
	order := deliveredOrder(1)
	order.Status = enums.OrderStatusCompleted
	repo := &stubOrdersRepo{order: order}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.Deliver(context.Background(), DeliverInput{
		OrderID:  order.ID,
		SellerID: order.SellerID,
		Message:  "final files",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeliver_redeliveryKeepsOriginalDeliveredAt(t *testing.T) {
	firstDelivery := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	order := deliveredOrder(3)
	order.Status = enums.OrderStatusRevision
	order.DeliveredAt = &firstDelivery
	repo := &stubOrdersRepo{order: order, revisionCount: 1}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.Deliver(context.Background(), DeliverInput{
		OrderID:  order.ID,
		SellerID: order.SellerID,
		Message:  "revised files",
	})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if repo.createdDelivery.RevisionNumber != 1 {
		t.Fatalf("unexpected revision number: %d", repo.createdDelivery.RevisionNumber)
	}
	if len(repo.orderUpdates) != 1 {
		t.Fatalf("expected 1 order update, got %d", len(repo.orderUpdates))
	}
	if _, touched := repo.orderUpdates[0]["delivered_at"]; touched {
		t.Fatal("redelivery must not reset the delivered timestamp")
	}
	if repo.orderUpdates[0]["status"] != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered status, got %v", repo.orderUpdates[0]["status"])
	}
}

func TestRequestRevision_enforcesQuota(t *testing.T) {
	order := deliveredOrder(2)
	repo := &stubOrdersRepo{order: order, revisionCount: 2}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.RequestRevision(context.Background(), RevisionInput{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Message: "make it bluer",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.createdRevision != nil {
		t.Fatal("expected no revision row past the quota")
	}
}

func TestRequestRevision_underQuotaMovesOrderToRevision(t *testing.T) {
	order := deliveredOrder(2)
	repo := &stubOrdersRepo{order: order, revisionCount: 1}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.RequestRevision(context.Background(), RevisionInput{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Message: "tighten the kerning",
	})
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	if repo.createdRevision.RevisionNumber != 2 {
		t.Fatalf("unexpected revision number: %d", repo.createdRevision.RevisionNumber)
	}
	if repo.orderUpdates[0]["status"] != enums.OrderStatusRevision {
		t.Fatalf("expected revision status, got %v", repo.orderUpdates[0]["status"])
	}
}

func TestApprove_finalizesAndCreditsReferrer(t *testing.T) {
	referrerID := uuid.New()
	order := deliveredOrder(1)
	order.ReferrerID = &referrerID
	repo := &stubOrdersRepo{order: order, completeOK: true}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.Approve(context.Background(), ApproveInput{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(repo.completeUpdates) != 1 {
		t.Fatalf("expected 1 finalize update, got %d", len(repo.completeUpdates))
	}
	if repo.completeUpdates[0]["status"] != enums.OrderStatusCompleted {
		t.Fatalf("expected completed status, got %v", repo.completeUpdates[0]["status"])
	}
	if len(helper.wallets.referralCredits) != 1 {
		t.Fatalf("expected referral credit, got %d", len(helper.wallets.referralCredits))
	}
	credit := helper.wallets.referralCredits[0]
	if credit.ReferrerID != referrerID || credit.OrderID != order.ID {
		t.Fatalf("unexpected referral credit: %+v", credit)
	}
}

func TestApprove_lostRaceReturnsConflict(t *testing.T) {
	order := deliveredOrder(1)
	repo := &stubOrdersRepo{order: order, completeOK: false}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.Approve(context.Background(), ApproveInput{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(helper.notifier.notes) != 0 {
		t.Fatal("expected no notifications after a lost race")
	}
}

func TestApprove_referralFailureDoesNotUndoApproval(t *testing.T) {
	referrerID := uuid.New()
	order := deliveredOrder(1)
	order.ReferrerID = &referrerID
	repo := &stubOrdersRepo{order: order, completeOK: true}
	helper := newOrderServiceTest(t, repo)
	helper.wallets.referralErr = pkgerrors.New(pkgerrors.CodeDependency, "wallet unavailable")

	if err := helper.svc.Approve(context.Background(), ApproveInput{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
	}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(helper.notifier.notes) != 2 {
		t.Fatalf("expected completion notes despite referral failure, got %d", len(helper.notifier.notes))
	}
}

func TestSubmitReview_oncePerSide(t *testing.T) {
	order := deliveredOrder(1)
	order.Status = enums.OrderStatusCompleted
	order.BuyerReview = &types.Review{Rating: 5, Comment: "great", SubmittedAt: time.Now()}
	repo := &stubOrdersRepo{order: order}
	helper := newOrderServiceTest(t, repo)

	err := helper.svc.SubmitReview(context.Background(), ReviewInput{
		OrderID: order.ID,
		ActorID: order.BuyerID,
		Rating:  4,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	err = helper.svc.SubmitReview(context.Background(), ReviewInput{
		OrderID: order.ID,
		ActorID: order.SellerID,
		Rating:  5,
		Comment: "smooth buyer",
	})
	if err != nil {
		t.Fatalf("SubmitReview (seller): %v", err)
	}
	if len(repo.orderUpdates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(repo.orderUpdates))
	}
	if _, ok := repo.orderUpdates[0]["seller_review"]; !ok {
		t.Fatal("expected seller_review column write")
	}
}

func TestDetail_restrictedToParticipantsAndAdmins(t *testing.T) {
	order := deliveredOrder(1)
	repo := &stubOrdersRepo{order: order}
	helper := newOrderServiceTest(t, repo)

	if _, err := helper.svc.Detail(context.Background(), order.ID, uuid.New(), enums.UserRoleBuyer); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := helper.svc.Detail(context.Background(), order.ID, uuid.New(), enums.UserRoleAdmin); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
	if _, err := helper.svc.Detail(context.Background(), order.ID, order.BuyerID, enums.UserRoleBuyer); err != nil {
		t.Fatalf("expected buyer access, got %v", err)
	}
}
