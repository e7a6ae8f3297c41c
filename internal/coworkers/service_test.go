package coworkers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
)

type stubCoworkersRepo struct {
	order    *models.Order
	coworker *models.OrderCoworker
	created  *models.OrderCoworker
	updates  []map[string]any
}

func (s *stubCoworkersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCoworkersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubCoworkersRepo) FindCoworker(ctx context.Context, orderID, sellerID uuid.UUID) (*models.OrderCoworker, error) {
	if s.coworker == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.coworker, nil
}

func (s *stubCoworkersRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCoworker, error) {
	return nil, nil
}

func (s *stubCoworkersRepo) Create(ctx context.Context, coworker *models.OrderCoworker) error {
	if coworker.ID == uuid.Nil {
		coworker.ID = uuid.New()
	}
	s.created = coworker
	s.coworker = coworker
	return nil
}

func (s *stubCoworkersRepo) Update(ctx context.Context, coworkerID uuid.UUID, updates map[string]any) error {
	s.updates = append(s.updates, updates)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
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

type coworkersTestHelper struct {
	svc      Service
	repo     *stubCoworkersRepo
	users    *stubUserFinder
	notifier *stubNotifier
	now      time.Time
}

func newCoworkersTest(t *testing.T, repo *stubCoworkersRepo) *coworkersTestHelper {
	t.Helper()
	users := &stubUserFinder{users: map[uuid.UUID]*models.User{}}
	notifier := &stubNotifier{}
	now := time.Date(2026, 5, 6, 11, 0, 0, 0, time.UTC)
	svc, err := NewService(repo, fakeTxRunner{}, users, notifier, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &coworkersTestHelper{svc: svc, repo: repo, users: users, notifier: notifier, now: now}
}

func activeOrder() *models.Order {
	return &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusInProgress,
	}
}

func intPtr(v int) *int { return &v }

func TestInvite_createsPendingInviteAndNotifies(t *testing.T) {
	order := activeOrder()
	repo := &stubCoworkersRepo{order: order}
	helper := newCoworkersTest(t, repo)
	target := uuid.New()
	helper.users.users[target] = &models.User{ID: target, IsSeller: true}

	coworker, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   order.SellerID,
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeHourly,
		Rate:      decimal.NewFromInt(25),
		MaxHours:  intPtr(10),
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if coworker.Status != enums.CoworkerStatusPending {
		t.Fatalf("unexpected status: %s", coworker.Status)
	}
	if !coworker.InvitedAt.Equal(helper.now) {
		t.Fatalf("unexpected invite time: %s", coworker.InvitedAt)
	}
	if len(helper.notifier.notes) != 1 {
		t.Fatalf("expected invite note, got %d", len(helper.notifier.notes))
	}
	if helper.notifier.notes[0].Type != enums.NotificationTypeInvite {
		t.Fatalf("unexpected note type: %s", helper.notifier.notes[0].Type)
	}
}

func TestInvite_hourlyRequiresMaxHours(t *testing.T) {
	order := activeOrder()
	repo := &stubCoworkersRepo{order: order}
	helper := newCoworkersTest(t, repo)
	target := uuid.New()
	helper.users.users[target] = &models.User{ID: target, IsSeller: true}

	_, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   order.SellerID,
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeHourly,
		Rate:      decimal.NewFromInt(25),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvite_onlyOrderSellerMayInvite(t *testing.T) {
	order := activeOrder()
	repo := &stubCoworkersRepo{order: order}
	helper := newCoworkersTest(t, repo)
	target := uuid.New()
	helper.users.users[target] = &models.User{ID: target, IsSeller: true}

	_, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   uuid.New(),
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeFixed,
		Rate:      decimal.NewFromInt(100),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestInvite_nonSellerTargetRejected(t *testing.T) {
	order := activeOrder()
	repo := &stubCoworkersRepo{order: order}
	helper := newCoworkersTest(t, repo)
	target := uuid.New()
	helper.users.users[target] = &models.User{ID: target, IsSeller: false}

	_, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   order.SellerID,
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeFixed,
		Rate:      decimal.NewFromInt(100),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvite_pendingInviteIsUntouched(t *testing.T) {
	order := activeOrder()
	target := uuid.New()
	repo := &stubCoworkersRepo{
		order: order,
		coworker: &models.OrderCoworker{
			ID:       uuid.New(),
			OrderID:  order.ID,
			SellerID: target,
			Status:   enums.CoworkerStatusPending,
		},
	}
	helper := newCoworkersTest(t, repo)
	helper.users.users[target] = &models.User{ID: target, IsSeller: true}

	coworker, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   order.SellerID,
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeFixed,
		Rate:      decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if coworker.ID != repo.coworker.ID {
		t.Fatal("expected the existing invite returned")
	}
	if len(repo.updates) != 0 || repo.created != nil {
		t.Fatal("pending invite must not be rewritten")
	}
	if len(helper.notifier.notes) != 0 {
		t.Fatal("expected no duplicate invite notification")
	}
}

func TestInvite_rejectedInviteIsReopened(t *testing.T) {
	order := activeOrder()
	target := uuid.New()
	responded := time.Now()
	repo := &stubCoworkersRepo{
		order: order,
		coworker: &models.OrderCoworker{
			ID:          uuid.New(),
			OrderID:     order.ID,
			SellerID:    target,
			Status:      enums.CoworkerStatusRejected,
			RespondedAt: &responded,
		},
	}
	helper := newCoworkersTest(t, repo)
	helper.users.users[target] = &models.User{ID: target, IsSeller: true}

	coworker, err := helper.svc.Invite(context.Background(), InviteInput{
		OrderID:   order.ID,
		ActorID:   order.SellerID,
		SellerID:  target,
		PriceType: enums.CoworkerPriceTypeFixed,
		Rate:      decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if coworker.Status != enums.CoworkerStatusPending {
		t.Fatalf("expected reopened invite, got %s", coworker.Status)
	}
	if coworker.RespondedAt != nil {
		t.Fatal("expected the previous response cleared")
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(repo.updates))
	}
	if len(helper.notifier.notes) != 1 {
		t.Fatalf("expected re-invite notification, got %d", len(helper.notifier.notes))
	}
}

func TestRespond_acceptRecordsDecision(t *testing.T) {
	order := activeOrder()
	target := uuid.New()
	repo := &stubCoworkersRepo{
		order: order,
		coworker: &models.OrderCoworker{
			ID:       uuid.New(),
			OrderID:  order.ID,
			SellerID: target,
			Status:   enums.CoworkerStatusPending,
		},
	}
	helper := newCoworkersTest(t, repo)

	result, err := helper.svc.Respond(context.Background(), RespondInput{
		OrderID:  order.ID,
		SellerID: target,
		Accept:   true,
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if result.AlreadyResponded {
		t.Fatal("first response must not be flagged as repeated")
	}
	if result.Coworker.Status != enums.CoworkerStatusAccepted {
		t.Fatalf("unexpected status: %s", result.Coworker.Status)
	}
	if result.Coworker.RespondedAt == nil || !result.Coworker.RespondedAt.Equal(helper.now) {
		t.Fatal("expected response timestamp set")
	}
	if len(helper.notifier.notes) != 1 || helper.notifier.notes[0].UserID != order.SellerID {
		t.Fatalf("expected the primary seller notified, got %+v", helper.notifier.notes)
	}
}

func TestRespond_repeatResponseIsSignalledNotErrored(t *testing.T) {
	order := activeOrder()
	target := uuid.New()
	responded := time.Now()
	repo := &stubCoworkersRepo{
		order: order,
		coworker: &models.OrderCoworker{
			ID:          uuid.New(),
			OrderID:     order.ID,
			SellerID:    target,
			Status:      enums.CoworkerStatusAccepted,
			RespondedAt: &responded,
		},
	}
	helper := newCoworkersTest(t, repo)

	result, err := helper.svc.Respond(context.Background(), RespondInput{
		OrderID:  order.ID,
		SellerID: target,
		Accept:   false,
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !result.AlreadyResponded {
		t.Fatal("expected the repeat response flagged")
	}
	if result.Coworker.Status != enums.CoworkerStatusAccepted {
		t.Fatal("a repeat response must not change the recorded decision")
	}
	if len(repo.updates) != 0 {
		t.Fatal("expected no writes for a repeat response")
	}
	if len(helper.notifier.notes) != 0 {
		t.Fatal("expected no notification for a repeat response")
	}
}

func TestRespond_missingInviteIsNotFound(t *testing.T) {
	order := activeOrder()
	repo := &stubCoworkersRepo{order: order}
	helper := newCoworkersTest(t, repo)

	_, err := helper.svc.Respond(context.Background(), RespondInput{
		OrderID:  order.ID,
		SellerID: uuid.New(),
		Accept:   true,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
