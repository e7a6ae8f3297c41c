package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/mailer"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	items     []models.Notification
	created   []models.Notification
	createErr error
	markRead  notificationMarkResult
	markedAll int64
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubNotificationsRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return s.items, nil, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	return s.markRead, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return s.markedAll, nil
}

type stubDirectory struct {
	users map[uuid.UUID]*models.User
}

func (s *stubDirectory) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingSender struct {
	to      []string
	subject []string
	err     error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, html string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.subject = append(s.subject, subject)
	return nil
}

func TestMarkRead_missingNotificationIsNotFound(t *testing.T) {
	repo := &stubNotificationsRepo{markRead: notificationMarkResult{Found: false}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkRead_alreadyReadIsNoError(t *testing.T) {
	repo := &stubNotificationsRepo{markRead: notificationMarkResult{Found: true, Updated: false}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
}

func TestMarkAllRead_returnsCount(t *testing.T) {
	repo := &stubNotificationsRepo{markedAll: 3}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 3 {
		t.Fatalf("unexpected count: %d", count)
	}
}

func newDispatcherTest(t *testing.T, repo *stubNotificationsRepo, sender mailer.Sender, directory *stubDirectory) *Dispatcher {
	t.Helper()
	dispatcher, err := NewDispatcher(repo, sender, directory, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return dispatcher
}

func TestDispatch_persistsRecordAndSendsEmail(t *testing.T) {
	userID := uuid.New()
	repo := &stubNotificationsRepo{}
	sender := &recordingSender{}
	directory := &stubDirectory{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "seller@example.com"},
	}}
	dispatcher := newDispatcherTest(t, repo, sender, directory)

	dispatcher.Dispatch(context.Background(), Note{
		UserID:       userID,
		Role:         enums.UserRoleSeller,
		Type:         enums.NotificationTypeOrder,
		Title:        "New Order",
		Description:  "You received a new order.",
		EmailSubject: "You received a new order",
		EmailHTML:    "<p>You received a new order.</p>",
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.created))
	}
	if repo.created[0].TargetRole != enums.UserRoleSeller {
		t.Fatalf("unexpected target role: %s", repo.created[0].TargetRole)
	}
	if len(sender.to) != 1 || sender.to[0] != "seller@example.com" {
		t.Fatalf("unexpected email recipients: %v", sender.to)
	}
}

func TestDispatch_skipsEmailWithoutSubject(t *testing.T) {
	userID := uuid.New()
	repo := &stubNotificationsRepo{}
	sender := &recordingSender{}
	directory := &stubDirectory{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "buyer@example.com"},
	}}
	dispatcher := newDispatcherTest(t, repo, sender, directory)

	dispatcher.Dispatch(context.Background(), Note{
		UserID:      userID,
		Role:        enums.UserRoleBuyer,
		Type:        enums.NotificationTypeOrder,
		Title:       "Revision Request Sent",
		Description: "Your revision request was sent.",
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.created))
	}
	if len(sender.to) != 0 {
		t.Fatal("expected no email without a subject")
	}
}

func TestDispatch_failuresAreSwallowed(t *testing.T) {
	userID := uuid.New()
	repo := &stubNotificationsRepo{createErr: errors.New("insert failed")}
	sender := &recordingSender{err: errors.New("smtp down")}
	directory := &stubDirectory{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "buyer@example.com"},
	}}
	dispatcher := newDispatcherTest(t, repo, sender, directory)

	// Must not panic or surface anything.
	dispatcher.Dispatch(context.Background(), Note{
		UserID:       userID,
		Role:         enums.UserRoleBuyer,
		Type:         enums.NotificationTypePayment,
		Title:        "Payment Failed",
		Description:  "We could not capture payment.",
		EmailSubject: "Payment failed",
		EmailHTML:    "<p>We could not capture payment.</p>",
	})
}
