package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/internal/mailer"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	"github.com/giglane/giglane-backend/pkg/logger"
)

// UserDirectory resolves recipient addresses for outbound email.
type UserDirectory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Note is one notification to deliver after a state transition committed.
// Email fields are optional; when empty only the in-app record is written.
type Note struct {
	UserID       uuid.UUID
	Role         enums.UserRole
	Type         enums.NotificationType
	Title        string
	Description  string
	Link         *string
	EmailSubject string
	EmailHTML    string
}

// Dispatcher fans out persisted notifications and emails. Every delivery is
// best-effort: failures are logged and never returned to the caller, so a
// committed transition cannot be rolled back by its side channel.
type Dispatcher struct {
	repo  Repository
	mail  mailer.Sender
	users UserDirectory
	logg  *logger.Logger
}

// NewDispatcher wires the side-effect fan-out.
func NewDispatcher(repo Repository, mail mailer.Sender, users UserDirectory, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{repo: repo, mail: mail, users: users, logg: logg}, nil
}

// Dispatch delivers each note in order.
func (d *Dispatcher) Dispatch(ctx context.Context, notes ...Note) {
	for _, note := range notes {
		d.deliver(ctx, note)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, note Note) {
	if note.UserID == uuid.Nil {
		return
	}
	ctx = d.logg.WithField(ctx, "notify_user_id", note.UserID.String())

	record := &models.Notification{
		UserID:      note.UserID,
		Title:       note.Title,
		Description: note.Description,
		Type:        note.Type,
		TargetRole:  note.Role,
		Link:        note.Link,
	}
	if err := d.repo.Create(ctx, record); err != nil {
		d.logg.Error(ctx, "persist notification failed", err)
	}

	if note.EmailSubject == "" {
		return
	}
	user, err := d.users.FindUser(ctx, note.UserID)
	if err != nil {
		d.logg.Error(ctx, "resolve notification recipient failed", err)
		return
	}
	if err := d.mail.Send(ctx, user.Email, note.EmailSubject, note.EmailHTML); err != nil {
		d.logg.Error(ctx, "send notification email failed", err)
	}
}
