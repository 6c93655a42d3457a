package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/adisurya/campushub/internal/core/events"
)

// Repository is the outbox's persistence surface. Enqueueing happens inside
// other modules' transactions (see their repositories); this side only reads
// and updates delivery state.
type Repository interface {
	GetByID(id int64) (*Notification, error)
	ListPending(limit int) ([]*Notification, error)
	MarkSent(id int64, sentAt time.Time) error
	MarkFailed(id int64, attempts int, lastError string, final bool) error
}

// Directory resolves a username to a deliverable address.
type Directory interface {
	GetEmailForUsername(username string) (string, error)
}

// Dispatcher drains the notification outbox. It is triggered two ways: an
// event-bus subscription for prompt delivery right after a commit, and the
// worker command's periodic drain that picks up anything the fast path
// missed (process restart, transient SMTP failure).
type Dispatcher struct {
	repo        Repository
	directory   Directory
	mailer      Mailer
	logger      *slog.Logger
	maxAttempts int
}

func NewDispatcher(repo Repository, directory Directory, mailer Mailer, logger *slog.Logger, maxAttempts int) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Dispatcher{
		repo:        repo,
		directory:   directory,
		mailer:      mailer,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// Dispatch attempts delivery of one outbox row. Errors are recorded on the
// row and logged; callers treat dispatch as fire-and-forget.
func (d *Dispatcher) Dispatch(ctx context.Context, id int64) {
	n, err := d.repo.GetByID(id)
	if err != nil {
		d.logger.Error("notification lookup failed", "notification_id", id, "error", err)
		return
	}
	if n.Status == StatusSent {
		return
	}

	d.deliver(ctx, n)
}

func (d *Dispatcher) deliver(ctx context.Context, n *Notification) {
	address, err := d.directory.GetEmailForUsername(n.Recipient)
	if err != nil {
		d.fail(n, ErrRecipientUnknown.Error())
		return
	}

	if err := d.mailer.Send(ctx, address, n.Subject, n.Body); err != nil {
		d.fail(n, err.Error())
		return
	}

	if err := d.repo.MarkSent(n.ID, time.Now()); err != nil {
		d.logger.Error("failed to mark notification sent", "notification_id", n.ID, "error", err)
		return
	}
	d.logger.Info("notification delivered", "notification_id", n.ID, "recipient", n.Recipient)
}

func (d *Dispatcher) fail(n *Notification, reason string) {
	attempts := n.Attempts + 1
	final := attempts >= d.maxAttempts
	if err := d.repo.MarkFailed(n.ID, attempts, reason, final); err != nil {
		d.logger.Error("failed to record notification failure", "notification_id", n.ID, "error", err)
	}
	if final {
		// log-and-drop after the retry budget is spent
		d.logger.Error("notification dropped after max attempts",
			"notification_id", n.ID,
			"recipient", n.Recipient,
			"attempts", attempts,
			"reason", reason)
		return
	}
	d.logger.Warn("notification delivery failed, will retry",
		"notification_id", n.ID,
		"attempts", attempts,
		"reason", reason)
}

// DrainOutbox delivers every pending row, oldest first.
func (d *Dispatcher) DrainOutbox(ctx context.Context, batchSize int) {
	if batchSize <= 0 {
		batchSize = 50
	}
	pending, err := d.repo.ListPending(batchSize)
	if err != nil {
		d.logger.Error("outbox listing failed", "error", err)
		return
	}
	for _, n := range pending {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.deliver(ctx, n)
	}
}

// Run blocks, draining the outbox on a fixed interval until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("outbox worker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			d.DrainOutbox(ctx, 50)
		}
	}
}

// HandleEvent is the event-bus subscription: any event carrying a
// notification id triggers an immediate delivery attempt.
func (d *Dispatcher) HandleEvent(ctx context.Context, event events.Event) error {
	id := events.NotificationID(event)
	if id == 0 {
		return nil
	}
	d.Dispatch(ctx, id)
	return nil
}
