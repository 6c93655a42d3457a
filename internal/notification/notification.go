package notification

import (
	"errors"
	"time"
)

// Notification is a transactional-outbox row. It is inserted in the same
// database transaction as the state change that caused it, then delivered
// asynchronously; delivery failure never reaches the original caller.
type Notification struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Recipient string     `json:"recipient" gorm:"column:recipient;not null"` // username, resolved to email at send time
	Subject   string     `json:"subject" gorm:"not null"`
	Body      string     `json:"body" gorm:"not null"`
	Status    string     `json:"status" gorm:"column:status;default:pending"`
	Attempts  int        `json:"attempts" gorm:"default:0"`
	LastError *string    `json:"last_error,omitempty" gorm:"column:last_error"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	SentAt    *time.Time `json:"sent_at,omitempty" gorm:"column:sent_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

func New(recipient, subject, body string) *Notification {
	return &Notification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrRecipientUnknown     = errors.New("recipient has no known address")
)
