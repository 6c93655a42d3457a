package postgres

import (
	"time"

	"github.com/adisurya/campushub/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetByID(id int64) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListPending(limit int) ([]*notification.Notification, error) {
	var rows []*notification.Notification
	err := r.db.Where("status = ?", notification.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *NotificationRepository) MarkSent(id int64, sentAt time.Time) error {
	return r.db.Model(&notification.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  notification.StatusSent,
			"sent_at": sentAt,
		}).Error
}

func (r *NotificationRepository) MarkFailed(id int64, attempts int, lastError string, final bool) error {
	status := notification.StatusPending
	if final {
		status = notification.StatusFailed
	}
	return r.db.Model(&notification.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": lastError,
		}).Error
}
