package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationDecided = "reservation.decided"
	EventUserSignedUp       = "user.signed_up"
)

// NewReservationCreated is fired after the admission transaction commits.
// NotificationID points at the outbox row written inside that transaction.
func NewReservationCreated(reservationID, roomID, notificationID int64, username string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventReservationCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"reservation_id":  reservationID,
			"room_id":         roomID,
			"username":        username,
			"notification_id": notificationID,
		},
	}
}

func NewReservationDecided(reservationID, notificationID int64, username, outcome string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventReservationDecided,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"reservation_id":  reservationID,
			"username":        username,
			"outcome":         outcome,
			"notification_id": notificationID,
		},
	}
}

func NewUserSignedUp(username string, notificationID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserSignedUp,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"username":        username,
			"notification_id": notificationID,
		},
	}
}

// NotificationID extracts the outbox row id from an event payload, zero if
// the event carries none.
func NotificationID(e Event) int64 {
	data, ok := e.Payload().(map[string]interface{})
	if !ok {
		return 0
	}
	if id, ok := data["notification_id"].(int64); ok {
		return id
	}
	return 0
}
