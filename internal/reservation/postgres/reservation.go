package postgres

import (
	"errors"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/notification"
	"github.com/adisurya/campushub/internal/reservation"
	"github.com/adisurya/campushub/internal/room"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationRepository implements the reservation.Repository interface
// using GORM
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &ReservationRepository{db: db}
}

var blockingStatuses = []string{reservation.StatusPending, reservation.StatusApproved}

// Admit closes the check-then-insert race: the room row is locked for the
// duration of the transaction on Postgres, so a concurrent admission for the
// same room waits here and then sees this reservation in its blocking set.
// SQLite serializes writers on its own and rejects FOR UPDATE.
func (r *ReservationRepository) Admit(res *reservation.Reservation, note *notification.Notification, validate func(rm *room.Room, blocking []*reservation.Reservation) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var rm room.Room
		err := q.Where("id = ? AND status = ?", res.RoomID, room.StatusActive).First(&rm).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrRoomNotFound
			}
			return err
		}

		var blocking []*reservation.Reservation
		err = tx.Where("room_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			res.RoomID, blockingStatuses, res.EndTime, res.StartTime).
			Find(&blocking).Error
		if err != nil {
			return err
		}

		if err := validate(&rm, blocking); err != nil {
			return err
		}

		if err := tx.Create(res).Error; err != nil {
			return err
		}
		return tx.Create(note).Error
	})
}

func (r *ReservationRepository) GetByID(id int64) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := r.db.Where("id = ?", id).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Decide flips a pending row to its final state and writes the outcome
// notification in the same transaction. The status guard in the WHERE
// clause makes a racing decision or cancellation lose cleanly.
func (r *ReservationRepository) Decide(id int64, decidedBy, status, reason string, decidedAt time.Time, note *notification.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&reservation.Reservation{}).
			Where("id = ? AND status = ?", id, reservation.StatusPending).
			Updates(map[string]interface{}{
				"status":          status,
				"decided_by":      decidedBy,
				"decided_at":      decidedAt,
				"decision_reason": reason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existing reservation.Reservation
			if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
				return internal.ErrReservationNotFound
			}
			return reservation.ErrAlreadyDecided
		}
		return tx.Create(note).Error
	})
}

func (r *ReservationRepository) Delete(id int64) error {
	res := r.db.Where("id = ?", id).Delete(&reservation.Reservation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByUser(username string) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	err := r.db.Where("username = ?", username).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *ReservationRepository) ListByRoom(roomID int64) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	err := r.db.Where("room_id = ?", roomID).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *ReservationRepository) ListPending() ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	err := r.db.Where("status = ?", reservation.StatusPending).
		Order("created_at ASC"). // FIFO for approvals
		Find(&out).Error
	return out, err
}

func (r *ReservationRepository) ListBlockingOverlapping(roomID int64, start, end string) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	err := r.db.Where("room_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
		roomID, blockingStatuses, end, start).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *ReservationRepository) HasBlockingConflict(roomID int64, start, end string) (bool, error) {
	var count int64
	err := r.db.Model(&reservation.Reservation{}).
		Where("room_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			roomID, blockingStatuses, end, start).
		Count(&count).Error
	return count > 0, err
}
