package reservation

import (
	"time"

	"github.com/adisurya/campushub/internal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reservation timestamps are stored in the fixed-width room.TimestampLayout
// encoding, so interval comparisons stay lexicographic end to end. State
// moves pending -> approved/rejected once, by an admin; the requester may
// delete the row at any point instead.
type Reservation struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	RoomID         int64      `json:"room_id" gorm:"column:room_id;not null;index"`
	Username       string     `json:"username" gorm:"column:username;not null;index"`
	ForGroupID     int64      `json:"for_group_id" gorm:"column:for_group_id;not null"`
	Reason         string     `json:"reason" gorm:"column:reason"`
	StartTime      string     `json:"start_time" gorm:"column:start_time;not null"`
	EndTime        string     `json:"end_time" gorm:"column:end_time;not null"`
	Status         string     `json:"status" gorm:"column:status;default:pending"`
	DecidedBy      string     `json:"decided_by,omitempty" gorm:"column:decided_by"`
	DecidedAt      *time.Time `json:"decided_at,omitempty" gorm:"column:decided_at"`
	DecisionReason string     `json:"decision_reason,omitempty" gorm:"column:decision_reason"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Blocks reports whether the reservation occupies its slot against new
// requests. Rejected reservations never block; pending ones do, so two
// competing requests cannot both sit pending on the same slot.
func (r *Reservation) Blocks() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

func (r *Reservation) IsDecided() bool {
	return r.Status != StatusPending
}

var (
	ErrNotRequester   = internal.NewForbiddenError("only the requester may cancel a reservation", internal.ErrCodeNotRequester)
	ErrAlreadyDecided = internal.NewConflictError("reservation has already been decided", internal.ErrCodeAlreadyDecided)
)
