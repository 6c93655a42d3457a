package reservation

import (
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/room"
)

type ReserveDTO struct {
	RoomID     int64  `json:"room_id"`
	ForGroupID int64  `json:"for_group_id"`
	Reason     string `json:"reason"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

func (d *ReserveDTO) Validate() error {
	if d.RoomID <= 0 {
		return internal.NewValidationError("room_id is required", internal.ErrCodeValidationFailed)
	}
	if d.ForGroupID <= 0 {
		return internal.NewValidationError("for_group_id is required", internal.ErrCodeValidationFailed)
	}
	return validateInterval(d.StartTime, d.EndTime)
}

type DecideDTO struct {
	ReservationID int64  `json:"-"`
	Approve       bool   `json:"approve"`
	Reason        string `json:"reason"`
}

func (d *DecideDTO) Validate() error {
	if d.ReservationID <= 0 {
		return internal.NewValidationError("reservation id is required", internal.ErrCodeValidationFailed)
	}
	if !d.Approve && d.Reason == "" {
		return internal.NewValidationError("a reason is required when rejecting", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AvailabilityDTO struct {
	RoomID    int64  `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (d *AvailabilityDTO) Validate() error {
	return validateInterval(d.StartTime, d.EndTime)
}

func validateInterval(start, end string) error {
	s, err := time.Parse(room.TimestampLayout, start)
	if err != nil {
		return internal.NewValidationError("start_time must use YYYY-MM-DD HH:MM:SS", internal.ErrCodeInvalidInterval)
	}
	e, err := time.Parse(room.TimestampLayout, end)
	if err != nil {
		return internal.NewValidationError("end_time must use YYYY-MM-DD HH:MM:SS", internal.ErrCodeInvalidInterval)
	}
	if !e.After(s) {
		return internal.NewValidationError("end_time must be after start_time", internal.ErrCodeInvalidInterval)
	}
	return nil
}
