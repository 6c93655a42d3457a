package room

import (
	"time"

	"github.com/adisurya/campushub/internal"
)

type CreateRoomDTO struct {
	Name               string              `json:"name"`
	OpenTime           string              `json:"open_time"`
	CloseTime          string              `json:"close_time"`
	AvailableDays      []int               `json:"available_days"`
	UnavailablePeriods []UnavailablePeriod `json:"unavailable_periods"`
}

func (d *CreateRoomDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("room name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Name) > 50 {
		return internal.NewValidationError("room name is too long", internal.ErrCodeNameTooLong)
	}
	if err := validateClock(d.OpenTime); err != nil {
		return err
	}
	if err := validateClock(d.CloseTime); err != nil {
		return err
	}
	if d.CloseTime <= d.OpenTime {
		return internal.NewValidationError("close time must be after open time", internal.ErrCodeInvalidInterval)
	}
	if len(d.AvailableDays) == 0 {
		return internal.NewValidationError("at least one available day is required", internal.ErrCodeValidationFailed)
	}
	for _, day := range d.AvailableDays {
		if day < 1 || day > 7 {
			return internal.NewValidationError("available days must be between 1 and 7", internal.ErrCodeValidationFailed)
		}
	}
	return validatePeriods(d.UnavailablePeriods)
}

// ModifyRoomDTO carries a partial update; nil fields are left untouched.
type ModifyRoomDTO struct {
	RoomID             int64                `json:"-"`
	Name               *string              `json:"name,omitempty"`
	OpenTime           *string              `json:"open_time,omitempty"`
	CloseTime          *string              `json:"close_time,omitempty"`
	AvailableDays      *[]int               `json:"available_days,omitempty"`
	UnavailablePeriods *[]UnavailablePeriod `json:"unavailable_periods,omitempty"`
}

func (d *ModifyRoomDTO) Validate() error {
	if d.RoomID <= 0 {
		return internal.NewValidationError("room id is required", internal.ErrCodeValidationFailed)
	}
	if d.Name != nil {
		if *d.Name == "" {
			return internal.NewValidationError("room name cannot be empty", internal.ErrCodeValidationFailed)
		}
		if len(*d.Name) > 50 {
			return internal.NewValidationError("room name is too long", internal.ErrCodeNameTooLong)
		}
	}
	if d.OpenTime != nil {
		if err := validateClock(*d.OpenTime); err != nil {
			return err
		}
	}
	if d.CloseTime != nil {
		if err := validateClock(*d.CloseTime); err != nil {
			return err
		}
	}
	if d.AvailableDays != nil {
		for _, day := range *d.AvailableDays {
			if day < 1 || day > 7 {
				return internal.NewValidationError("available days must be between 1 and 7", internal.ErrCodeValidationFailed)
			}
		}
	}
	if d.UnavailablePeriods != nil {
		return validatePeriods(*d.UnavailablePeriods)
	}
	return nil
}

func validateClock(v string) error {
	if _, err := time.Parse(ClockLayout, v); err != nil {
		return internal.NewValidationError("times must use HH:MM:SS", internal.ErrCodeInvalidInterval)
	}
	return nil
}

func validatePeriods(periods []UnavailablePeriod) error {
	// round-trip through the codec validates each stamp
	_, err := ParsePeriods(EncodePeriods(periods))
	return err
}
