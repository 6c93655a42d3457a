package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/core/clock"
	"github.com/adisurya/campushub/internal/core/events"
	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/notification"
	"github.com/adisurya/campushub/internal/room"
)

// Repository persists reservations. Admit runs the final admission checks
// and the insert atomically: it locks the room row, hands the room and its
// still-blocking reservations to validate, and only inserts the reservation
// plus its outbox row if validate passes. Two concurrent requests for the
// same slot therefore serialize, and the loser sees the winner's row.
type Repository interface {
	Admit(res *Reservation, note *notification.Notification, validate func(rm *room.Room, blocking []*Reservation) error) error
	GetByID(id int64) (*Reservation, error)
	Decide(id int64, decidedBy, status, reason string, decidedAt time.Time, note *notification.Notification) error
	Delete(id int64) error
	ListByUser(username string) ([]*Reservation, error)
	ListByRoom(roomID int64) ([]*Reservation, error)
	ListPending() ([]*Reservation, error)
	ListBlockingOverlapping(roomID int64, start, end string) ([]*Reservation, error)
	HasBlockingConflict(roomID int64, start, end string) (bool, error)
}

// RoomSource is the slice of the room registry the scheduler reads.
type RoomSource interface {
	GetActiveRoom(roomID int64) (*room.Room, error)
	ListActiveRooms() ([]*room.Room, error)
}

// PermissionEvaluator gates who may reserve in a group's name and who may
// decide.
type PermissionEvaluator interface {
	HasPostPermission(username string, groupID int64, action group.PostAction) (bool, error)
	HasCapability(username, capability string) (bool, error)
}

type Service struct {
	repo        Repository
	rooms       RoomSource
	perms       PermissionEvaluator
	bus         *events.EventBus
	clock       clock.Clock
	logger      *slog.Logger
	maxDuration time.Duration
}

func NewService(repo Repository, rooms RoomSource, perms PermissionEvaluator, bus *events.EventBus, clk clock.Clock, logger *slog.Logger, maxDuration time.Duration) *Service {
	if maxDuration <= 0 {
		maxDuration = 3 * time.Hour
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		repo:        repo,
		rooms:       rooms,
		perms:       perms,
		bus:         bus,
		clock:       clk,
		logger:      logger,
		maxDuration: maxDuration,
	}
}

// Reserve admits a new request. Checks run in a fixed order and the first
// failure wins: posting rights, duration ceiling, then room existence,
// weekday availability, blackout periods and conflicts inside the admission
// transaction. The notification is an outbox row written in that same
// transaction; its delivery can fail without touching the reservation.
func (s *Service) Reserve(ctx context.Context, username string, dto ReserveDTO) (*Reservation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	allowed, err := s.perms.HasPostPermission(username, dto.ForGroupID, group.ActionRoomReservation)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrNoPostPermission
	}

	start, _ := time.Parse(room.TimestampLayout, dto.StartTime)
	end, _ := time.Parse(room.TimestampLayout, dto.EndTime)
	if end.Sub(start) > s.maxDuration {
		return nil, internal.NewValidationError(
			fmt.Sprintf("reservations may not exceed %s", s.maxDuration),
			internal.ErrCodeInvalidInterval)
	}

	res := &Reservation{
		RoomID:     dto.RoomID,
		Username:   username,
		ForGroupID: dto.ForGroupID,
		Reason:     dto.Reason,
		StartTime:  dto.StartTime,
		EndTime:    dto.EndTime,
		Status:     StatusPending,
		CreatedAt:  s.clock.Now(),
	}
	note := notification.New(username,
		"Reservation received",
		fmt.Sprintf("Your reservation for %s to %s was received and is pending approval.", dto.StartTime, dto.EndTime))

	err = s.repo.Admit(res, note, func(rm *room.Room, blocking []*Reservation) error {
		if !room.DaysContain(rm.AvailableDays, weekdayOf(start)) ||
			!room.DaysContain(rm.AvailableDays, weekdayOf(end)) {
			return internal.NewValidationError("room is not available on the specified days", internal.ErrCodeInvalidInterval)
		}

		periods, err := room.ParsePeriods(rm.UnavailablePeriods)
		if err != nil {
			return internal.NewInternalError("room has malformed unavailable periods", err)
		}
		for _, p := range periods {
			if p.Overlaps(dto.StartTime, dto.EndTime) {
				return internal.ErrRoomUnavailable
			}
		}

		for _, other := range blocking {
			if other.Blocks() && Conflicts(other.StartTime, other.EndTime, dto.StartTime, dto.EndTime) {
				return internal.ErrRoomUnavailable
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, events.NewReservationCreated(res.ID, res.RoomID, note.ID, username)); err != nil {
		s.logger.Error("reservation event publish failed", "reservation_id", res.ID, "error", err)
	}

	s.logger.Info("reservation created",
		"reservation_id", res.ID,
		"room_id", res.RoomID,
		"username", username,
		"start", dto.StartTime,
		"end", dto.EndTime)
	return res, nil
}

// Cancel removes a reservation entirely, whatever its state. Only the
// original requester may cancel; admins approve or reject instead.
func (s *Service) Cancel(username string, reservationID int64) error {
	res, err := s.repo.GetByID(reservationID)
	if err != nil {
		return err
	}
	if res.Username != username {
		return ErrNotRequester
	}

	if err := s.repo.Delete(reservationID); err != nil {
		return err
	}

	s.logger.Info("reservation cancelled", "reservation_id", reservationID, "username", username)
	return nil
}

// Decide approves or rejects a pending reservation. The status update is
// conditional on the row still being pending, so a decision racing a cancel
// or another decision loses cleanly.
func (s *Service) Decide(ctx context.Context, requester string, dto DecideDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	isAdmin, err := s.isSchedulerAdmin(requester)
	if err != nil {
		return err
	}
	if !isAdmin {
		return internal.ErrNoCapability
	}

	res, err := s.repo.GetByID(dto.ReservationID)
	if err != nil {
		return err
	}
	if res.IsDecided() {
		return ErrAlreadyDecided
	}

	status := StatusRejected
	outcome := "rejected"
	if dto.Approve {
		status = StatusApproved
		outcome = "approved"
	}

	body := fmt.Sprintf("Your reservation for %s to %s was %s.", res.StartTime, res.EndTime, outcome)
	if dto.Reason != "" {
		body += " Reason: " + dto.Reason
	}
	note := notification.New(res.Username, "Reservation "+outcome, body)

	if err := s.repo.Decide(dto.ReservationID, requester, status, dto.Reason, s.clock.Now(), note); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, events.NewReservationDecided(res.ID, note.ID, res.Username, outcome)); err != nil {
		s.logger.Error("decision event publish failed", "reservation_id", res.ID, "error", err)
	}

	s.logger.Info("reservation decided",
		"reservation_id", dto.ReservationID,
		"outcome", outcome,
		"decided_by", requester)
	return nil
}

func (s *Service) GetMine(username string) ([]*Reservation, error) {
	return s.repo.ListByUser(username)
}

func (s *Service) ListForRoom(requester string, roomID int64) ([]*Reservation, error) {
	isAdmin, err := s.isSchedulerAdmin(requester)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrNoCapability
	}
	return s.repo.ListByRoom(roomID)
}

func (s *Service) ListPending(requester string) ([]*Reservation, error) {
	isAdmin, err := s.isSchedulerAdmin(requester)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrNoCapability
	}
	return s.repo.ListPending()
}

// AvailableTimesByRoom computes the free sub-intervals of a bounded window.
// The window is capped at the same ceiling as a reservation.
func (s *Service) AvailableTimesByRoom(dto AvailabilityDTO) ([]Interval, error) {
	if dto.RoomID <= 0 {
		return nil, internal.NewValidationError("room_id is required", internal.ErrCodeValidationFailed)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse(room.TimestampLayout, dto.StartTime)
	end, _ := time.Parse(room.TimestampLayout, dto.EndTime)
	if end.Sub(start) > s.maxDuration {
		return nil, internal.NewValidationError(
			fmt.Sprintf("availability windows may not exceed %s", s.maxDuration),
			internal.ErrCodeInvalidInterval)
	}

	rm, err := s.rooms.GetActiveRoom(dto.RoomID)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repo.ListBlockingOverlapping(dto.RoomID, dto.StartTime, dto.EndTime)
	if err != nil {
		return nil, internal.NewInternalError("availability lookup failed", err)
	}

	blocks, err := BlockingIntervals(rm, overlapping, dto.StartTime, dto.EndTime)
	if err != nil {
		return nil, err
	}
	return FreeIntervals(dto.StartTime, dto.EndTime, blocks), nil
}

// AvailableRoomsByTime returns the active rooms a candidate [start, end)
// could be booked into, using the same weekday, blackout and conflict
// predicates as admission.
func (s *Service) AvailableRoomsByTime(dto AvailabilityDTO) ([]room.Ref, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse(room.TimestampLayout, dto.StartTime)
	end, _ := time.Parse(room.TimestampLayout, dto.EndTime)
	if end.Sub(start) > s.maxDuration {
		return nil, internal.NewValidationError(
			fmt.Sprintf("availability windows may not exceed %s", s.maxDuration),
			internal.ErrCodeInvalidInterval)
	}

	rooms, err := s.rooms.ListActiveRooms()
	if err != nil {
		return nil, err
	}

	refs := make([]room.Ref, 0, len(rooms))
	for _, rm := range rooms {
		if !room.DaysContain(rm.AvailableDays, weekdayOf(start)) ||
			!room.DaysContain(rm.AvailableDays, weekdayOf(end)) {
			continue
		}

		periods, err := room.ParsePeriods(rm.UnavailablePeriods)
		if err != nil {
			s.logger.Error("room has malformed unavailable periods", "room_id", rm.ID, "error", err)
			continue
		}
		blocked := false
		for _, p := range periods {
			if p.Overlaps(dto.StartTime, dto.EndTime) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		conflict, err := s.repo.HasBlockingConflict(rm.ID, dto.StartTime, dto.EndTime)
		if err != nil {
			return nil, internal.NewInternalError("availability lookup failed", err)
		}
		if !conflict {
			refs = append(refs, room.Ref{ID: rm.ID, Name: rm.Name})
		}
	}
	return refs, nil
}

func (s *Service) isSchedulerAdmin(username string) (bool, error) {
	ok, err := s.perms.HasCapability(username, group.CapabilityRoomAdmin)
	if err != nil || ok {
		return ok, err
	}
	return s.perms.HasCapability(username, group.CapabilityGlobalAdmin)
}

func weekdayOf(t time.Time) int {
	return room.Weekday(t)
}
