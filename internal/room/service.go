package room

import (
	"log/slog"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/group"
)

type Repository interface {
	Create(r *Room) error
	GetByID(id int64) (*Room, error)
	Update(r *Room) error
	ListAll() ([]*Room, error)
	ListActiveRefs() ([]Ref, error)
}

type CapabilityChecker interface {
	HasCapability(username, capability string) (bool, error)
}

type Service struct {
	repo   Repository
	caps   CapabilityChecker
	logger *slog.Logger
}

func NewService(repo Repository, caps CapabilityChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		caps:   caps,
		logger: logger,
	}
}

// isRoomAdmin accepts either the room-admin or the global-admin capability.
func (s *Service) isRoomAdmin(username string) (bool, error) {
	ok, err := s.caps.HasCapability(username, group.CapabilityRoomAdmin)
	if err != nil || ok {
		return ok, err
	}
	return s.caps.HasCapability(username, group.CapabilityGlobalAdmin)
}

func (s *Service) CreateRoom(requester string, dto CreateRoomDTO) (*Room, error) {
	isAdmin, err := s.isRoomAdmin(requester)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrNoCapability
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	r := &Room{
		Name:               dto.Name,
		OpenTime:           dto.OpenTime,
		CloseTime:          dto.CloseTime,
		AvailableDays:      EncodeDays(dto.AvailableDays),
		UnavailablePeriods: EncodePeriods(dto.UnavailablePeriods),
		Status:             StatusActive,
	}

	if err := s.repo.Create(r); err != nil {
		s.logger.Error("room creation failed", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create room", err)
	}

	s.logger.Info("room created", "room_id", r.ID, "name", r.Name, "by", requester)
	return r, nil
}

// ModifyRoom applies a partial update; fields absent from the DTO keep
// their stored value.
func (s *Service) ModifyRoom(requester string, dto ModifyRoomDTO) (*Room, error) {
	isAdmin, err := s.isRoomAdmin(requester)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrNoCapability
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(dto.RoomID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		r.Name = *dto.Name
	}
	if dto.OpenTime != nil {
		r.OpenTime = *dto.OpenTime
	}
	if dto.CloseTime != nil {
		r.CloseTime = *dto.CloseTime
	}
	if r.CloseTime <= r.OpenTime {
		return nil, internal.NewValidationError("close time must be after open time", internal.ErrCodeInvalidInterval)
	}
	if dto.AvailableDays != nil {
		r.AvailableDays = EncodeDays(*dto.AvailableDays)
	}
	if dto.UnavailablePeriods != nil {
		r.UnavailablePeriods = EncodePeriods(*dto.UnavailablePeriods)
	}

	if err := s.repo.Update(r); err != nil {
		return nil, internal.NewInternalError("failed to update room", err)
	}

	s.logger.Info("room updated", "room_id", r.ID, "by", requester)
	return r, nil
}

// RetireRoom marks the room unreservable without deleting its history.
func (s *Service) RetireRoom(requester string, roomID int64) error {
	isAdmin, err := s.isRoomAdmin(requester)
	if err != nil {
		return err
	}
	if !isAdmin {
		return internal.ErrNoCapability
	}

	r, err := s.repo.GetByID(roomID)
	if err != nil {
		return err
	}
	r.Status = StatusRetired

	if err := s.repo.Update(r); err != nil {
		return internal.NewInternalError("failed to retire room", err)
	}

	s.logger.Info("room retired", "room_id", roomID, "by", requester)
	return nil
}

// GetRooms returns full detail of every room for room/global admins, and
// id/name of active rooms for everyone else.
func (s *Service) GetRooms(requester string) (interface{}, error) {
	isAdmin, err := s.isRoomAdmin(requester)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		rooms, err := s.repo.ListAll()
		if err != nil {
			return nil, internal.NewInternalError("room listing failed", err)
		}
		return rooms, nil
	}

	refs, err := s.repo.ListActiveRefs()
	if err != nil {
		return nil, internal.NewInternalError("room listing failed", err)
	}
	return refs, nil
}

// GetActiveRoom fetches a room the scheduler may book into; retired rooms
// surface as not found.
func (s *Service) GetActiveRoom(roomID int64) (*Room, error) {
	r, err := s.repo.GetByID(roomID)
	if err != nil {
		return nil, err
	}
	if !r.IsActive() {
		return nil, internal.ErrRoomNotFound
	}
	return r, nil
}

// ListActiveRooms feeds the rooms-by-time availability query.
func (s *Service) ListActiveRooms() ([]*Room, error) {
	rooms, err := s.repo.ListAll()
	if err != nil {
		return nil, internal.NewInternalError("room listing failed", err)
	}
	active := rooms[:0]
	for _, r := range rooms {
		if r.IsActive() {
			active = append(active, r)
		}
	}
	return active, nil
}
