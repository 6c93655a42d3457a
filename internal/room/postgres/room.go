package postgres

import (
	"errors"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/room"
	"gorm.io/gorm"
)

// RoomRepository implements the room.Repository interface using GORM
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) room.Repository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(rm *room.Room) error {
	return r.db.Create(rm).Error
}

func (r *RoomRepository) GetByID(id int64) (*room.Room, error) {
	var rm room.Room
	err := r.db.Where("id = ?", id).First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) Update(rm *room.Room) error {
	return r.db.Save(rm).Error
}

func (r *RoomRepository) ListAll() ([]*room.Room, error) {
	var rooms []*room.Room
	err := r.db.Order("id ASC").Find(&rooms).Error
	return rooms, err
}

func (r *RoomRepository) ListActiveRefs() ([]room.Ref, error) {
	var rooms []room.Room
	err := r.db.Select("id", "name").
		Where("status = ?", room.StatusActive).
		Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	refs := make([]room.Ref, 0, len(rooms))
	for _, rm := range rooms {
		refs = append(refs, room.Ref{ID: rm.ID, Name: rm.Name})
	}
	return refs, nil
}
