package reservation_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/core/clock"
	"github.com/adisurya/campushub/internal/core/events"
	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/notification"
	"github.com/adisurya/campushub/internal/reservation"
	"github.com/adisurya/campushub/internal/room"
)

func TestReservationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reservation Service Suite")
}

// fakeStore backs both the reservation repository and the room source so
// admission tests exercise the same data the scheduler would see.
type fakeStore struct {
	rooms        map[int64]*room.Room
	reservations map[int64]*reservation.Reservation
	outbox       []*notification.Notification
	nextResID    int64
	nextNoteID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        make(map[int64]*room.Room),
		reservations: make(map[int64]*reservation.Reservation),
		nextResID:    1,
		nextNoteID:   1,
	}
}

func (f *fakeStore) Admit(res *reservation.Reservation, note *notification.Notification, validate func(rm *room.Room, blocking []*reservation.Reservation) error) error {
	rm, ok := f.rooms[res.RoomID]
	if !ok || !rm.IsActive() {
		return internal.ErrRoomNotFound
	}

	var blocking []*reservation.Reservation
	for _, other := range f.reservations {
		if other.RoomID == res.RoomID && other.Blocks() &&
			reservation.Conflicts(other.StartTime, other.EndTime, res.StartTime, res.EndTime) {
			blocking = append(blocking, other)
		}
	}

	if err := validate(rm, blocking); err != nil {
		return err
	}

	res.ID = f.nextResID
	f.nextResID++
	f.reservations[res.ID] = res
	note.ID = f.nextNoteID
	f.nextNoteID++
	f.outbox = append(f.outbox, note)
	return nil
}

func (f *fakeStore) GetByID(id int64) (*reservation.Reservation, error) {
	res, ok := f.reservations[id]
	if !ok {
		return nil, internal.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeStore) Decide(id int64, decidedBy, status, reason string, decidedAt time.Time, note *notification.Notification) error {
	res, ok := f.reservations[id]
	if !ok {
		return internal.ErrReservationNotFound
	}
	if res.Status != reservation.StatusPending {
		return reservation.ErrAlreadyDecided
	}
	res.Status = status
	res.DecidedBy = decidedBy
	res.DecidedAt = &decidedAt
	res.DecisionReason = reason
	note.ID = f.nextNoteID
	f.nextNoteID++
	f.outbox = append(f.outbox, note)
	return nil
}

func (f *fakeStore) Delete(id int64) error {
	if _, ok := f.reservations[id]; !ok {
		return internal.ErrReservationNotFound
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeStore) ListByUser(username string) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range f.reservations {
		if res.Username == username {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByRoom(roomID int64) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range f.reservations {
		if res.RoomID == roomID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPending() ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range f.reservations {
		if res.Status == reservation.StatusPending {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBlockingOverlapping(roomID int64, start, end string) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range f.reservations {
		if res.RoomID == roomID && res.Blocks() &&
			reservation.Conflicts(res.StartTime, res.EndTime, start, end) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) HasBlockingConflict(roomID int64, start, end string) (bool, error) {
	out, _ := f.ListBlockingOverlapping(roomID, start, end)
	return len(out) > 0, nil
}

func (f *fakeStore) GetActiveRoom(roomID int64) (*room.Room, error) {
	rm, ok := f.rooms[roomID]
	if !ok || !rm.IsActive() {
		return nil, internal.ErrRoomNotFound
	}
	return rm, nil
}

func (f *fakeStore) ListActiveRooms() ([]*room.Room, error) {
	var out []*room.Room
	for _, rm := range f.rooms {
		if rm.IsActive() {
			out = append(out, rm)
		}
	}
	return out, nil
}

type fakePerms struct {
	reservers map[string]int64 // username -> group they may reserve for
	admins    map[string]bool
}

func (f *fakePerms) HasPostPermission(username string, groupID int64, action group.PostAction) (bool, error) {
	return action == group.ActionRoomReservation && f.reservers[username] == groupID, nil
}

func (f *fakePerms) HasCapability(username, capability string) (bool, error) {
	return f.admins[username], nil
}

var _ = Describe("Reservation Service", func() {
	var (
		store *fakeStore
		clk   *clock.Fake
		svc   *reservation.Service
		ctx   context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Monday 2024-06-03 is day 2 in the Sunday=1 encoding.
	reserveDTO := func(start, end string) reservation.ReserveDTO {
		return reservation.ReserveDTO{
			RoomID:     1,
			ForGroupID: 10,
			Reason:     "study session",
			StartTime:  start,
			EndTime:    end,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = newFakeStore()
		store.rooms[1] = &room.Room{
			ID:            1,
			Name:          "Lab A",
			OpenTime:      "09:00:00",
			CloseTime:     "18:00:00",
			AvailableDays: "2,3,4,5,6",
			Status:        room.StatusActive,
		}
		perms := &fakePerms{
			reservers: map[string]int64{"alice": 10, "bob": 10},
			admins:    map[string]bool{"root": true},
		}
		clk = clock.NewFake(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
		bus := events.NewEventBus(testLogger)
		svc = reservation.NewService(store, store, perms, bus, clk, testLogger, 3*time.Hour)
	})

	Describe("Reserve admission order", func() {
		It("rejects users without room-reservation rights first", func() {
			dto := reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00")
			dto.ForGroupID = 99
			_, err := svc.Reserve(ctx, "alice", dto)
			Expect(err).To(MatchError(internal.ErrNoPostPermission))
		})

		It("rejects 3h01m before any conflict check", func() {
			// no room with id 2 exists; the ceiling must fire first
			dto := reserveDTO("2024-06-03 10:00:00", "2024-06-03 13:01:00")
			dto.RoomID = 2
			_, err := svc.Reserve(ctx, "alice", dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("accepts exactly 3 hours", func() {
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 13:00:00"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown and retired rooms with not found", func() {
			dto := reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00")
			dto.RoomID = 2
			_, err := svc.Reserve(ctx, "alice", dto)
			Expect(err).To(MatchError(internal.ErrRoomNotFound))

			store.rooms[1].Status = room.StatusRetired
			_, err = svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).To(MatchError(internal.ErrRoomNotFound))
		})

		It("gates on the weekday regardless of time of day", func() {
			// Sunday 2024-06-02 is day 1, Saturday 2024-06-08 is day 7
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-02 10:00:00", "2024-06-02 11:00:00"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			_, err = svc.Reserve(ctx, "alice", reserveDTO("2024-06-08 10:00:00", "2024-06-08 11:00:00"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects requests overlapping a blackout period", func() {
			store.rooms[1].UnavailablePeriods = "2024-06-03 10:30:00-2024-06-03 11:30:00"
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).To(MatchError(internal.ErrRoomUnavailable))
		})

		It("rejects overlap with an existing request and accepts a touching one", func() {
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:30:00", "2024-06-03 11:30:00"))
			Expect(err).To(MatchError(internal.ErrRoomUnavailable))

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 11:00:00", "2024-06-03 12:00:00"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets a pending reservation block, but not a rejected one", func() {
			res, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(reservation.StatusPending))

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).To(MatchError(internal.ErrRoomUnavailable))

			Expect(svc.Decide(ctx, "root", reservation.DecideDTO{
				ReservationID: res.ID,
				Approve:       false,
				Reason:        "double booked",
			})).To(Succeed())

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("writes the outbox notification alongside the reservation", func() {
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.outbox).To(HaveLen(1))
			Expect(store.outbox[0].Recipient).To(Equal("alice"))
			Expect(store.outbox[0].Status).To(Equal(notification.StatusPending))
		})
	})

	Describe("Decide", func() {
		var resID int64

		BeforeEach(func() {
			res, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
			resID = res.ID
		})

		It("requires an admin", func() {
			err := svc.Decide(ctx, "alice", reservation.DecideDTO{ReservationID: resID, Approve: true})
			Expect(err).To(MatchError(internal.ErrNoCapability))
		})

		It("records decider, time and reason on approval", func() {
			Expect(svc.Decide(ctx, "root", reservation.DecideDTO{
				ReservationID: resID,
				Approve:       true,
				Reason:        "ok",
			})).To(Succeed())

			res, err := svc.GetMine("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(HaveLen(1))
			Expect(res[0].Status).To(Equal(reservation.StatusApproved))
			Expect(res[0].DecidedBy).To(Equal("root"))
			Expect(res[0].DecidedAt).NotTo(BeNil())
			Expect(res[0].DecidedAt.Equal(clk.Now())).To(BeTrue())
		})

		It("requires a reason to reject", func() {
			err := svc.Decide(ctx, "root", reservation.DecideDTO{ReservationID: resID, Approve: false})
			Expect(err).To(HaveOccurred())
		})

		It("never decides twice", func() {
			Expect(svc.Decide(ctx, "root", reservation.DecideDTO{ReservationID: resID, Approve: true})).To(Succeed())
			err := svc.Decide(ctx, "root", reservation.DecideDTO{ReservationID: resID, Approve: true})
			Expect(err).To(MatchError(reservation.ErrAlreadyDecided))
		})
	})

	Describe("Cancel", func() {
		var resID int64

		BeforeEach(func() {
			res, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
			resID = res.ID
		})

		It("is restricted to the requester, even against admins", func() {
			Expect(svc.Cancel("bob", resID)).To(MatchError(reservation.ErrNotRequester))
			Expect(svc.Cancel("root", resID)).To(MatchError(reservation.ErrNotRequester))
			Expect(svc.Cancel("alice", resID)).To(Succeed())
		})

		It("works after a decision and frees the slot", func() {
			Expect(svc.Decide(ctx, "root", reservation.DecideDTO{ReservationID: resID, Approve: true})).To(Succeed())
			Expect(svc.Cancel("alice", resID)).To(Succeed())

			_, err := svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Availability queries", func() {
		It("caps the window at the reservation ceiling", func() {
			_, err := svc.AvailableTimesByRoom(reservation.AvailabilityDTO{
				RoomID:    1,
				StartTime: "2024-06-03 09:00:00",
				EndTime:   "2024-06-03 13:00:00",
			})
			Expect(err).To(HaveOccurred())
		})

		It("returns free intervals around reservations", func() {
			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())

			free, err := svc.AvailableTimesByRoom(reservation.AvailabilityDTO{
				RoomID:    1,
				StartTime: "2024-06-03 09:30:00",
				EndTime:   "2024-06-03 12:00:00",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(free).To(Equal([]reservation.Interval{
				{Start: "2024-06-03 09:30:00", End: "2024-06-03 10:00:00"},
				{Start: "2024-06-03 11:00:00", End: "2024-06-03 12:00:00"},
			}))
		})

		It("lists rooms free for a candidate slot", func() {
			store.rooms[2] = &room.Room{
				ID:            2,
				Name:          "Lab B",
				OpenTime:      "09:00:00",
				CloseTime:     "18:00:00",
				AvailableDays: "2,3,4,5,6",
				Status:        room.StatusActive,
			}

			_, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())

			refs, err := svc.AvailableRoomsByTime(reservation.AvailabilityDTO{
				StartTime: "2024-06-03 10:30:00",
				EndTime:   "2024-06-03 11:30:00",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].Name).To(Equal("Lab B"))
		})

		It("excludes rooms closed on the candidate weekday", func() {
			refs, err := svc.AvailableRoomsByTime(reservation.AvailabilityDTO{
				StartTime: "2024-06-02 10:00:00", // Sunday
				EndTime:   "2024-06-02 11:00:00",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(BeEmpty())
		})
	})

	Describe("End to end lifecycle", func() {
		It("runs create, approve, conflict, cancel, re-reserve", func() {
			res, err := svc.Reserve(ctx, "alice", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(reservation.StatusPending))

			Expect(svc.Decide(ctx, "root", reservation.DecideDTO{
				ReservationID: res.ID,
				Approve:       true,
				Reason:        "ok",
			})).To(Succeed())

			stored, err := store.GetByID(res.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(reservation.StatusApproved))
			Expect(stored.DecidedBy).To(Equal("root"))

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).To(MatchError(internal.ErrRoomUnavailable))

			Expect(svc.Cancel("alice", res.ID)).To(Succeed())

			_, err = svc.Reserve(ctx, "bob", reserveDTO("2024-06-03 10:00:00", "2024-06-03 11:00:00"))
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
