package reservation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal/reservation"
	"github.com/adisurya/campushub/internal/room"
)

var _ = Describe("Interval math", func() {
	Describe("Conflicts", func() {
		It("detects overlapping intervals", func() {
			Expect(reservation.Conflicts(
				"2024-06-03 10:00:00", "2024-06-03 11:00:00",
				"2024-06-03 10:30:00", "2024-06-03 11:30:00")).To(BeTrue())
		})

		It("is symmetric", func() {
			Expect(reservation.Conflicts(
				"2024-06-03 10:30:00", "2024-06-03 11:30:00",
				"2024-06-03 10:00:00", "2024-06-03 11:00:00")).To(BeTrue())
		})

		It("treats touching intervals as conflict-free", func() {
			Expect(reservation.Conflicts(
				"2024-06-03 10:00:00", "2024-06-03 11:00:00",
				"2024-06-03 11:00:00", "2024-06-03 12:00:00")).To(BeFalse())
		})

		It("treats containment as a conflict", func() {
			Expect(reservation.Conflicts(
				"2024-06-03 10:00:00", "2024-06-03 12:00:00",
				"2024-06-03 10:30:00", "2024-06-03 11:00:00")).To(BeTrue())
		})
	})

	Describe("FreeIntervals", func() {
		const (
			ws = "2024-06-03 10:00:00"
			we = "2024-06-03 13:00:00"
		)

		It("returns the whole window when nothing blocks", func() {
			free := reservation.FreeIntervals(ws, we, nil)
			Expect(free).To(Equal([]reservation.Interval{{Start: ws, End: we}}))
		})

		It("punches holes for blocks inside the window", func() {
			blocks := []reservation.Interval{
				{Start: "2024-06-03 11:00:00", End: "2024-06-03 11:30:00"},
			}
			free := reservation.FreeIntervals(ws, we, blocks)
			Expect(free).To(Equal([]reservation.Interval{
				{Start: ws, End: "2024-06-03 11:00:00"},
				{Start: "2024-06-03 11:30:00", End: we},
			}))
		})

		It("merges overlapping blocks", func() {
			blocks := []reservation.Interval{
				{Start: "2024-06-03 10:30:00", End: "2024-06-03 11:30:00"},
				{Start: "2024-06-03 11:00:00", End: "2024-06-03 12:00:00"},
			}
			free := reservation.FreeIntervals(ws, we, blocks)
			Expect(free).To(Equal([]reservation.Interval{
				{Start: ws, End: "2024-06-03 10:30:00"},
				{Start: "2024-06-03 12:00:00", End: we},
			}))
		})

		It("clips blocks extending beyond the window", func() {
			blocks := []reservation.Interval{
				{Start: "2024-06-03 09:00:00", End: "2024-06-03 10:30:00"},
				{Start: "2024-06-03 12:30:00", End: "2024-06-03 15:00:00"},
			}
			free := reservation.FreeIntervals(ws, we, blocks)
			Expect(free).To(Equal([]reservation.Interval{
				{Start: "2024-06-03 10:30:00", End: "2024-06-03 12:30:00"},
			}))
		})

		It("returns nothing when the window is fully covered", func() {
			blocks := []reservation.Interval{{Start: ws, End: we}}
			Expect(reservation.FreeIntervals(ws, we, blocks)).To(BeEmpty())
		})

		It("partitions the window together with the blocked union", func() {
			blocks := []reservation.Interval{
				{Start: "2024-06-03 10:15:00", End: "2024-06-03 10:45:00"},
				{Start: "2024-06-03 11:00:00", End: "2024-06-03 11:30:00"},
				{Start: "2024-06-03 11:20:00", End: "2024-06-03 12:00:00"},
			}
			free := reservation.FreeIntervals(ws, we, blocks)

			// disjoint, ordered, non-empty
			for i, iv := range free {
				Expect(iv.Empty()).To(BeFalse())
				if i > 0 {
					Expect(free[i-1].End <= iv.Start).To(BeTrue())
				}
			}
			// no free interval intersects any block
			for _, iv := range free {
				for _, b := range blocks {
					Expect(reservation.Conflicts(iv.Start, iv.End, b.Start, b.End)).To(BeFalse())
				}
			}
			Expect(free).To(Equal([]reservation.Interval{
				{Start: "2024-06-03 10:00:00", End: "2024-06-03 10:15:00"},
				{Start: "2024-06-03 10:45:00", End: "2024-06-03 11:00:00"},
				{Start: "2024-06-03 12:00:00", End: "2024-06-03 13:00:00"},
			}))
		})
	})

	Describe("BlockingIntervals", func() {
		lab := &room.Room{
			ID:            1,
			Name:          "Lab A",
			OpenTime:      "09:00:00",
			CloseTime:     "18:00:00",
			AvailableDays: "2,3,4,5,6",
			Status:        room.StatusActive,
		}

		It("blocks hours outside open and close", func() {
			// Monday 2024-06-03, window crosses closing time
			blocks, err := reservation.BlockingIntervals(lab, nil,
				"2024-06-03 17:00:00", "2024-06-03 20:00:00")
			Expect(err).NotTo(HaveOccurred())

			free := reservation.FreeIntervals("2024-06-03 17:00:00", "2024-06-03 20:00:00", blocks)
			Expect(free).To(Equal([]reservation.Interval{
				{Start: "2024-06-03 17:00:00", End: "2024-06-03 18:00:00"},
			}))
		})

		It("blocks entire unavailable weekdays", func() {
			// Sunday 2024-06-02 is day 1, not in the set
			blocks, err := reservation.BlockingIntervals(lab, nil,
				"2024-06-02 10:00:00", "2024-06-02 12:00:00")
			Expect(err).NotTo(HaveOccurred())

			free := reservation.FreeIntervals("2024-06-02 10:00:00", "2024-06-02 12:00:00", blocks)
			Expect(free).To(BeEmpty())
		})

		It("includes blackout periods and blocking reservations", func() {
			withBlackout := *lab
			withBlackout.UnavailablePeriods = "2024-06-03 12:00:00-2024-06-03 12:30:00"

			existing := []*reservation.Reservation{
				{StartTime: "2024-06-03 10:00:00", EndTime: "2024-06-03 11:00:00", Status: reservation.StatusApproved},
				{StartTime: "2024-06-03 11:00:00", EndTime: "2024-06-03 11:15:00", Status: reservation.StatusRejected},
			}

			blocks, err := reservation.BlockingIntervals(&withBlackout, existing,
				"2024-06-03 10:00:00", "2024-06-03 13:00:00")
			Expect(err).NotTo(HaveOccurred())

			free := reservation.FreeIntervals("2024-06-03 10:00:00", "2024-06-03 13:00:00", blocks)
			Expect(free).To(Equal([]reservation.Interval{
				{Start: "2024-06-03 11:00:00", End: "2024-06-03 12:00:00"},
				{Start: "2024-06-03 12:30:00", End: "2024-06-03 13:00:00"},
			}))
		})
	})
})
