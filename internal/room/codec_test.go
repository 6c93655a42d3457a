package room_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal/room"
)

var _ = Describe("Room codecs", func() {
	Describe("available days", func() {
		It("round-trips a sorted encoding", func() {
			Expect(room.EncodeDays([]int{5, 2, 3})).To(Equal("2,3,5"))
			Expect(room.ParseDays("2,3,5")).To(Equal([]int{2, 3, 5}))
		})

		It("tests membership", func() {
			Expect(room.DaysContain("2,3,4,5,6", 2)).To(BeTrue())
			Expect(room.DaysContain("2,3,4,5,6", 1)).To(BeFalse())
			Expect(room.DaysContain("2,3,4,5,6", 7)).To(BeFalse())
		})

		It("maps Sunday to 1 and Saturday to 7", func() {
			sunday := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
			saturday := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
			monday := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
			Expect(room.Weekday(sunday)).To(Equal(1))
			Expect(room.Weekday(saturday)).To(Equal(7))
			Expect(room.Weekday(monday)).To(Equal(2))
		})
	})

	Describe("unavailable periods", func() {
		It("round-trips the start-end encoding", func() {
			periods := []room.UnavailablePeriod{
				{Start: "2024-06-03 12:00:00", End: "2024-06-03 13:00:00"},
				{Start: "2024-06-04 09:00:00", End: "2024-06-04 10:30:00"},
			}
			encoded := room.EncodePeriods(periods)
			Expect(encoded).To(Equal("2024-06-03 12:00:00-2024-06-03 13:00:00,2024-06-04 09:00:00-2024-06-04 10:30:00"))

			decoded, err := room.ParsePeriods(encoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(periods))
		})

		It("decodes the empty string to no periods", func() {
			decoded, err := room.ParsePeriods("")
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(BeEmpty())
		})

		It("rejects malformed tokens", func() {
			_, err := room.ParsePeriods("2024-06-03-2024-06-04")
			Expect(err).To(HaveOccurred())
		})

		It("rejects inverted periods", func() {
			_, err := room.ParsePeriods("2024-06-03 13:00:00-2024-06-03 12:00:00")
			Expect(err).To(HaveOccurred())
		})

		It("detects overlap with half-open semantics", func() {
			p := room.UnavailablePeriod{Start: "2024-06-03 12:00:00", End: "2024-06-03 13:00:00"}
			Expect(p.Overlaps("2024-06-03 12:30:00", "2024-06-03 14:00:00")).To(BeTrue())
			Expect(p.Overlaps("2024-06-03 13:00:00", "2024-06-03 14:00:00")).To(BeFalse())
			Expect(p.Overlaps("2024-06-03 11:00:00", "2024-06-03 12:00:00")).To(BeFalse())
		})
	})
})
