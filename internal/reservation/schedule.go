package reservation

import (
	"sort"
	"time"

	"github.com/adisurya/campushub/internal/room"
)

// Interval is a half-open [Start, End) pair of room.TimestampLayout stamps.
// The fixed-width encoding makes < and <= on the strings equivalent to
// comparing the instants they denote.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}

// Conflicts implements the scheduling conflict predicate: two half-open
// intervals collide iff s1 < e2 and s2 < e1. Touching endpoints do not
// conflict.
func Conflicts(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// BlockingIntervals collects everything that makes the room busy inside the
// window: hours outside open/close (including whole days the room is closed),
// recurring unavailable periods, and reservations that still block.
func BlockingIntervals(rm *room.Room, reservations []*Reservation, windowStart, windowEnd string) ([]Interval, error) {
	var blocks []Interval

	closed, err := closedHours(rm, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, closed...)

	periods, err := room.ParsePeriods(rm.UnavailablePeriods)
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		if p.Overlaps(windowStart, windowEnd) {
			blocks = append(blocks, Interval{Start: p.Start, End: p.End})
		}
	}

	for _, res := range reservations {
		if res.Blocks() && Conflicts(res.StartTime, res.EndTime, windowStart, windowEnd) {
			blocks = append(blocks, Interval{Start: res.StartTime, End: res.EndTime})
		}
	}

	return blocks, nil
}

// FreeIntervals returns the maximal sub-intervals of [windowStart, windowEnd)
// not covered by any block. The result is disjoint, ordered and non-empty;
// together with the clipped blocks it partitions the window exactly.
func FreeIntervals(windowStart, windowEnd string, blocks []Interval) []Interval {
	clipped := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		if b.Start < windowStart {
			b.Start = windowStart
		}
		if b.End > windowEnd {
			b.End = windowEnd
		}
		if !b.Empty() {
			clipped = append(clipped, b)
		}
	}
	sort.Slice(clipped, func(i, j int) bool {
		if clipped[i].Start != clipped[j].Start {
			return clipped[i].Start < clipped[j].Start
		}
		return clipped[i].End < clipped[j].End
	})

	var free []Interval
	cursor := windowStart
	for _, b := range clipped {
		if cursor < b.Start {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < windowEnd {
		free = append(free, Interval{Start: cursor, End: windowEnd})
	}
	return free
}

// closedHours expands the room's recurring open/close schedule into concrete
// blocking intervals for every calendar day the window touches. A day whose
// weekday is not in the available-days set is blocked whole.
func closedHours(rm *room.Room, windowStart, windowEnd string) ([]Interval, error) {
	ws, err := time.Parse(room.TimestampLayout, windowStart)
	if err != nil {
		return nil, err
	}
	we, err := time.Parse(room.TimestampLayout, windowEnd)
	if err != nil {
		return nil, err
	}

	var blocks []Interval
	day := time.Date(ws.Year(), ws.Month(), ws.Day(), 0, 0, 0, 0, ws.Location())
	for !day.After(we) {
		date := day.Format("2006-01-02")
		dayStart := date + " 00:00:00"
		next := day.AddDate(0, 0, 1)
		dayEnd := next.Format("2006-01-02") + " 00:00:00"

		if !room.DaysContain(rm.AvailableDays, room.Weekday(day)) {
			blocks = append(blocks, Interval{Start: dayStart, End: dayEnd})
		} else {
			opens := date + " " + rm.OpenTime
			closes := date + " " + rm.CloseTime
			if dayStart < opens {
				blocks = append(blocks, Interval{Start: dayStart, End: opens})
			}
			if closes < dayEnd {
				blocks = append(blocks, Interval{Start: closes, End: dayEnd})
			}
		}
		day = next
	}
	return blocks, nil
}
