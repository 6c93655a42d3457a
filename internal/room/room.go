package room

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adisurya/campushub/internal"
)

// TimestampLayout is the fixed-width encoding used inside unavailable
// periods. Being zero-padded, encoded stamps compare correctly as plain
// strings.
const TimestampLayout = "2006-01-02 15:04:05"

const stampLen = len(TimestampLayout)

// ClockLayout encodes a room's opening and closing time of day.
const ClockLayout = "15:04:05"

const (
	StatusActive  = "active"
	StatusRetired = "retired"
)

// Room holds declarative availability constraints only; all interval math
// over them lives in the reservation scheduler. AvailableDays is a
// comma-joined 1-7 encoding with Sunday as 1; UnavailablePeriods is a
// comma-joined list of "start-end" timestamp pairs.
type Room struct {
	ID                 int64  `json:"id" gorm:"primaryKey"`
	Name               string `json:"name" gorm:"uniqueIndex;not null"`
	OpenTime           string `json:"open_time" gorm:"column:open_time;not null"`
	CloseTime          string `json:"close_time" gorm:"column:close_time;not null"`
	AvailableDays      string `json:"available_days" gorm:"column:available_days;not null"`
	UnavailablePeriods string `json:"unavailable_periods" gorm:"column:unavailable_periods"`
	Status             string `json:"status" gorm:"column:status;default:active"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) IsActive() bool {
	return r.Status == StatusActive
}

// Ref is the id/name pair unprivileged callers see.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Weekday maps a timestamp into the stored 1-7 encoding, Sunday=1. The
// mapping must stay stable across the codebase or persisted available-days
// sets silently change meaning.
func Weekday(t time.Time) int {
	return int(t.Weekday()) + 1
}

// ---- available-days codec ----

func ParseDays(encoded string) []int {
	if encoded == "" {
		return nil
	}
	var days []int
	for _, tok := range strings.Split(encoded, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := strconv.Atoi(tok)
		if err != nil || d < 1 || d > 7 {
			continue
		}
		days = append(days, d)
	}
	return days
}

func EncodeDays(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	toks := make([]string, 0, len(sorted))
	for _, d := range sorted {
		toks = append(toks, strconv.Itoa(d))
	}
	return strings.Join(toks, ",")
}

func DaysContain(encoded string, day int) bool {
	for _, d := range ParseDays(encoded) {
		if d == day {
			return true
		}
	}
	return false
}

// ---- unavailable-periods codec ----

// UnavailablePeriod is one recurring blackout, a half-open [Start, End)
// pair of TimestampLayout stamps.
type UnavailablePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParsePeriods decodes a comma-joined "start-end" list. The separator dash
// also appears inside the dates, so each timestamp is sliced by its fixed
// width rather than split.
func ParsePeriods(encoded string) ([]UnavailablePeriod, error) {
	if encoded == "" {
		return nil, nil
	}
	var periods []UnavailablePeriod
	for _, tok := range strings.Split(encoded, ",") {
		if tok == "" {
			continue
		}
		if len(tok) != stampLen*2+1 || tok[stampLen] != '-' {
			return nil, internal.NewValidationError("malformed unavailable period", internal.ErrCodeInvalidInterval)
		}
		p := UnavailablePeriod{Start: tok[:stampLen], End: tok[stampLen+1:]}
		if _, err := time.Parse(TimestampLayout, p.Start); err != nil {
			return nil, internal.NewValidationError("malformed unavailable period", internal.ErrCodeInvalidInterval)
		}
		if _, err := time.Parse(TimestampLayout, p.End); err != nil {
			return nil, internal.NewValidationError("malformed unavailable period", internal.ErrCodeInvalidInterval)
		}
		if p.End <= p.Start {
			return nil, internal.NewValidationError("unavailable period must end after it starts", internal.ErrCodeInvalidInterval)
		}
		periods = append(periods, p)
	}
	return periods, nil
}

func EncodePeriods(periods []UnavailablePeriod) string {
	toks := make([]string, 0, len(periods))
	for _, p := range periods {
		toks = append(toks, p.Start+"-"+p.End)
	}
	return strings.Join(toks, ",")
}

// Overlaps reports whether the period intersects [start, end). Lexicographic
// comparison is correct because the stamps are fixed-width and zero-padded.
func (p UnavailablePeriod) Overlaps(start, end string) bool {
	return p.Start < end && start < p.End
}
