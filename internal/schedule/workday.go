package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Times of day are minutes since midnight. The calendar grid is hour-granular
// for task durations, but work windows may start or end on any minute.
const (
	lunchStart = 12 * 60
	lunchEnd   = 13 * 60
)

// WorkHours is the daily window in which tasks may be placed.
type WorkHours struct {
	Start int // minutes since midnight
	End   int
}

// DefaultWorkHours returns the 09:00-17:00 window.
func DefaultWorkHours() WorkHours {
	return WorkHours{Start: 9 * 60, End: 17 * 60}
}

// ParseWorkHours parses a "HH:MM-HH:MM" window. Malformed input or an inverted
// window falls back to the default; a bad configuration never fails a request.
func ParseWorkHours(spec string) WorkHours {
	from, to, ok := strings.Cut(spec, "-")
	if !ok {
		return DefaultWorkHours()
	}
	start, err1 := parseClock(strings.TrimSpace(from))
	end, err2 := parseClock(strings.TrimSpace(to))
	if err1 != nil || err2 != nil || start >= end {
		return DefaultWorkHours()
	}
	return WorkHours{Start: start, End: end}
}

// TryPlace computes the concrete interval for a block of durMin minutes whose
// cursor sits at startMin. A block that would intersect the lunch window is
// relocated wholesale to start at lunch end; blocks are never split. ok is
// false when the (possibly relocated) block does not finish inside the window.
func (w WorkHours) TryPlace(startMin, durMin int) (start, end int, ok bool) {
	start = startMin
	end = start + durMin
	if start < lunchEnd && end > lunchStart {
		start = lunchEnd
		end = start + durMin
	}
	if end > w.End {
		return 0, 0, false
	}
	return start, end, true
}

// String renders the window in the configuration format.
func (w WorkHours) String() string {
	return formatClock(w.Start) + "-" + formatClock(w.End)
}

// IsWorkday reports whether d falls on Monday through Friday.
func IsWorkday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextWorkday advances d one day at a time until it lands on a workday.
// Identity when d already is one.
func NextWorkday(d time.Time) time.Time {
	for !IsWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: out of range", s)
	}
	return h*60 + m, nil
}

func formatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
