// Package schedule places duration-bearing subtasks into a multi-day work
// calendar: greedy, left-to-right, first fit, stable in input order. Weekends
// are skipped, the lunch window is never booked, and the placement cursor only
// moves forward, so one invocation can never double-book a slot.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/me/flowplan/internal/planner"
	"github.com/me/flowplan/pkg/model"
)

// ErrUnschedulable is returned when a single candidate can never fit a work
// day under the lunch-relocation rule, no matter how many days the cursor
// advances.
var ErrUnschedulable = errors.New("duration exceeds schedulable work window")

const dateLayout = "2006-01-02"

// maxDayAdvance caps cursor date movement for one invocation. The fail-fast
// check below makes the cap unreachable in practice; it exists so a future
// rule change cannot turn the retry loop into a spin.
const maxDayAdvance = 366

// Schedule places candidates in input order starting at startDate, honoring
// the work-hours window and the fixed 12:00-13:00 lunch break. Candidates with
// blank titles are dropped. A candidate with a valid dateStr hint after the
// cursor restarts the cursor at that date's next workday, at work start; hints
// at or before the cursor date are ignored, keeping the cursor forward-only.
// The timezone label is copied through verbatim.
//
// It returns either the complete placed-event list or an error; never a
// partial result.
func Schedule(tasks []model.Subtask, startDate, workHoursSpec, timezone string) ([]model.PlacedEvent, error) {
	hours := ParseWorkHours(workHoursSpec)

	day, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	day = NextWorkday(day)
	cursor := hours.Start

	events := make([]model.PlacedEvent, 0, len(tasks))
	advanced := 0

	for i, task := range tasks {
		title := strings.TrimSpace(task.Text)
		if title == "" {
			continue
		}
		durHours := planner.NormalizeHours(task.Duration)
		durMin := durHours * 60

		if task.DateStr != "" {
			if hint, err := time.Parse(dateLayout, task.DateStr); err == nil {
				// A hint may only pull the cursor forward. Jumping back to a
				// day that already holds events would double-book its slots.
				if hint = NextWorkday(hint); hint.After(day) {
					day = hint
					cursor = hours.Start
				}
			}
			// malformed hints are ignored; the cursor continues as-is
		}

		for {
			day = NextWorkday(day)
			if start, end, ok := hours.TryPlace(cursor, durMin); ok {
				id := task.ID
				if id == 0 {
					id = i + 1
				}
				events = append(events, model.PlacedEvent{
					ID:       id,
					Title:    title,
					DateStr:  day.Format(dateLayout),
					Start:    formatClock(start),
					End:      formatClock(end),
					Duration: durHours,
					Timezone: timezone,
				})
				cursor = end
				if cursor >= hours.End {
					day = day.AddDate(0, 0, 1)
					cursor = hours.Start
				}
				break
			}

			if cursor == hours.Start {
				// A fresh day at work start is the best slot any future day
				// can offer; failing here means the candidate never fits.
				return nil, fmt.Errorf("task %q (%dh in %s): %w",
					title, durHours, hours, ErrUnschedulable)
			}

			day = day.AddDate(0, 0, 1)
			cursor = hours.Start
			advanced++
			if advanced > maxDayAdvance {
				return nil, fmt.Errorf("task %q: gave up after %d days: %w",
					title, maxDayAdvance, ErrUnschedulable)
			}
		}
	}
	return events, nil
}
