// Package ics serializes placed events into an iCalendar document. Timestamps
// are written as floating local time: the event's timezone label is
// informational and deliberately not encoded, matching what calendar
// applications expect from a plan that follows the user's own wall clock.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/me/flowplan/pkg/model"
)

const (
	prodID      = "-//FlowPlan//Scheduler//EN"
	uidDomain   = "flowplan.local"
	propCalName = "X-WR-CALNAME"
	stampLayout = "20060102T150405"
	parseLayout = "2006-01-02 15:04"
)

// now is stubbed in tests to pin DTSTAMP.
var now = time.Now

// Encode builds a VCALENDAR document (CRLF line endings) with one VEVENT per
// placed event. Summaries have line breaks collapsed before encoding so no
// record can break the line-oriented format.
func Encode(events []model.PlacedEvent, calendarName string) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	if calendarName != "" {
		cal.Props.SetText(propCalName, calendarName)
	}

	stamp := now().UTC()
	for _, ev := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, EventUID(ev))
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

		if err := setLocalDateTime(vevent, ical.PropDateTimeStart, ev.DateStr, ev.Start); err != nil {
			return "", fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if err := setLocalDateTime(vevent, ical.PropDateTimeEnd, ev.DateStr, ev.End); err != nil {
			return "", fmt.Errorf("event %d: %w", ev.ID, err)
		}

		vevent.Props.SetText(ical.PropSummary, flattenSummary(ev.Title))
		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

// EventUID derives a globally unique identifier from the event's id, date and
// start time.
func EventUID(ev model.PlacedEvent) string {
	return fmt.Sprintf("%d-%s-%s@%s",
		ev.ID,
		strings.ReplaceAll(ev.DateStr, "-", ""),
		strings.ReplaceAll(ev.Start, ":", ""),
		uidDomain)
}

// setLocalDateTime writes a floating local timestamp (yyyymmddThhmmss, no zone
// suffix) for the given property.
func setLocalDateTime(event *ical.Event, name, dateStr, clock string) error {
	t, err := time.Parse(parseLayout, dateStr+" "+clock)
	if err != nil {
		return fmt.Errorf("parse %s %q %q: %w", name, dateStr, clock, err)
	}
	prop := ical.NewProp(name)
	prop.Value = t.Format(stampLayout)
	event.Props.Set(prop)
	return nil
}

// flattenSummary collapses line breaks so a summary can never leak a raw line
// break into the record stream, independent of the encoder's own escaping.
func flattenSummary(title string) string {
	title = strings.ReplaceAll(title, "\r\n", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "\r", " ")
	return strings.TrimSpace(title)
}
