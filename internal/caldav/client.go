// Package caldav pushes scheduled plans to an external CalDAV calendar. It is
// an optional collaborator: an unconfigured client reports itself as such and
// the API answers 503 for sync requests.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/me/flowplan/internal/ics"
	"github.com/me/flowplan/pkg/model"
)

// Client talks to a CalDAV server over basic auth.
type Client struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	client       *caldav.Client
	logger       *slog.Logger
}

// Calendar describes a remote calendar collection.
type Calendar struct {
	Path string
	Name string
}

// NewClient creates a CalDAV client. Credentials may be empty; the client is
// then unconfigured and every operation fails.
func NewClient(baseURL, username, password, calendarPath string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
		logger:       logger.With("component", "caldav"),
	}
}

// IsConfigured reports whether the client has a server and credentials.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.username != "" && c.password != ""
}

func (c *Client) connect() (*caldav.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	httpClient := &http.Client{
		Transport: &basicAuthTransport{username: c.username, password: c.password},
		Timeout:   30 * time.Second,
	}
	client, err := caldav.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}
	c.client = client
	return client, nil
}

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// DiscoverCalendars returns the calendars available to the configured user.
func (c *Client) DiscoverCalendars(ctx context.Context) ([]Calendar, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	result := make([]Calendar, 0, len(cals))
	for _, cal := range cals {
		result = append(result, Calendar{Path: cal.Path, Name: cal.Name})
	}
	return result, nil
}

// PushEvents uploads one calendar object per placed event. PUT replaces, so
// pushing the same plan twice updates in place rather than duplicating.
func (c *Client) PushEvents(ctx context.Context, events []model.PlacedEvent) error {
	if !c.IsConfigured() {
		return fmt.Errorf("CalDAV not configured")
	}
	if c.calendarPath == "" {
		return fmt.Errorf("calendar path not set")
	}
	client, err := c.connect()
	if err != nil {
		return err
	}

	base := c.calendarPath
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	for _, ev := range events {
		uid := ics.EventUID(ev)
		cal, err := eventToICS(ev, uid)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		path := base + uid + ".ics"
		if _, err := client.PutCalendarObject(ctx, path, cal); err != nil {
			return fmt.Errorf("put event %d: %w", ev.ID, err)
		}
		c.logger.Debug("event pushed", "path", path)
	}
	return nil
}

// eventToICS wraps a single placed event in its own VCALENDAR, times resolved
// in the event's timezone label (UTC when the label is unknown) and encoded as
// UTC instants, which every CalDAV server accepts.
func eventToICS(ev model.PlacedEvent, uid string) (*ical.Calendar, error) {
	loc, err := time.LoadLocation(ev.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", ev.DateStr+" "+ev.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", ev.DateStr+" "+ev.End, loc)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//FlowPlan//CalDAV//EN")

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, ev.Title)
	vevent.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal, nil
}
