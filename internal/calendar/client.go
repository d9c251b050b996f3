package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API service.
type Client struct {
	svc  *calendar.Service
	user string
}

// NewClient creates a Calendar client using an already-authorized HTTP
// client.
func NewClient(ctx context.Context, hc *http.Client, user string) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, user: user}, nil
}

// User returns the user this client acts as.
func (c *Client) User() string {
	return c.user
}

// ListCalendars returns the calendars on the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	calendars := make([]CalendarInfo, len(list.Items))
	for i, entry := range list.Items {
		calendars[i] = toCalendarInfo(entry)
	}
	return calendars, nil
}

// ListEvents returns the events in a calendar within [timeMin, timeMax),
// expanded to single instances and ordered by start time. A non-empty
// query restricts results to free-text matches.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string, maxResults int64) ([]EventSummary, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if query != "" {
		call = call.Q(query)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events in %s: %w", calendarID, err)
	}
	summaries := make([]EventSummary, len(events.Items))
	for i, event := range events.Items {
		summaries[i] = toEventSummary(event)
	}
	return summaries, nil
}

// GetEvent retrieves a single event.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*EventSummary, error) {
	if eventID == "" {
		return nil, fmt.Errorf("eventID is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.Summary == "" {
		return nil, fmt.Errorf("event summary is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, fmt.Errorf("event start and end times are required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	event := buildEvent(input)
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent patches an existing event with the non-zero fields of the
// input.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*EventSummary, error) {
	if eventID == "" {
		return nil, fmt.Errorf("eventID is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	patch := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
	}
	if !input.Start.IsZero() {
		patch.Start = eventDateTime(input.Start, input.TimeZone)
	}
	if !input.End.IsZero() {
		patch.End = eventDateTime(input.End, input.TimeZone)
	}
	if len(input.Attendees) > 0 {
		for _, email := range input.Attendees {
			patch.Attendees = append(patch.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	updated, err := c.svc.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent removes an event from a calendar.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("eventID is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func buildEvent(input EventInput) *calendar.Event {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       eventDateTime(input.Start, input.TimeZone),
		End:         eventDateTime(input.End, input.TimeZone),
	}
	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}
	return event
}

func eventDateTime(t time.Time, timeZone string) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: timeZone,
	}
}
