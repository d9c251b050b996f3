package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// CalendarInfo describes one entry of the user's calendar list.
type CalendarInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"accessRole,omitempty"`
}

// EventInput is the input for creating or updating an event. Zero-value
// fields are left unset on update.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// EventSummary is the event shape returned by the tools.
type EventSummary struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Organizer   string         `json:"organizer,omitempty"`
	Status      string         `json:"status,omitempty"`
	Attendees   []AttendeeInfo `json:"attendees,omitempty"`
	HTMLLink    string         `json:"htmlLink,omitempty"`
}

// AttendeeInfo describes one event attendee.
type AttendeeInfo struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}

func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}
	summary.Start = parseEventTime(event.Start)
	summary.End = parseEventTime(event.End)
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}
	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
		})
	}
	return summary
}

// parseEventTime handles both timed events (DateTime) and all-day events
// (Date).
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
