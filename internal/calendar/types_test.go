package calendar

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name string
		edt  *calendar.EventDateTime
		want time.Time
	}{
		{
			name: "timed event",
			edt:  &calendar.EventDateTime{DateTime: "2026-08-29T14:30:00Z"},
			want: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "all-day event",
			edt:  &calendar.EventDateTime{Date: "2026-08-29"},
			want: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "nil",
			edt:  nil,
			want: time.Time{},
		},
		{
			name: "garbage",
			edt:  &calendar.EventDateTime{DateTime: "not a time"},
			want: time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseEventTime(tt.edt); !got.Equal(tt.want) {
				t.Errorf("parseEventTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToEventSummary(t *testing.T) {
	event := &calendar.Event{
		Id:        "evt1",
		Summary:   "Planning",
		Status:    "confirmed",
		Organizer: &calendar.EventOrganizer{Email: "alice@example.com"},
		Start:     &calendar.EventDateTime{DateTime: "2026-08-29T09:00:00Z"},
		End:       &calendar.EventDateTime{DateTime: "2026-08-29T10:00:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "bob@example.com", ResponseStatus: "accepted"},
			{Email: "carol@example.com", Optional: true},
		},
	}

	got := toEventSummary(event)
	if got.ID != "evt1" || got.Summary != "Planning" {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Organizer != "alice@example.com" {
		t.Errorf("Organizer = %q", got.Organizer)
	}
	if len(got.Attendees) != 2 {
		t.Fatalf("Attendees = %d, want 2", len(got.Attendees))
	}
	if !got.Attendees[1].Optional {
		t.Error("second attendee should be optional")
	}
	if got.End.Sub(got.Start) != time.Hour {
		t.Errorf("duration = %v, want 1h", got.End.Sub(got.Start))
	}
}
