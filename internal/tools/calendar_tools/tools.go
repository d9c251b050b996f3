// Package calendar_tools registers the Google Calendar MCP tools.
package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/calendar"
	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/common"
)

func getClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*calendar.Client, map[string]interface{}, error) {
	args := request.GetArguments()
	user, err := sc.ResolveUser(args)
	if err != nil {
		return nil, nil, err
	}
	client, err := sc.CalendarClientForUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return client, args, nil
}

// RegisterCalendarTools registers the Calendar tool group. Write tools are
// skipped in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List the calendars on the user's calendar list"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
	)
	s.AddTool(listCalendarsTool, common.Instrumented("calendar_list_calendars", "calendar", "calendarList.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, _, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			calendars, err := client.ListCalendars(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list calendars: %v", err)), nil
			}
			return common.JSONResult(calendars), nil
		}))

	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List or search events in a calendar within a time range"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Range start, RFC 3339 (default: now)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("Range end, RFC 3339 (default: 7 days from now)"),
		),
		mcp.WithString("query",
			mcp.Description("Free-text search over event fields"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 50)"),
		),
	)
	s.AddTool(listEventsTool, common.Instrumented("calendar_list_events", "calendar", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			now := time.Now()
			timeMin, err := common.TimeArg(args, "timeMin", now)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			timeMax, err := common.TimeArg(args, "timeMax", now.Add(7*24*time.Hour))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			events, err := client.ListEvents(ctx,
				common.StringArg(args, "calendarId", "primary"),
				timeMin, timeMax,
				common.StringArg(args, "query", ""),
				common.Int64Arg(args, "maxResults", 50))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
			}
			return common.JSONResult(events), nil
		}))

	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get a single calendar event by ID"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The event ID"),
		),
	)
	s.AddTool(getEventTool, common.Instrumented("calendar_get_event", "calendar", "events.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			eventID := common.StringArg(args, "eventId", "")
			if eventID == "" {
				return mcp.NewToolResultError("eventId is required"), nil
			}
			event, err := client.GetEvent(ctx, common.StringArg(args, "calendarId", "primary"), eventID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
			}
			return common.JSONResult(event), nil
		}))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time, RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time, RFC 3339"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone for start and end (default: the calendar's zone)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated attendee email addresses"),
		),
	)
	s.AddTool(createEventTool, common.Instrumented("calendar_create_event", "calendar", "events.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			input, err := eventInputFromArgs(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := client.CreateEvent(ctx, common.StringArg(args, "calendarId", "primary"), input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
			}
			return common.JSONResult(event), nil
		}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update fields of an existing calendar event"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The event ID"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title"),
		),
		mcp.WithString("start",
			mcp.Description("New start time, RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Description("New end time, RFC 3339"),
		),
		mcp.WithString("description",
			mcp.Description("New event description"),
		),
		mcp.WithString("location",
			mcp.Description("New event location"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone for start and end"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated attendee email addresses (replaces the attendee list)"),
		),
	)
	s.AddTool(updateEventTool, common.Instrumented("calendar_update_event", "calendar", "events.patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			eventID := common.StringArg(args, "eventId", "")
			if eventID == "" {
				return mcp.NewToolResultError("eventId is required"), nil
			}
			input, err := eventInputFromArgs(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, err := client.UpdateEvent(ctx, common.StringArg(args, "calendarId", "primary"), eventID, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
			}
			return common.JSONResult(event), nil
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The event ID"),
		),
	)
	s.AddTool(deleteEventTool, common.Instrumented("calendar_delete_event", "calendar", "events.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			eventID := common.StringArg(args, "eventId", "")
			if eventID == "" {
				return mcp.NewToolResultError("eventId is required"), nil
			}
			if err := client.DeleteEvent(ctx, common.StringArg(args, "calendarId", "primary"), eventID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", eventID)), nil
		}))
}

func eventInputFromArgs(args map[string]interface{}) (calendar.EventInput, error) {
	input := calendar.EventInput{
		Summary:     common.StringArg(args, "summary", ""),
		Description: common.StringArg(args, "description", ""),
		Location:    common.StringArg(args, "location", ""),
		TimeZone:    common.StringArg(args, "timeZone", ""),
	}
	start, err := common.TimeArg(args, "start", time.Time{})
	if err != nil {
		return calendar.EventInput{}, err
	}
	end, err := common.TimeArg(args, "end", time.Time{})
	if err != nil {
		return calendar.EventInput{}, err
	}
	input.Start = start
	input.End = end
	if attendees := common.StringArg(args, "attendees", ""); attendees != "" {
		input.Attendees = splitCommaList(attendees)
	}
	return input, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
