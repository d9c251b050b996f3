// Package calendar wraps the Google Calendar v3 API for the MCP tool
// surface: listing calendars, querying events, and creating, updating, and
// deleting events.
package calendar
