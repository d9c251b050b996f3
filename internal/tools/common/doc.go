// Package common provides the helpers shared by the MCP tool packages:
// argument extraction, JSON result formatting, and the instrumented
// handler wrapper.
package common
