// Package docs wraps the Google Docs v1 API for the MCP tool surface:
// reading document content as plain text, creating documents, and
// inserting text.
package docs
