// Package drive wraps the Google Drive v3 API for the MCP tool surface:
// searching and listing files, reading file content with export for native
// Google formats, creating files, and managing permissions.
package drive
