// Package server ties the pieces together at runtime: the shared server
// context with its per-user API clients, the HTTP surface hosting the MCP
// endpoint and the OAuth callback, and the dedicated metrics listener.
package server
