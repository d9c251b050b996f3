// Package auth implements the OAuth authorization-code flow for the
// workspace MCP server: exchanging the callback's authorization code for
// tokens, resolving the authenticated identity, and holding per-session
// credentials.
//
// # Identity resolution
//
// Identity resolution is a strategy selected once at process start:
//
//   - NetworkIdentityResolver looks the user up at the provider's userinfo
//     endpoint (multi-user deployments).
//   - PlaceholderIdentityResolver returns a fixed placeholder record without
//     any network call (single-user deployments). A single operator gains
//     nothing from a fetched profile, and skipping the lookup removes the
//     dependency on the profile scopes that were dropped from the scope set.
//
// # Session state
//
// A successful callback establishes the session's CredentialBundle and
// IdentityRecord in the SessionStore. Both records are immutable once
// created; re-authentication replaces them wholesale and revocation destroys
// them. Concurrent callbacks for different sessions proceed independently.
package auth
