package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth tokens for Google API access. The session
// store in the auth package is the canonical implementation; the abstraction
// keeps the API client packages independent of where tokens come from.
type TokenProvider interface {
	// TokenForUser retrieves the OAuth token for the given user identifier.
	TokenForUser(ctx context.Context, user string) (*oauth2.Token, error)

	// HasTokenForUser reports whether a token exists for the given user.
	HasTokenForUser(user string) bool
}
