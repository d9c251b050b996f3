package auth

import "errors"

// Sentinel errors for the two failure classes callers distinguish. Both are
// wrapped with context at the failure site; match with errors.Is.
var (
	// ErrExchangeFailed covers everything that can go wrong turning an
	// authorization code into tokens: empty or already-consumed codes,
	// provider rejections, and transport failures during the exchange.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrIdentityLookupFailed indicates the userinfo lookup after a
	// successful exchange did not produce a usable identity.
	ErrIdentityLookupFailed = errors.New("identity lookup failed")

	// ErrNoSession indicates no credentials are stored for the user.
	ErrNoSession = errors.New("no session for user")
)
