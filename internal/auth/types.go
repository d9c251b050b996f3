package auth

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/google"
)

// CredentialBundle is the result of a successful authorization-code
// exchange. The bundle is immutable once created; refresh produces a new
// bundle rather than mutating an existing one.
type CredentialBundle struct {
	// AccessToken is the bearer token used for API calls.
	AccessToken string

	// RefreshToken is optional. Google only issues one on the first
	// consent for a client, or when access_type=offline with forced
	// approval is requested.
	RefreshToken string

	// Expiry is the access token's expiration time.
	Expiry time.Time

	// Scopes is the set of scopes the provider actually granted, which
	// may be narrower than what was requested.
	Scopes google.ScopeSet
}

// Token converts the bundle to the oauth2 token form expected by the
// Google API clients.
func (b *CredentialBundle) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		Expiry:       b.Expiry,
		TokenType:    "Bearer",
	}
}

// Expired reports whether the access token is past its expiry. Bundles
// without an expiry never expire.
func (b *CredentialBundle) Expired() bool {
	if b.Expiry.IsZero() {
		return false
	}
	return time.Now().After(b.Expiry)
}

// IdentityRecord identifies the authenticated user for the lifetime of a
// session. Records are immutable after creation.
type IdentityRecord struct {
	// UserID is the stable identifier for the user. In multi-user mode
	// this is the account email reported by the userinfo endpoint; in
	// single-user mode it is a fixed placeholder.
	UserID string

	// DisplayName is the human-readable name, when the provider reports
	// one. Empty for placeholder identities.
	DisplayName string
}

// userInfo is the wire shape of Google's userinfo response.
type userInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
