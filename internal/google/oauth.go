package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
)

// OAuthParams carries the credentials and callback location used to build the
// oauth2 configuration. Values come from process configuration, read once at
// startup.
type OAuthParams struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       ScopeSet
}

// NewOAuthConfig builds the oauth2 configuration for the Google endpoint.
func NewOAuthConfig(p OAuthParams) *oauth2.Config {
	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = CurrentScopes()
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint:     oauth2google.Endpoint,
		RedirectURL:  p.RedirectURL,
		Scopes:       scopes.Strings(),
	}
}

// NewHTTPClient returns an HTTP client that authenticates requests with the
// given token source. The client is pinned to HTTP/1.1 to avoid HTTP/2
// protocol errors seen with the Google API endpoints.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}
