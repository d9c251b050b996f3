package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildesoft/workspace-mcp/internal/config"
)

// countingTransport fails every request and counts attempts. Used to prove
// a code path performs no network I/O.
type countingTransport struct {
	calls atomic.Int64
}

func (t *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return nil, errors.New("network use not expected")
}

func TestPlaceholderResolverNeverTouchesNetwork(t *testing.T) {
	transport := &countingTransport{}
	client := &http.Client{Transport: transport}

	resolver := NewIdentityResolver(config.SingleUser, client, nil, nil)
	require.IsType(t, &PlaceholderIdentityResolver{}, resolver)

	identity, err := resolver.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, PlaceholderUserID, identity.UserID)
	assert.Empty(t, identity.DisplayName)
	assert.Zero(t, transport.calls.Load())
}

func TestNetworkResolverSingleLookup(t *testing.T) {
	var requests atomic.Int64
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"alice@example.com","name":"Alice Doe","verified_email":true}`))
	}))
	defer srv.Close()

	resolver := &NetworkIdentityResolver{
		UserInfoURL: srv.URL,
		Client:      srv.Client(),
	}

	identity, err := resolver.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "access-token-1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.UserID)
	assert.Equal(t, "Alice Doe", identity.DisplayName)
	assert.Equal(t, "Bearer access-token-1", gotAuth)
	assert.Equal(t, int64(1), requests.Load())
}

func TestNetworkResolverFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid token", http.StatusUnauthorized)
			},
		},
		{
			name: "missing email",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"name":"No Email"}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resolver := &NetworkIdentityResolver{UserInfoURL: srv.URL, Client: srv.Client()}
			identity, err := resolver.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "tok"})
			require.Error(t, err)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrIdentityLookupFailed)
		})
	}
}

func TestNetworkResolverTransportError(t *testing.T) {
	resolver := &NetworkIdentityResolver{
		UserInfoURL: "http://127.0.0.1:1/userinfo",
		Client:      &http.Client{Transport: &countingTransport{}},
	}
	_, err := resolver.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "tok"})
	assert.ErrorIs(t, err, ErrIdentityLookupFailed)
}

func TestNetworkResolverCountsLookups(t *testing.T) {
	metrics, reader := newCollectedMetrics(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"alice@example.com"}`))
	}))
	defer srv.Close()

	resolver := &NetworkIdentityResolver{
		UserInfoURL: srv.URL,
		Client:      srv.Client(),
		Metrics:     metrics,
	}
	_, err := resolver.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counterTotal(t, reader, "identity_lookups_total"))

	failing := &NetworkIdentityResolver{
		UserInfoURL: "http://127.0.0.1:1/userinfo",
		Client:      &http.Client{Transport: &countingTransport{}},
		Metrics:     metrics,
	}
	_, err = failing.ResolveIdentity(context.Background(), &CredentialBundle{AccessToken: "tok"})
	require.Error(t, err)
	assert.Equal(t, int64(2), counterTotal(t, reader, "identity_lookups_total"))
}

func TestNewIdentityResolverModeSelection(t *testing.T) {
	assert.IsType(t, &PlaceholderIdentityResolver{}, NewIdentityResolver(config.SingleUser, nil, nil, nil))
	assert.IsType(t, &NetworkIdentityResolver{}, NewIdentityResolver(config.MultiUser, nil, nil, nil))
}
