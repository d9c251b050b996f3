package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/google"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

// fakeProvider emulates Google's token and userinfo endpoints. Each
// authorization code is accepted exactly once, as the real provider does,
// and maps to an access token "access-<code>" owned by "<code>@example.com".
type fakeProvider struct {
	srv *httptest.Server

	mu        sync.Mutex
	usedCodes map[string]bool
	exchanges int
	lookups   int

	grantedScope string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		usedCodes:    make(map[string]bool),
		grantedScope: "openid",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", p.handleToken)
	mux.HandleFunc("/userinfo", p.handleUserInfo)
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	code := r.FormValue("code")

	p.mu.Lock()
	p.exchanges++
	used := p.usedCodes[code]
	p.usedCodes[code] = true
	scope := p.grantedScope
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if code == "" || used {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
		return
	}
	fmt.Fprintf(w, `{"access_token":"access-%s","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh-%s","scope":"%s"}`, code, code, scope)
}

func (p *fakeProvider) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.lookups++
	p.mu.Unlock()

	authz := r.Header.Get("Authorization")
	code := strings.TrimPrefix(authz, "Bearer access-")
	if code == authz {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"email":"%s@example.com","name":"User %s"}`, code, code)
}

func (p *fakeProvider) oauthConfig(scopes ...string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = google.CurrentScopes().Strings()
	}
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8000/oauth2callback",
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.srv.URL + "/token",
			AuthURL:   p.srv.URL + "/auth",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (p *fakeProvider) counts() (exchanges, lookups int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchanges, p.lookups
}

func newTestAuthenticator(t *testing.T, provider *fakeProvider, resolver IdentityResolver) *Authenticator {
	t.Helper()
	store := NewSessionStore(nil, nil)
	t.Cleanup(store.Close)
	a, err := NewAuthenticator(AuthenticatorConfig{
		OAuth:    provider.oauthConfig(),
		Resolver: resolver,
		Sessions: store,
	})
	require.NoError(t, err)
	return a
}

func TestHandleCallbackSingleUser(t *testing.T) {
	provider := newFakeProvider(t)
	transport := &countingTransport{}
	resolver := NewIdentityResolver(config.SingleUser, &http.Client{Transport: transport}, nil, nil)
	a := newTestAuthenticator(t, provider, resolver)

	bundle, err := a.HandleCallback(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "access-abc123", bundle.AccessToken)
	assert.Equal(t, "refresh-abc123", bundle.RefreshToken)
	assert.False(t, bundle.Expiry.IsZero())

	// The session belongs to the placeholder identity and no userinfo
	// request was made.
	identity, err := a.Sessions().Identity(PlaceholderUserID)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderUserID, identity.UserID)
	assert.Zero(t, transport.calls.Load())
	_, lookups := provider.counts()
	assert.Zero(t, lookups)
}

func TestHandleCallbackMultiUser(t *testing.T) {
	provider := newFakeProvider(t)
	resolver := &NetworkIdentityResolver{
		UserInfoURL: provider.srv.URL + "/userinfo",
		Client:      provider.srv.Client(),
	}
	a := newTestAuthenticator(t, provider, resolver)

	bundle, err := a.HandleCallback(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "access-abc123", bundle.AccessToken)

	identity, err := a.Sessions().Identity("abc123@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User abc123", identity.DisplayName)

	exchanges, lookups := provider.counts()
	assert.Equal(t, 1, exchanges)
	assert.Equal(t, 1, lookups)
}

func TestHandleCallbackEmptyCode(t *testing.T) {
	provider := newFakeProvider(t)
	a := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})

	_, err := a.HandleCallback(context.Background(), "")
	assert.ErrorIs(t, err, ErrExchangeFailed)

	exchanges, _ := provider.counts()
	assert.Zero(t, exchanges, "empty code must be rejected before contacting the provider")
}

func TestHandleCallbackCodeReuse(t *testing.T) {
	provider := newFakeProvider(t)
	a := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})

	_, err := a.HandleCallback(context.Background(), "abc123")
	require.NoError(t, err)

	_, err = a.HandleCallback(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrExchangeFailed)

	exchanges, _ := provider.counts()
	assert.Equal(t, 1, exchanges, "a consumed code must not reach the provider again")
}

func TestHandleCallbackProviderRejectsReusedCode(t *testing.T) {
	provider := newFakeProvider(t)

	// Two independent authenticators share no consumed-code state, so the
	// second exchange reaches the provider and fails there.
	first := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})
	second := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})

	_, err := first.HandleCallback(context.Background(), "abc123")
	require.NoError(t, err)

	_, err = second.HandleCallback(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestHandleCallbackIdentityFailureLeavesNoSession(t *testing.T) {
	provider := newFakeProvider(t)
	resolver := &NetworkIdentityResolver{
		UserInfoURL: "http://127.0.0.1:1/userinfo",
		Client:      &http.Client{Transport: &countingTransport{}},
	}
	a := newTestAuthenticator(t, provider, resolver)

	_, err := a.HandleCallback(context.Background(), "abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityLookupFailed)
	assert.NotErrorIs(t, err, ErrExchangeFailed)
	assert.Empty(t, a.Sessions().Users())
}

func TestHandleCallbackWarnsOnNarrowGrant(t *testing.T) {
	provider := newFakeProvider(t)
	provider.grantedScope = "openid"

	var buf bytes.Buffer
	store := NewSessionStore(nil, nil)
	t.Cleanup(store.Close)
	a, err := NewAuthenticator(AuthenticatorConfig{
		OAuth:    provider.oauthConfig("openid", google.ScopeCalendar),
		Resolver: &PlaceholderIdentityResolver{},
		Sessions: store,
		Logger:   logging.New(&buf, false),
	})
	require.NoError(t, err)

	_, err = a.HandleCallback(context.Background(), "abc123")
	require.NoError(t, err, "a narrow grant does not fail the flow")
	assert.Contains(t, buf.String(), "narrower")
	assert.Contains(t, buf.String(), google.ScopeCalendar)
}

func TestHandleCallbackConcurrentSessions(t *testing.T) {
	provider := newFakeProvider(t)
	resolver := &NetworkIdentityResolver{
		UserInfoURL: provider.srv.URL + "/userinfo",
		Client:      provider.srv.Client(),
	}
	a := newTestAuthenticator(t, provider, resolver)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.HandleCallback(context.Background(), fmt.Sprintf("code%d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "callback %d", i)
	}
	assert.Len(t, a.Sessions().Users(), 5)
}

func TestAuthURLRequestsOfflineAccess(t *testing.T) {
	provider := newFakeProvider(t)
	a := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})

	url := a.AuthURL("state-token")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "state=state-token")
	assert.Contains(t, url, "scope=openid")
}

func TestConsumeState(t *testing.T) {
	provider := newFakeProvider(t)
	a := newTestAuthenticator(t, provider, &PlaceholderIdentityResolver{})

	a.AuthURL("issued-state")

	assert.False(t, a.ConsumeState("forged-by-attacker"), "a state this process never issued must be rejected")
	assert.False(t, a.ConsumeState(""), "an absent state must be rejected")
	assert.True(t, a.ConsumeState("issued-state"))
	assert.False(t, a.ConsumeState("issued-state"), "state is single use")
}

func TestNewAuthenticatorValidation(t *testing.T) {
	provider := newFakeProvider(t)
	store := NewSessionStore(nil, nil)
	t.Cleanup(store.Close)

	_, err := NewAuthenticator(AuthenticatorConfig{Resolver: &PlaceholderIdentityResolver{}, Sessions: store})
	assert.Error(t, err)
	_, err = NewAuthenticator(AuthenticatorConfig{OAuth: provider.oauthConfig(), Sessions: store})
	assert.Error(t, err)
	_, err = NewAuthenticator(AuthenticatorConfig{OAuth: provider.oauthConfig(), Resolver: &PlaceholderIdentityResolver{}})
	assert.Error(t, err)
}
