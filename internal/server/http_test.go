package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildesoft/workspace-mcp/internal/auth"
)

type fakeAuthenticator struct {
	issuedState string
	gotCode     string
	err         error
}

func (f *fakeAuthenticator) ConsumeState(state string) bool {
	if state == "" || state != f.issuedState {
		return false
	}
	f.issuedState = ""
	return true
}

func (f *fakeAuthenticator) HandleCallback(_ context.Context, code string) (*auth.CredentialBundle, error) {
	f.gotCode = code
	if f.err != nil {
		return nil, f.err
	}
	return &auth.CredentialBundle{AccessToken: "tok"}, nil
}

func TestCallbackSuccess(t *testing.T) {
	fake := &fakeAuthenticator{issuedState: "xyz"}
	srv := NewHTTPServer(":0", nil, fake, nil)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?code=abc123&state=xyz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", fake.gotCode)
	assert.Contains(t, rec.Body.String(), "Authorization complete")
}

func TestCallbackUnknownState(t *testing.T) {
	fake := &fakeAuthenticator{issuedState: "legit"}
	srv := NewHTTPServer(":0", nil, fake, nil)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?code=attacker-code&state=forged", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.gotCode, "a redirect with an unissued state must never reach the exchange")
}

func TestCallbackMissingState(t *testing.T) {
	fake := &fakeAuthenticator{issuedState: "legit"}
	srv := NewHTTPServer(":0", nil, fake, nil)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?code=abc123", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.gotCode)
}

func TestCallbackStateSingleUse(t *testing.T) {
	fake := &fakeAuthenticator{issuedState: "once"}
	srv := NewHTTPServer(":0", nil, fake, nil)

	first := httptest.NewRecorder()
	srv.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, CallbackPath+"?code=abc123&state=once", nil))
	require.Equal(t, http.StatusOK, first.Code)

	fake.gotCode = ""
	second := httptest.NewRecorder()
	srv.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, CallbackPath+"?code=other&state=once", nil))

	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Empty(t, fake.gotCode)
}

func TestCallbackExchangeFailure(t *testing.T) {
	fake := &fakeAuthenticator{issuedState: "xyz", err: fmt.Errorf("%w: invalid_grant", auth.ErrExchangeFailed)}
	srv := NewHTTPServer(":0", nil, fake, nil)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?code=expired&state=xyz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization failed")
}

func TestCallbackProviderError(t *testing.T) {
	fake := &fakeAuthenticator{}
	srv := NewHTTPServer(":0", nil, fake, nil)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?error=access_denied", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
	assert.Empty(t, fake.gotCode, "callback must not exchange when the provider reported an error")
}

func TestHealthz(t *testing.T) {
	srv := NewHTTPServer(":0", nil, &fakeAuthenticator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMCPHandlerMounted(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := NewHTTPServer(":0", mcpHandler, &fakeAuthenticator{}, nil)

	req := httptest.NewRequest(http.MethodPost, MCPPath, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
