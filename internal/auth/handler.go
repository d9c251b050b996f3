package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/google"
	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

// consumedCodeTTL bounds how long consumed authorization codes are
// remembered. Google codes expire within minutes, so an hour is ample.
const consumedCodeTTL = time.Hour

// stateTTL bounds how long an issued state parameter stays valid. The
// consent screen may sit open for a while before the user approves.
const stateTTL = time.Hour

// Authenticator drives the authorization-code flow: it builds consent
// URLs, handles the provider's callback, and commits the resulting session.
type Authenticator struct {
	oauth    *oauth2.Config
	resolver IdentityResolver
	sessions *SessionStore
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	mu       sync.Mutex
	consumed map[string]time.Time
	states   map[string]time.Time
}

// AuthenticatorConfig collects the collaborators an Authenticator needs.
// OAuth, Resolver, and Sessions are required; Logger and Metrics are
// optional.
type AuthenticatorConfig struct {
	OAuth    *oauth2.Config
	Resolver IdentityResolver
	Sessions *SessionStore
	Logger   *slog.Logger
	Metrics  *instrumentation.Metrics
}

// NewAuthenticator wires an Authenticator from its collaborators.
func NewAuthenticator(cfg AuthenticatorConfig) (*Authenticator, error) {
	if cfg.OAuth == nil {
		return nil, fmt.Errorf("oauth config is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	return &Authenticator{
		oauth:    cfg.OAuth,
		resolver: cfg.Resolver,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		consumed: make(map[string]time.Time),
		states:   make(map[string]time.Time),
	}, nil
}

// AuthURL returns the consent URL to send the user to. Offline access is
// requested so Google issues a refresh token on first consent. The state
// is remembered so the redirect endpoint can verify it came back.
func (a *Authenticator) AuthURL(state string) string {
	if state != "" {
		a.mu.Lock()
		for s, issued := range a.states {
			if time.Since(issued) > stateTTL {
				delete(a.states, s)
			}
		}
		a.states[state] = time.Now()
		a.mu.Unlock()
	}
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ConsumeState reports whether the state came from an AuthURL call and
// has not been used before. A callback whose state fails this check is a
// forged redirect and must not reach the code exchange.
func (a *Authenticator) ConsumeState(state string) bool {
	if state == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	issued, ok := a.states[state]
	if !ok {
		return false
	}
	delete(a.states, state)
	return time.Since(issued) <= stateTTL
}

// Sessions exposes the underlying store.
func (a *Authenticator) Sessions() *SessionStore {
	return a.sessions
}

// HandleCallback exchanges the authorization code delivered to the
// redirect endpoint, resolves the identity behind it, and commits the
// session. Either everything succeeds and the session is established, or
// nothing is persisted.
//
// Codes are single use: a code that already completed an exchange here is
// rejected without contacting the provider, and whatever the provider
// rejects surfaces the same way.
func (a *Authenticator) HandleCallback(ctx context.Context, code string) (*CredentialBundle, error) {
	if code == "" {
		a.record(ctx, "empty_code")
		return nil, fmt.Errorf("%w: empty authorization code", ErrExchangeFailed)
	}
	if a.codeConsumed(code) {
		a.record(ctx, "code_reuse")
		return nil, fmt.Errorf("%w: authorization code already used", ErrExchangeFailed)
	}

	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		a.record(ctx, "exchange_error")
		if a.logger != nil {
			a.logger.Error("token exchange failed",
				logging.KeyOperation, "handle_callback",
				logging.KeyError, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	bundle := &CredentialBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Scopes:       grantedScopes(token),
	}
	a.warnNarrowGrant(bundle.Scopes)

	identity, err := a.resolver.ResolveIdentity(ctx, bundle)
	if err != nil {
		a.record(ctx, "identity_error")
		if a.logger != nil {
			a.logger.Error("identity resolution failed",
				logging.KeyOperation, "handle_callback",
				logging.KeyError, err)
		}
		return nil, err
	}

	a.sessions.Put(identity.UserID, bundle, identity)
	a.markConsumed(code)
	a.record(ctx, "success")

	if a.logger != nil {
		a.logger.Info("session established",
			logging.KeyOperation, "handle_callback",
			"user", logging.AnonymizeEmail(identity.UserID),
			"scopes", len(bundle.Scopes))
		a.logger.Debug("credentials obtained",
			logging.KeyOperation, "handle_callback",
			"access_token", logging.SanitizeToken(bundle.AccessToken),
			"has_refresh_token", bundle.RefreshToken != "")
	}
	return bundle, nil
}

// grantedScopes reads the scopes the provider actually granted from the
// token response. Google reports them space-separated in the "scope"
// extra.
func grantedScopes(token *oauth2.Token) google.ScopeSet {
	raw, _ := token.Extra("scope").(string)
	if raw == "" {
		return nil
	}
	return google.ScopeSet(strings.Fields(raw))
}

// warnNarrowGrant logs when the provider granted fewer scopes than were
// requested. The flow still proceeds; individual API calls fail later if
// they need what was withheld.
func (a *Authenticator) warnNarrowGrant(granted google.ScopeSet) {
	if a.logger == nil || granted == nil {
		return
	}
	var missing []string
	for _, want := range a.oauth.Scopes {
		if !granted.Contains(want) {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		a.logger.Warn("provider granted narrower scopes than requested",
			logging.KeyOperation, "handle_callback",
			"missing", strings.Join(missing, " "),
			"granted", strings.Join(granted.Strings(), " "))
	}
}

func (a *Authenticator) codeConsumed(code string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	used, ok := a.consumed[code]
	if ok && time.Since(used) > consumedCodeTTL {
		delete(a.consumed, code)
		return false
	}
	return ok
}

func (a *Authenticator) markConsumed(code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for c, used := range a.consumed {
		if time.Since(used) > consumedCodeTTL {
			delete(a.consumed, c)
		}
	}
	a.consumed[code] = time.Now()
}

func (a *Authenticator) record(ctx context.Context, outcome string) {
	if a.metrics != nil {
		a.metrics.RecordAuthExchange(ctx, outcome)
	}
}
