package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/auth"
	"github.com/tildesoft/workspace-mcp/internal/calendar"
	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/docs"
	"github.com/tildesoft/workspace-mcp/internal/drive"
	"github.com/tildesoft/workspace-mcp/internal/google"
	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

// ServerContext is the shared state behind the MCP tools: the session
// mode, the authenticator, and lazily-created per-user Google API clients.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	mode          config.SessionMode
	oauth         *oauth2.Config
	authenticator *auth.Authenticator
	tokens        google.TokenProvider
	logger        *slog.Logger
	metrics       *instrumentation.Metrics

	mu              sync.Mutex
	driveClients    map[string]*drive.Client
	calendarClients map[string]*calendar.Client
	docsClients     map[string]*docs.Client
	shutdown        bool
}

// ContextOptions collects the collaborators for NewServerContext.
type ContextOptions struct {
	Mode          config.SessionMode
	OAuth         *oauth2.Config
	Authenticator *auth.Authenticator
	Logger        *slog.Logger
	Metrics       *instrumentation.Metrics
}

// NewServerContext creates the shared server context. API clients are
// created on first use per user, once that user has a session.
func NewServerContext(ctx context.Context, opts ContextOptions) (*ServerContext, error) {
	if opts.OAuth == nil {
		return nil, fmt.Errorf("oauth config is required")
	}
	if opts.Authenticator == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		mode:            opts.Mode,
		oauth:           opts.OAuth,
		authenticator:   opts.Authenticator,
		tokens:          opts.Authenticator.Sessions(),
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		driveClients:    make(map[string]*drive.Client),
		calendarClients: make(map[string]*calendar.Client),
		docsClients:     make(map[string]*docs.Client),
	}, nil
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Mode returns the session mode the server was started in.
func (sc *ServerContext) Mode() config.SessionMode {
	return sc.mode
}

// Authenticator returns the OAuth authenticator.
func (sc *ServerContext) Authenticator() *auth.Authenticator {
	return sc.authenticator
}

// Logger returns the server logger, defaulting to slog.Default.
func (sc *ServerContext) Logger() *slog.Logger {
	if sc.logger == nil {
		return slog.Default()
	}
	return sc.logger
}

// Metrics returns the metrics recorder. May record to a no-op.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// ResolveUser determines which user a tool call acts as. In single-user
// mode the stored placeholder identity is always used and any caller
// supplied value is ignored. In multi-user mode the caller must name the
// user.
func (sc *ServerContext) ResolveUser(args map[string]interface{}) (string, error) {
	if sc.mode == config.SingleUser {
		return auth.PlaceholderUserID, nil
	}
	if user, ok := args["user"].(string); ok && user != "" {
		return user, nil
	}
	return "", fmt.Errorf("user is required in multi-user mode")
}

// DriveClientForUser returns the Drive client for a user, creating and
// caching it on first use. Fails when the user has no session.
func (sc *ServerContext) DriveClientForUser(ctx context.Context, user string) (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.driveClients[user]; ok {
		return client, nil
	}
	hc, err := sc.httpClientForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	client, err := drive.NewClient(sc.ctx, hc, user)
	if err != nil {
		return nil, err
	}
	sc.driveClients[user] = client
	return client, nil
}

// CalendarClientForUser returns the Calendar client for a user, creating
// and caching it on first use.
func (sc *ServerContext) CalendarClientForUser(ctx context.Context, user string) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.calendarClients[user]; ok {
		return client, nil
	}
	hc, err := sc.httpClientForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	client, err := calendar.NewClient(sc.ctx, hc, user)
	if err != nil {
		return nil, err
	}
	sc.calendarClients[user] = client
	return client, nil
}

// DocsClientForUser returns the Docs client for a user, creating and
// caching it on first use.
func (sc *ServerContext) DocsClientForUser(ctx context.Context, user string) (*docs.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.docsClients[user]; ok {
		return client, nil
	}
	hc, err := sc.httpClientForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	client, err := docs.NewClient(sc.ctx, hc, user)
	if err != nil {
		return nil, err
	}
	sc.docsClients[user] = client
	return client, nil
}

// httpClientForUser builds an authorized HTTP client whose token source
// refreshes through the oauth config. Caller holds sc.mu.
func (sc *ServerContext) httpClientForUser(ctx context.Context, user string) (*http.Client, error) {
	token, err := sc.tokens.TokenForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("no credentials for %s, complete the authorization flow first: %w", user, err)
	}
	ts := sc.oauth.TokenSource(sc.ctx, token)
	return google.NewHTTPClient(sc.ctx, ts), nil
}

// DropClientsForUser discards cached API clients for a user. Called when
// the user's session is revoked.
func (sc *ServerContext) DropClientsForUser(user string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.driveClients, user)
	delete(sc.calendarClients, user)
	delete(sc.docsClients, user)
}

// HasSession reports whether the user currently holds credentials.
func (sc *ServerContext) HasSession(user string) bool {
	return sc.tokens.HasTokenForUser(user)
}

// RevokeSession destroys the user's credentials and drops their cached
// API clients. API calls for the user fail until they authorize again.
func (sc *ServerContext) RevokeSession(user string) {
	sc.authenticator.Sessions().Delete(user)
	sc.DropClientsForUser(user)
	if sc.logger != nil {
		sc.logger.Info("session revoked",
			logging.Operation("session_revoke"),
			logging.UserHash(user))
	}
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}
