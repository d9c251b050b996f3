package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tildesoft/workspace-mcp/internal/auth"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

const (
	// CallbackPath is where Google redirects the browser after consent.
	CallbackPath = "/oauth2callback"

	// MCPPath is where the streamable HTTP MCP transport is mounted.
	MCPPath = "/mcp"

	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// CallbackAuthenticator is the part of the authenticator the HTTP surface
// needs.
type CallbackAuthenticator interface {
	// ConsumeState reports whether the state parameter was issued by this
	// process and has not been seen before.
	ConsumeState(state string) bool
	HandleCallback(ctx context.Context, code string) (*auth.CredentialBundle, error)
}

// HTTPServer hosts the MCP endpoint, the OAuth callback, and a health
// check on one listener.
type HTTPServer struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewHTTPServer builds the HTTP surface. mcpHandler serves the MCP
// transport and may be nil when the server runs on stdio but still needs
// the callback listener.
func NewHTTPServer(addr string, mcpHandler http.Handler, authn CallbackAuthenticator, logger *slog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	if mcpHandler != nil {
		mux.Handle(MCPPath, mcpHandler)
	}
	mux.HandleFunc(CallbackPath, callbackHandler(authn, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			IdleTimeout:       defaultIdleTimeout,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	if s.logger != nil {
		s.logger.Info("starting http server", "addr", s.srv.Addr)
	}
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the mux, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.srv.Handler
}

// callbackHandler receives the redirect from Google's consent screen and
// completes the authorization-code flow.
func callbackHandler(authn CallbackAuthenticator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if errParam := query.Get("error"); errParam != "" {
			if logger != nil {
				logger.Warn("authorization denied at consent screen",
					logging.KeyOperation, "oauth_callback",
					"provider_error", errParam)
			}
			writeCallbackPage(w, http.StatusBadRequest, "Authorization failed",
				fmt.Sprintf("The authorization request was denied: %s.", errParam))
			return
		}

		if state := query.Get("state"); !authn.ConsumeState(state) {
			if logger != nil {
				logger.Warn("callback carried an unknown or reused state",
					logging.KeyOperation, "oauth_callback")
			}
			writeCallbackPage(w, http.StatusBadRequest, "Authorization failed",
				"The authorization response could not be verified. Start the flow again.")
			return
		}

		code := query.Get("code")
		if _, err := authn.HandleCallback(r.Context(), code); err != nil {
			if logger != nil {
				logger.Error("callback handling failed",
					logging.KeyOperation, "oauth_callback",
					logging.KeyError, err)
			}
			writeCallbackPage(w, http.StatusInternalServerError, "Authorization failed",
				"The authorization code could not be exchanged. Start the flow again.")
			return
		}

		writeCallbackPage(w, http.StatusOK, "Authorization complete",
			"You are signed in. You can close this window and return to your MCP client.")
	}
}

func writeCallbackPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>
`, title, title, message)
}
