package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/tildesoft/workspace-mcp/internal/auth"
	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/google"
	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
	"github.com/tildesoft/workspace-mcp/internal/logging"
	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/auth_tools"
	"github.com/tildesoft/workspace-mcp/internal/tools/calendar_tools"
	"github.com/tildesoft/workspace-mcp/internal/tools/docs_tools"
	"github.com/tildesoft/workspace-mcp/internal/tools/drive_tools"
)

const shutdownTimeout = 10 * time.Second

// defaultToolGroups lists the tool groups enabled when --tools is not given.
var defaultToolGroups = []string{"calendar", "drive", "docs"}

type serveOptions struct {
	transport      string
	httpAddr       string
	tools          []string
	baseURL        string
	singleUser     bool
	readOnly       bool
	debug          bool
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing Google Workspace tools.

The server supports two transports:
  - stdio: communicates over stdin/stdout (default, for direct MCP clients)
  - streamable-http: serves MCP over HTTP alongside the OAuth callback

OAuth client credentials are read from the GOOGLE_OAUTH_CLIENT_ID and
GOOGLE_OAUTH_CLIENT_SECRET environment variables. The requested scopes are
derived from the enabled tool groups; base scopes are always requested so
the consent screen works even with no groups enabled.

Write tools are registered only when --read-only is disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport to use: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "Listen address for the HTTP server (default derived from base URL)")
	cmd.Flags().StringSliceVar(&opts.tools, "tools", defaultToolGroups, "Tool groups to enable (calendar, drive, docs)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Public base URL, overrides WORKSPACE_MCP_BASE_URL")
	cmd.Flags().BoolVar(&opts.singleUser, "single-user", false, "Single-user mode, overrides WORKSPACE_MCP_SINGLE_USER")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", true, "Register only read tools; pass --read-only=false to enable writes")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", false, "Expose Prometheus metrics")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the metrics endpoint")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, opts.debug)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if cmd.Flags().Changed("single-user") {
		cfg.SingleUser = opts.singleUser
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	groups, err := toolGroups(opts.tools)
	if err != nil {
		return err
	}

	scopes := google.ScopesForServices(groups...)
	oauthCfg := google.NewOAuthConfig(google.OAuthParams{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       scopes,
	})

	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		Enabled:        opts.metricsEnabled,
		ServiceName:    "workspace-mcp",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics provider shutdown failed", logging.Err(err))
		}
	}()

	sessions := auth.NewSessionStore(logger, provider.Metrics())
	defer sessions.Close()

	resolver := auth.NewIdentityResolver(cfg.SessionMode(), nil, logger, provider.Metrics())

	authn, err := auth.NewAuthenticator(auth.AuthenticatorConfig{
		OAuth:    oauthCfg,
		Resolver: resolver,
		Sessions: sessions,
		Logger:   logger,
		Metrics:  provider.Metrics(),
	})
	if err != nil {
		return err
	}

	sc, err := server.NewServerContext(ctx, server.ContextOptions{
		Mode:          cfg.SessionMode(),
		OAuth:         oauthCfg,
		Authenticator: authn,
		Logger:        logger,
		Metrics:       provider.Metrics(),
	})
	if err != nil {
		return err
	}
	defer sc.Shutdown()

	mcpSrv := mcpserver.NewMCPServer(
		"workspace-mcp",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerTools(mcpSrv, sc, groups, opts.readOnly); err != nil {
		return err
	}

	logger.Info("starting server",
		"version", version,
		"transport", opts.transport,
		"mode", cfg.SessionMode().String(),
		"tools", strings.Join(groups, ","),
		"read_only", opts.readOnly,
	)
	logger.Info("authorize by visiting the consent URL", "url", authn.AuthURL(newState()))

	httpAddr := opts.httpAddr
	if httpAddr == "" {
		httpAddr = listenAddrFromBaseURL(cfg.BaseURL)
	}

	switch opts.transport {
	case "stdio":
		return runStdio(ctx, mcpSrv, authn, httpAddr, provider, opts.metricsAddr, logger)
	case "streamable-http":
		return runStreamableHTTP(ctx, mcpSrv, authn, httpAddr, provider, opts.metricsAddr, logger)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", opts.transport)
	}
}

// startMetrics starts the metrics listener when the provider is enabled.
// Returns nil without error when metrics are disabled.
func startMetrics(provider *instrumentation.Provider, addr string, logger *slog.Logger) (*server.MetricsServer, error) {
	if !provider.Enabled() {
		return nil, nil
	}
	srv, err := server.NewMetricsServer(addr, provider, logger)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil && logger != nil {
			logger.Error("metrics server failed", logging.Err(err))
		}
	}()
	return srv, nil
}

// runStdio serves MCP over stdin/stdout. The HTTP server still runs so the
// OAuth callback endpoint is reachable during the consent flow, and the
// metrics listener starts when enabled, same as the HTTP transport.
func runStdio(ctx context.Context, mcpSrv *mcpserver.MCPServer, authn server.CallbackAuthenticator, httpAddr string, provider *instrumentation.Provider, metricsAddr string, logger *slog.Logger) error {
	httpSrv := server.NewHTTPServer(httpAddr, nil, authn, logger)
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpSrv.Start()
	}()

	metricsSrv, err := startMetrics(provider, metricsAddr, logger)
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- mcpserver.ServeStdio(mcpSrv)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serverDone:
	case serveErr = <-httpErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", logging.Err(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	return serveErr
}

// runStreamableHTTP serves MCP over HTTP together with the OAuth callback,
// and optionally the metrics endpoint on its own listener.
func runStreamableHTTP(ctx context.Context, mcpSrv *mcpserver.MCPServer, authn server.CallbackAuthenticator, httpAddr string, provider *instrumentation.Provider, metricsAddr string, logger *slog.Logger) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv)
	httpSrv := server.NewHTTPServer(httpAddr, streamable, authn, logger)

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpSrv.Start()
	}()

	metricsSrv, err := startMetrics(provider, metricsAddr, logger)
	if err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-httpErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", logging.Err(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	return serveErr
}

// registerTools registers the session tools and the enabled tool groups
// on the MCP server.
func registerTools(s *mcpserver.MCPServer, sc *server.ServerContext, groups []string, readOnly bool) error {
	if err := auth_tools.RegisterAuthTools(s, sc); err != nil {
		return fmt.Errorf("failed to register auth tools: %w", err)
	}

	registrars := map[string]func(*mcpserver.MCPServer, *server.ServerContext, bool) error{
		"calendar": calendar_tools.RegisterCalendarTools,
		"drive":    drive_tools.RegisterDriveTools,
		"docs":     docs_tools.RegisterDocsTools,
	}

	for _, group := range groups {
		register := registrars[group]
		if err := register(s, sc, readOnly); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", group, err)
		}
	}
	return nil
}

// toolGroups normalizes and validates the --tools flag value.
func toolGroups(raw []string) ([]string, error) {
	known := map[string]bool{"calendar": true, "drive": true, "docs": true}

	seen := make(map[string]bool)
	groups := make([]string, 0, len(raw))
	for _, g := range raw {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" || seen[g] {
			continue
		}
		if !known[g] {
			return nil, fmt.Errorf("unknown tool group: %s (available: calendar, drive, docs)", g)
		}
		seen[g] = true
		groups = append(groups, g)
	}
	return groups, nil
}

// listenAddrFromBaseURL derives a listen address from the configured base
// URL so the callback endpoint matches the registered redirect URL.
func listenAddrFromBaseURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Port() == "" {
		return ":8000"
	}
	return ":" + u.Port()
}

// newState returns a random state value for the consent URL.
func newState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "state"
	}
	return hex.EncodeToString(b)
}
