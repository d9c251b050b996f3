package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// SessionMode selects how user identity is resolved after authentication.
// It is fixed at process start and never changes during the process lifetime.
type SessionMode int

const (
	// MultiUser resolves the real identity of every authenticated user
	// through the provider's userinfo endpoint.
	MultiUser SessionMode = iota

	// SingleUser assumes exactly one operator and substitutes a fixed
	// placeholder identity, avoiding the userinfo lookup entirely.
	SingleUser
)

// String returns the mode name used in logs and CLI output.
func (m SessionMode) String() string {
	if m == SingleUser {
		return "single-user"
	}
	return "multi-user"
}

// Config holds the process configuration read once from the environment at
// startup. It is treated as immutable for the lifetime of the process.
type Config struct {
	// ClientID is the Google OAuth client ID.
	ClientID string `env:"GOOGLE_OAUTH_CLIENT_ID"`

	// ClientSecret is the Google OAuth client secret.
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`

	// BaseURL is the public base URL the server is reachable at. The OAuth
	// redirect endpoint is derived from it. Defaults to localhost for
	// development.
	BaseURL string `env:"WORKSPACE_MCP_BASE_URL" envDefault:"http://localhost:8000"`

	// SingleUser enables single-user mode: the userinfo lookup is skipped
	// and a fixed placeholder identity is attached to the session.
	SingleUser bool `env:"WORKSPACE_MCP_SINGLE_USER" envDefault:"false"`

	// InsecureTransport permits plain-HTTP base and redirect URLs beyond
	// loopback addresses. Development only.
	InsecureTransport bool `env:"OAUTH_INSECURE_TRANSPORT" envDefault:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// SessionMode returns the session mode implied by the configuration.
func (c *Config) SessionMode() SessionMode {
	if c.SingleUser {
		return SingleUser
	}
	return MultiUser
}

// RedirectURL returns the OAuth callback URL derived from the base URL.
func (c *Config) RedirectURL() string {
	return c.BaseURL + "/oauth2callback"
}

// Validate checks that the configuration is usable for serving. HTTPS is
// required for non-loopback base URLs unless insecure transport is enabled.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET must be set")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !c.InsecureTransport && !isLoopback(u.Hostname()) {
			return fmt.Errorf("base URL must use HTTPS for non-localhost addresses (got %s); set OAUTH_INSECURE_TRANSPORT=true for development", c.BaseURL)
		}
	default:
		return fmt.Errorf("invalid base URL scheme: %s", u.Scheme)
	}

	return nil
}

func isLoopback(hostname string) bool {
	switch hostname {
	case "localhost", "127.0.0.1", "::1", "[::1]":
		return true
	}
	return false
}
