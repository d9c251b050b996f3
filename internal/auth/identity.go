package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

// googleUserInfoURL is where the network resolver looks up the account
// behind an access token.
const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// PlaceholderUserID is the fixed identity used in single-user mode. It is
// deliberately not a routable address.
const PlaceholderUserID = "single-user@localhost"

// IdentityResolver turns a fresh credential bundle into the identity that
// owns the session. Implementations are selected once at startup and never
// switched at runtime.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, bundle *CredentialBundle) (*IdentityRecord, error)
}

// NewIdentityResolver returns the resolver for the given session mode.
func NewIdentityResolver(mode config.SessionMode, client *http.Client, logger *slog.Logger, metrics *instrumentation.Metrics) IdentityResolver {
	if mode == config.SingleUser {
		return &PlaceholderIdentityResolver{logger: logger}
	}
	return &NetworkIdentityResolver{
		UserInfoURL: googleUserInfoURL,
		Client:      client,
		Metrics:     metrics,
		logger:      logger,
	}
}

// PlaceholderIdentityResolver returns a constant identity without touching
// the network. Used when the server manages credentials for exactly one
// operator and a userinfo lookup would add a failure mode for no benefit.
type PlaceholderIdentityResolver struct {
	logger *slog.Logger
}

// ResolveIdentity always succeeds.
func (r *PlaceholderIdentityResolver) ResolveIdentity(_ context.Context, _ *CredentialBundle) (*IdentityRecord, error) {
	if r.logger != nil {
		r.logger.Debug("resolved placeholder identity",
			logging.KeyOperation, "resolve_identity",
			"user", PlaceholderUserID)
	}
	return &IdentityRecord{UserID: PlaceholderUserID}, nil
}

// NetworkIdentityResolver fetches the account behind an access token from
// the provider's userinfo endpoint.
type NetworkIdentityResolver struct {
	// UserInfoURL is the endpoint to query. Defaults to Google's v2
	// userinfo endpoint when empty.
	UserInfoURL string

	// Client is the HTTP client for the lookup. Defaults to a client
	// with a short timeout when nil.
	Client *http.Client

	// Metrics counts lookup outcomes. May be nil.
	Metrics *instrumentation.Metrics

	logger *slog.Logger
}

// ResolveIdentity performs exactly one userinfo request. Any failure, from
// transport errors to a response without an email, is reported as
// ErrIdentityLookupFailed.
func (r *NetworkIdentityResolver) ResolveIdentity(ctx context.Context, bundle *CredentialBundle) (*IdentityRecord, error) {
	identity, err := r.lookup(ctx, bundle)
	if err != nil {
		r.Metrics.RecordIdentityLookup(ctx, "error")
		return nil, err
	}
	r.Metrics.RecordIdentityLookup(ctx, "success")
	return identity, nil
}

func (r *NetworkIdentityResolver) lookup(ctx context.Context, bundle *CredentialBundle) (*IdentityRecord, error) {
	url := r.UserInfoURL
	if url == "" {
		url = googleUserInfoURL
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building userinfo request: %v", ErrIdentityLookupFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+bundle.AccessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: userinfo returned %d: %s", ErrIdentityLookupFailed, resp.StatusCode, string(body))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo response: %v", ErrIdentityLookupFailed, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo response missing email", ErrIdentityLookupFailed)
	}

	if r.logger != nil {
		r.logger.Debug("resolved identity from userinfo",
			logging.KeyOperation, "resolve_identity",
			"user", logging.AnonymizeEmail(info.Email))
	}
	return &IdentityRecord{UserID: info.Email, DisplayName: info.Name}, nil
}
