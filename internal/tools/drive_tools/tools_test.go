package drive_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/auth"
	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/server"
)

func newTestServerContext(t *testing.T, mode config.SessionMode) *server.ServerContext {
	t.Helper()
	store := auth.NewSessionStore(nil, nil)
	t.Cleanup(store.Close)

	oauthCfg := &oauth2.Config{ClientID: "client", ClientSecret: "secret"}
	authn, err := auth.NewAuthenticator(auth.AuthenticatorConfig{
		OAuth:    oauthCfg,
		Resolver: &auth.PlaceholderIdentityResolver{},
		Sessions: store,
	})
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	sc, err := server.NewServerContext(context.Background(), server.ContextOptions{
		Mode:          mode,
		OAuth:         oauthCfg,
		Authenticator: authn,
	})
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	t.Cleanup(sc.Shutdown)
	return sc
}

func TestRegisterDriveTools(t *testing.T) {
	for _, readOnly := range []bool{false, true} {
		sc := newTestServerContext(t, config.SingleUser)
		s := mcpserver.NewMCPServer("test", "0.0.0")
		if err := RegisterDriveTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterDriveTools(readOnly=%v): %v", readOnly, err)
		}
	}
}
