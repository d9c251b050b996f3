package docs_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/auth"
	"github.com/tildesoft/workspace-mcp/internal/config"
	"github.com/tildesoft/workspace-mcp/internal/server"
)

func TestRegisterDocsTools(t *testing.T) {
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
		Mode:          config.SingleUser,
		OAuth:         oauthCfg,
		Authenticator: authn,
	})
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	t.Cleanup(sc.Shutdown)

	for _, readOnly := range []bool{false, true} {
		s := mcpserver.NewMCPServer("test", "0.0.0")
		if err := RegisterDocsTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterDocsTools(readOnly=%v): %v", readOnly, err)
		}
	}
}
