package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
)

func TestToolGroups(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
		wantErr  bool
	}{
		{
			name:     "default groups",
			input:    []string{"calendar", "drive", "docs"},
			expected: []string{"calendar", "drive", "docs"},
		},
		{
			name:     "single group",
			input:    []string{"drive"},
			expected: []string{"drive"},
		},
		{
			name:     "mixed case and whitespace",
			input:    []string{" Calendar ", "DOCS"},
			expected: []string{"calendar", "docs"},
		},
		{
			name:     "duplicates collapsed",
			input:    []string{"drive", "drive", "calendar"},
			expected: []string{"drive", "calendar"},
		},
		{
			name:     "empty entries skipped",
			input:    []string{"", "calendar", "  "},
			expected: []string{"calendar"},
		},
		{
			name:    "unknown group",
			input:   []string{"calendar", "gmail"},
			wantErr: true,
		},
		{
			name:     "no groups",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := toolGroups(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("toolGroups(%v) expected error, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("toolGroups(%v) unexpected error: %v", tt.input, err)
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("toolGroups(%v) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("toolGroups(%v)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestListenAddrFromBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected string
	}{
		{
			name:     "localhost with port",
			baseURL:  "http://localhost:8000",
			expected: ":8000",
		},
		{
			name:     "custom port",
			baseURL:  "http://127.0.0.1:9123",
			expected: ":9123",
		},
		{
			name:     "https without port",
			baseURL:  "https://mcp.example.com",
			expected: ":8000",
		},
		{
			name:     "unparseable",
			baseURL:  "://nope",
			expected: ":8000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listenAddrFromBaseURL(tt.baseURL); got != tt.expected {
				t.Errorf("listenAddrFromBaseURL(%q) = %q, want %q", tt.baseURL, got, tt.expected)
			}
		})
	}
}

func TestStartMetrics(t *testing.T) {
	ctx := context.Background()

	disabled, err := instrumentation.NewProvider(ctx, instrumentation.Config{Enabled: false})
	require.NoError(t, err)
	srv, err := startMetrics(disabled, "127.0.0.1:0", nil)
	require.NoError(t, err)
	assert.Nil(t, srv, "no listener when metrics are disabled")

	// Both transports start the listener through this helper, so stdio
	// serving gets its metrics endpoint too.
	enabled, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		Enabled:     true,
		ServiceName: "workspace-mcp-test",
	})
	require.NoError(t, err)
	defer func() { _ = enabled.Shutdown(ctx) }()

	srv, err = startMetrics(enabled, "127.0.0.1:0", nil)
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.NoError(t, srv.Shutdown(ctx))
}

func TestNewState(t *testing.T) {
	a := newState()
	b := newState()
	if len(a) != 32 {
		t.Errorf("newState() length = %d, want 32", len(a))
	}
	if a == b {
		t.Errorf("newState() returned the same value twice: %q", a)
	}
}
