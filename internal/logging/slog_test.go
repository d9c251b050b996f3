package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"regular address", "alice@example.com"},
		{"plus alias", "alice+mcp@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail(%q) = %q, leaks the address", tt.email, got)
			}
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if got != AnonymizeEmail(tt.email) {
				t.Error("AnonymizeEmail is not deterministic")
			}
		})
	}
	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail(\"\") should be empty")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	got := SanitizeToken("ya29.a0secret")
	if strings.Contains(got, "ya29") {
		t.Errorf("SanitizeToken leaks token content: %q", got)
	}
	if got != "[token:13 chars]" {
		t.Errorf("SanitizeToken = %q, want length indicator", got)
	}
}

func TestErrNilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("msg", Err(nil))
	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error should be omitted from output, got %q", buf.String())
	}
}

func TestNewDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output at info level: %q", buf.String())
	}
	logger = New(&buf, true)
	logger.Debug("visible", Operation("test"))
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug output missing at debug level: %q", buf.String())
	}
}
