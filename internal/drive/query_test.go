package drive

import "testing"

func TestIsStructuredQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"name contains", "name contains 'report'", true},
		{"fullText contains", "fullText contains 'quarterly'", true},
		{"mimeType equality", "mimeType = 'application/pdf'", true},
		{"mimeType inequality", "mimeType != 'application/vnd.google-apps.folder'", true},
		{"in parents", "'1abcDEF' in parents", true},
		{"modifiedTime comparison", "modifiedTime > '2026-01-01T00:00:00'", true},
		{"trashed flag", "trashed=false", true},
		{"starred flag", "starred = true", true},
		{"shared with me", "sharedWithMe", true},
		{"free text", "quarterly roadmap", false},
		{"free text with apostrophe", "alice's notes", false},
		{"free text mentioning parents", "parents evening schedule", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStructuredQuery(tt.query); got != tt.want {
				t.Errorf("IsStructuredQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"structured passes through", "name contains 'report'", "name contains 'report'"},
		{"free text is wrapped", "quarterly roadmap", "fullText contains 'quarterly roadmap'"},
		{"quotes are escaped", "alice's notes", `fullText contains 'alice\'s notes'`},
		{"backslashes are escaped", `a\b`, `fullText contains 'a\\b'`},
		{"whitespace is trimmed", "  roadmap  ", "fullText contains 'roadmap'"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(tt.input); got != tt.want {
				t.Errorf("BuildSearchQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
