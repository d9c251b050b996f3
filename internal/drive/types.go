package drive

import "time"

// FolderMimeType is the MIME type for Google Drive folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// FileInfo holds the file metadata the tools expose.
type FileInfo struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MimeType       string       `json:"mimeType"`
	Size           int64        `json:"size,omitempty"`
	CreatedTime    time.Time    `json:"createdTime,omitempty"`
	ModifiedTime   time.Time    `json:"modifiedTime,omitempty"`
	WebViewLink    string       `json:"webViewLink,omitempty"`
	WebContentLink string       `json:"webContentLink,omitempty"`
	Parents        []string     `json:"parents,omitempty"`
	Owners         []User       `json:"owners,omitempty"`
	Shared         bool         `json:"shared,omitempty"`
	Trashed        bool         `json:"trashed,omitempty"`
	Permissions    []Permission `json:"permissions,omitempty"`
}

// User identifies a Drive user in file metadata.
type User struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Permission describes one grant on a file.
type Permission struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// FileContent is the result of reading a file. Native Google formats are
// exported to text; other files are downloaded and flagged binary when the
// bytes are not valid UTF-8.
type FileContent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Binary   bool   `json:"binary,omitempty"`
	Size     int64  `json:"size"`
}

// SearchOptions controls SearchFiles.
type SearchOptions struct {
	// Query is either a raw Drive query or free text; see BuildSearchQuery.
	Query      string
	PageSize   int64
	PageToken  string
	OrderBy    string
	DriveID    string
	Corpora    string
	IncludeAll bool // include items from all drives
}

// CreateOptions controls CreateFile.
type CreateOptions struct {
	// Content is the file body. Ignored when SourceURL is set.
	Content []byte

	// SourceURL, when set, is fetched and its body used as the file
	// content.
	SourceURL string

	FolderID string
	MimeType string
}

// ShareOptions controls ShareFile.
type ShareOptions struct {
	// Type is the grantee type: user, group, domain, or anyone.
	Type string

	// Role is the granted role: reader, commenter, writer, or owner.
	Role string

	EmailAddress          string
	Domain                string
	SendNotificationEmail bool
	EmailMessage          string
}
