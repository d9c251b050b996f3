package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const fileInfoFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, webContentLink, parents, owners, shared, trashed"

// exportMimeTypes maps native Google formats to the text format they are
// exported as when reading content.
var exportMimeTypes = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
}

// maxContentBytes bounds how much file content a single read returns.
const maxContentBytes = 10 << 20

// Client wraps the Google Drive API service.
type Client struct {
	service *drive.Service
	user    string
}

// NewClient creates a Drive client using an already-authorized HTTP
// client. The user is recorded for diagnostics only.
func NewClient(ctx context.Context, hc *http.Client, user string) (*Client, error) {
	service, err := drive.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service, user: user}, nil
}

// User returns the user this client acts as.
func (c *Client) User() string {
	return c.user
}

// SearchFiles searches Drive with either a structured query or free text.
func (c *Client) SearchFiles(ctx context.Context, opts SearchOptions) ([]*FileInfo, string, error) {
	call := c.service.Files.List().
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, files(" + fileInfoFields + ")"))

	if q := BuildSearchQuery(opts.Query); q != "" {
		call = call.Q(q)
	}
	if opts.PageSize > 0 {
		call = call.PageSize(opts.PageSize)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.OrderBy != "" {
		call = call.OrderBy(opts.OrderBy)
	}
	if opts.DriveID != "" {
		call = call.DriveId(opts.DriveID).Corpora("drive").
			IncludeItemsFromAllDrives(true).SupportsAllDrives(true)
	} else if opts.IncludeAll {
		call = call.IncludeItemsFromAllDrives(true).SupportsAllDrives(true)
	}
	if opts.Corpora != "" {
		call = call.Corpora(opts.Corpora)
	}

	list, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to search files: %w", err)
	}

	files := make([]*FileInfo, len(list.Files))
	for i, f := range list.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, list.NextPageToken, nil
}

// ListFolderItems lists the direct children of a folder. folderID "root"
// lists the My Drive root.
func (c *Client) ListFolderItems(ctx context.Context, folderID string, pageSize int64, pageToken string) ([]*FileInfo, string, error) {
	if folderID == "" {
		folderID = "root"
	}
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	call := c.service.Files.List().
		Context(ctx).
		Q(query).
		Fields(googleapi.Field("nextPageToken, files(" + fileInfoFields + ")")).
		OrderBy("folder,name")
	if pageSize > 0 {
		call = call.PageSize(pageSize)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	list, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list folder %s: %w", folderID, err)
	}

	files := make([]*FileInfo, len(list.Files))
	for i, f := range list.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, list.NextPageToken, nil
}

// GetFileMetadata retrieves metadata for a single file.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileInfoFields + ", permissions")).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}
	return convertToFileInfo(file), nil
}

// GetFileContent reads a file's content. Native Google formats are
// exported to their text representation; everything else is downloaded
// as-is and flagged binary when not valid UTF-8.
func (c *Client) GetFileContent(ctx context.Context, fileID string) (*FileContent, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	meta, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id, name, mimeType, size").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	var resp *http.Response
	contentType := meta.MimeType
	if exportType, ok := exportMimeTypes[meta.MimeType]; ok {
		resp, err = c.service.Files.Export(fileID, exportType).Context(ctx).Download()
		contentType = exportType
	} else {
		resp, err = c.service.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read content of file %s: %w", fileID, err)
	}

	content := &FileContent{
		ID:       meta.Id,
		Name:     meta.Name,
		MimeType: contentType,
		Size:     int64(len(data)),
	}
	if utf8.Valid(data) {
		content.Text = string(data)
	} else {
		content.Binary = true
	}
	return content, nil
}

// CreateFile creates a file from inline content or by fetching a source
// URL.
func (c *Client) CreateFile(ctx context.Context, name string, opts CreateOptions) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	content := opts.Content
	if opts.SourceURL != "" {
		fetched, err := fetchURL(ctx, opts.SourceURL)
		if err != nil {
			return nil, err
		}
		content = fetched
	}
	if content == nil {
		return nil, fmt.Errorf("file content or source URL is required")
	}

	file := &drive.File{Name: name}
	if opts.FolderID != "" {
		file.Parents = []string{opts.FolderID}
	}
	if opts.MimeType != "" {
		file.MimeType = opts.MimeType
	}

	created, err := c.service.Files.Create(file).
		Context(ctx).
		Media(bytes.NewReader(content), googleapi.ContentType(opts.MimeType)).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileInfoFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return convertToFileInfo(created), nil
}

// ListPermissions lists all permissions on a file.
func (c *Client) ListPermissions(ctx context.Context, fileID string) ([]*Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	list, err := c.service.Permissions.List(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("permissions(id, type, role, emailAddress, domain, displayName)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for %s: %w", fileID, err)
	}
	permissions := make([]*Permission, len(list.Permissions))
	for i, p := range list.Permissions {
		permissions[i] = convertToPermission(p)
	}
	return permissions, nil
}

// ShareFile grants a permission on a file.
func (c *Client) ShareFile(ctx context.Context, fileID string, opts ShareOptions) (*Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if opts.Type == "" || opts.Role == "" {
		return nil, fmt.Errorf("permission type and role are required")
	}

	permission := &drive.Permission{
		Type:         opts.Type,
		Role:         opts.Role,
		EmailAddress: opts.EmailAddress,
		Domain:       opts.Domain,
	}

	call := c.service.Permissions.Create(fileID, permission).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id, type, role, emailAddress, domain, displayName")
	if opts.SendNotificationEmail {
		call = call.SendNotificationEmail(true)
		if opts.EmailMessage != "" {
			call = call.EmailMessage(opts.EmailMessage)
		}
	} else {
		call = call.SendNotificationEmail(false)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share file %s: %w", fileID, err)
	}
	return convertToPermission(created), nil
}

// UpdatePermission changes the role of an existing permission.
func (c *Client) UpdatePermission(ctx context.Context, fileID, permissionID, role string) (*Permission, error) {
	if fileID == "" || permissionID == "" {
		return nil, fmt.Errorf("fileID and permissionID are required")
	}
	if role == "" {
		return nil, fmt.Errorf("role is required")
	}
	updated, err := c.service.Permissions.Update(fileID, permissionID, &drive.Permission{Role: role}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("id, type, role, emailAddress, domain, displayName").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update permission %s on %s: %w", permissionID, fileID, err)
	}
	return convertToPermission(updated), nil
}

// RemovePermission revokes a permission from a file.
func (c *Client) RemovePermission(ctx context.Context, fileID, permissionID string) error {
	if fileID == "" || permissionID == "" {
		return fmt.Errorf("fileID and permissionID are required")
	}
	if err := c.service.Permissions.Delete(fileID, permissionID).Context(ctx).SupportsAllDrives(true).Do(); err != nil {
		return fmt.Errorf("failed to remove permission %s from %s: %w", permissionID, fileID, err)
	}
	return nil
}

// TransferOwnership makes another user the owner of a file. Drive
// requires the transferOwnership flag for owner grants.
func (c *Client) TransferOwnership(ctx context.Context, fileID, email string) (*Permission, error) {
	if fileID == "" || email == "" {
		return nil, fmt.Errorf("fileID and email are required")
	}
	permission := &drive.Permission{
		Type:         "user",
		Role:         "owner",
		EmailAddress: email,
	}
	created, err := c.service.Permissions.Create(fileID, permission).
		Context(ctx).
		TransferOwnership(true).
		Fields("id, type, role, emailAddress, displayName").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to transfer ownership of %s: %w", fileID, err)
	}
	return convertToPermission(created), nil
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source URL: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source URL returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read source URL body: %w", err)
	}
	return data, nil
}

func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        f.Parents,
		Shared:         f.Shared,
		Trashed:        f.Trashed,
	}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		info.CreatedTime = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		info.ModifiedTime = t
	}
	for _, owner := range f.Owners {
		info.Owners = append(info.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}
	for _, perm := range f.Permissions {
		info.Permissions = append(info.Permissions, *convertToPermission(perm))
	}
	return info
}

func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
		Domain:       p.Domain,
		DisplayName:  p.DisplayName,
	}
}
