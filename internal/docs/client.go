package docs

import (
	"context"
	"fmt"
	"net/http"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DocInfo describes a document.
type DocInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

// DocContent is a document's flattened text.
type DocContent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Client wraps the Google Docs API service.
type Client struct {
	svc  *docs.Service
	user string
}

// NewClient creates a Docs client using an already-authorized HTTP client.
func NewClient(ctx context.Context, hc *http.Client, user string) (*Client, error) {
	svc, err := docs.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{svc: svc, user: user}, nil
}

// User returns the user this client acts as.
func (c *Client) User() string {
	return c.user
}

// GetDocContent fetches a document and flattens it to plain text.
func (c *Client) GetDocContent(ctx context.Context, documentID string) (*DocContent, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}
	doc, err := c.svc.Documents.Get(documentID).Context(ctx).IncludeTabsContent(true).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return &DocContent{
		ID:    doc.DocumentId,
		Title: doc.Title,
		Text:  ExtractText(doc),
	}, nil
}

// CreateDoc creates a document with the given title and, optionally,
// initial body text.
func (c *Client) CreateDoc(ctx context.Context, title, content string) (*DocInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	doc, err := c.svc.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	if content != "" {
		if err := c.InsertText(ctx, doc.DocumentId, content, 1); err != nil {
			return nil, err
		}
	}
	return &DocInfo{
		ID:    doc.DocumentId,
		Title: doc.Title,
		Link:  "https://docs.google.com/document/d/" + doc.DocumentId + "/edit",
	}, nil
}

// InsertText inserts text at the given index. Index 1 is the start of the
// body.
func (c *Client) InsertText(ctx context.Context, documentID, text string, index int64) error {
	if documentID == "" {
		return fmt.Errorf("documentID is required")
	}
	if text == "" {
		return nil
	}
	if index < 1 {
		index = 1
	}
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:     text,
				Location: &docs.Location{Index: index},
			},
		}},
	}
	if _, err := c.svc.Documents.BatchUpdate(documentID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert text into document %s: %w", documentID, err)
	}
	return nil
}
