// Package google holds the OAuth scope registry and shared plumbing for
// Google API access: the oauth2 configuration for the Google endpoint, the
// authenticated HTTP client, and the TokenProvider abstraction the API client
// packages consume.
package google
