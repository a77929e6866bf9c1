// Package storage abstracts object storage for tournament banner assets.
package storage

import (
	"context"
	"io"
)

// UploadResult identifies a stored object: its key, the public URL it will be
// served from, and the backend's content ETag.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the banner storage contract. Keys are caller-chosen paths
// (e.g. "tournaments/7/banner"); uploading to an existing key replaces the
// object.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL maps a key to its externally reachable URL, or returns ""
	// when the backend has no public base configured.
	GetPublicURL(key string) string
}
