package ports

import (
	"context"
	"io"
)

// File is a named document to upload.
type File struct {
	Name    string
	Content io.Reader
}

// UploadResult is the backend's answer to an upload.
type UploadResult struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// DocumentStore manages the backend document corpus.
type DocumentStore interface {
	Upload(ctx context.Context, files []File) (UploadResult, error)
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) (string, error)
}
