// Package docstore is the HTTP client for the backend document corpus.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/aretw0/ragchat/pkg/ports"
)

// Backend routes.
const (
	UploadPath = "/upload"
	ListPath   = "/files/list"
	ClearPath  = "/files/clear"
)

// FormField is the repeated multipart field carrying each file.
const FormField = "files"

// StatusError reports a non-2xx answer.
type StatusError struct {
	StatusCode int
	Detail     string
	Errors     []string
}

func (e *StatusError) Error() string {
	switch {
	case len(e.Errors) > 0:
		return fmt.Sprintf("document store: %d: %s", e.StatusCode, strings.Join(e.Errors, "; "))
	case e.Detail != "":
		return fmt.Sprintf("document store: %d: %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("document store: %s", http.StatusText(e.StatusCode))
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// Client implements ports.DocumentStore over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends files as one multipart request.
func (c *Client) Upload(ctx context.Context, files []ports.File) (ports.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(FormField, filepath.Base(f.Name))
		if err != nil {
			return ports.UploadResult{}, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return ports.UploadResult{}, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return ports.UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, &buf)
	if err != nil {
		return ports.UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res ports.UploadResult
	if err := c.do(req, &res); err != nil {
		return ports.UploadResult{}, err
	}
	c.logger.Debug("documents uploaded", "count", len(files), "errors", len(res.Errors))
	return res, nil
}

// UploadPaths uploads local files. Paths with an unsupported extension are
// not sent; they are reported in the result's Errors the same way the backend
// reports its own rejections.
func (c *Client) UploadPaths(ctx context.Context, paths ...string) (ports.UploadResult, error) {
	var (
		files   []ports.File
		skipped []string
	)
	for _, p := range paths {
		name := filepath.Base(p)
		if !memory.Supported(name) {
			skipped = append(skipped, fmt.Sprintf("%s: unsupported format", name))
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		defer f.Close()
		files = append(files, ports.File{Name: name, Content: f})
	}

	if len(files) == 0 {
		return ports.UploadResult{Message: "0 files processed.", Errors: skipped}, nil
	}

	res, err := c.Upload(ctx, files)
	if err != nil {
		return res, err
	}
	res.Errors = append(skipped, res.Errors...)
	return res, nil
}

// List returns the file names known to the backend.
func (c *Client) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ListPath, nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := c.do(req, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Clear deletes every document and returns the backend's message.
func (c *Client) Clear(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+ClearPath, nil)
	if err != nil {
		return "", err
	}
	var res struct {
		Message string `json:"message"`
	}
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var body struct {
			Detail string   `json:"detail"`
			Errors []string `json:"errors"`
		}
		if json.Unmarshal(data, &body) == nil {
			se.Detail, se.Errors = body.Detail, body.Errors
		}
		return se
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
