// Package sse implements the push-channel transport: a Server-Sent Events
// stream from GET /api/agent/stream.
package sse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
)

// StreamPath is the backend route serving the event stream.
const StreamPath = "/api/agent/stream"

// StatusError reports a non-2xx answer to the stream request.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stream request failed: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("stream request failed: %d %s", e.StatusCode, e.Body)
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithHTTPClient overrides the HTTP client. Its Timeout must be zero, or it
// would cut long streams short.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dialer) {
		d.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dialer) {
		d.logger = l
	}
}

// Dialer implements ports.StreamDialer over SSE.
type Dialer struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewDialer creates a Dialer for the backend at baseURL.
func NewDialer(baseURL string, opts ...Option) *Dialer {
	d := &Dialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open requests the stream for query and starts the reader goroutine once the
// response headers arrive. Handlers only run on that goroutine.
func (d *Dialer) Open(ctx context.Context, query string, handlers ports.StreamHandlers) (ports.Channel, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	u := d.baseURL + StreamPath + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		cancel()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	ch := &channel{cancel: cancel}
	d.logger.Debug("stream opened", "url", u)
	go d.read(resp.Body, handlers)
	return ch, nil
}

func (d *Dialer) read(body io.ReadCloser, handlers ports.StreamHandlers) {
	defer body.Close()

	r := NewReader(body)
	for {
		frame, err := r.ReadFrame()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			d.logger.Debug("stream ended", "error", err)
			handlers.OnFailure(err)
			return
		}
		ev, err := domain.DecodeEvent(frame.Data)
		handlers.OnEvent(ev, err)
	}
}

type channel struct {
	once   sync.Once
	cancel context.CancelFunc
}

// Close cancels the request. It does not wait for the reader goroutine.
func (c *channel) Close() error {
	c.once.Do(c.cancel)
	return nil
}
