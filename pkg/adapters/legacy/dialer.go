// Package legacy presents the request/response endpoint POST /api/agent as a
// push channel, so the controller can drive a backend without SSE support.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
)

// AgentPath is the backend route answering one query.
const AgentPath = "/api/agent"

// UnknownError is shown when the backend fails without a detail.
const UnknownError = "unknown error"

// Request is the body of POST /api/agent.
type Request struct {
	Query string `json:"query"`
}

// Response is a successful answer.
type Response struct {
	Answer string         `json:"answer"`
	Stats  map[string]any `json:"stats,omitempty"`
}

// ErrorResponse is the body of a non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithHTTPClient overrides the HTTP client.
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

// Dialer implements ports.StreamDialer over a single POST.
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

// Open starts the request in the background. The answer arrives as exactly
// one FinalResult or Error event; a network failure arrives as OnFailure.
func (d *Dialer) Open(ctx context.Context, query string, handlers ports.StreamHandlers) (ports.Channel, error) {
	body, err := json.Marshal(Request{Query: query})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.baseURL+AgentPath, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	ch := &channel{cancel: cancel}
	go d.exchange(req, handlers)
	return ch, nil
}

func (d *Dialer) exchange(req *http.Request, handlers ports.StreamHandlers) {
	resp, err := d.client.Do(req)
	if err != nil {
		handlers.OnFailure(err)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		handlers.OnFailure(err)
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		if err := json.Unmarshal(data, &e); err != nil || e.Detail == "" {
			e.Detail = UnknownError
		}
		handlers.OnEvent(domain.Error{Text: e.Detail}, nil)
		handlers.OnFailure(errors.New("request complete"))
		return
	}

	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		handlers.OnEvent(nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err))
		handlers.OnFailure(errors.New("request complete"))
		return
	}
	d.logger.Debug("agent answered", "stats", r.Stats)
	handlers.OnEvent(domain.FinalResult{Text: r.Answer}, nil)
	// Mirrors the stream transport: the channel always ends with a failure
	// notification, which the controller discards once finalized.
	handlers.OnFailure(errors.New("request complete"))
}

type channel struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (c *channel) Close() error {
	c.once.Do(c.cancel)
	return nil
}
