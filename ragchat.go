package ragchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/adapters/docstore"
	"github.com/aretw0/ragchat/pkg/adapters/legacy"
	"github.com/aretw0/ragchat/pkg/adapters/sse"
	"github.com/aretw0/ragchat/pkg/controller"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// DefaultTimeout bounds connection setup and document requests.
const DefaultTimeout = 30 * time.Second

// Client is the high-level entry point: one controller, its transport and
// the document store of one backend.
type Client struct {
	baseURL    string
	controller *controller.Controller
	documents  *docstore.Client
	logger     *slog.Logger
}

type options struct {
	legacy       bool
	timeout      time.Duration
	httpClient   *http.Client
	dialer       ports.StreamDialer
	logger       *slog.Logger
	locker       ports.DistributedLocker
	controllerOp []controller.Option
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLegacy selects the one-shot POST /api/agent transport instead of the event stream.
func WithLegacy(enabled bool) Option {
	return func(o *options) {
		o.legacy = enabled
	}
}

// WithTimeout bounds connection setup and document requests. It never cuts
// an open stream short; see WithIdleTimeout for that.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHTTPClient overrides the HTTP client used for every request.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithDialer injects a custom transport, bypassing WithLegacy.
func WithDialer(d ports.StreamDialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithIdleTimeout sets how long a session may go without events. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.controllerOp = append(o.controllerOp, controller.WithIdleTimeout(d))
	}
}

// WithMaxInputSize sets the largest accepted query in bytes.
func WithMaxInputSize(n int) Option {
	return func(o *options) {
		o.controllerOp = append(o.controllerOp, controller.WithMaxInputSize(n))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.controllerOp = append(o.controllerOp, controller.WithLifecycleHooks(hooks))
	}
}

// WithLocker shares the "one active query" rule with other processes using
// the same backend. The lock key is the backend URL.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(o *options) {
		o.locker = locker
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	o := &options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	streamHTTP, requestHTTP := o.httpClient, o.httpClient
	if streamHTTP == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = o.timeout
		streamHTTP = &http.Client{Transport: transport}
		requestHTTP = &http.Client{Timeout: o.timeout}
	}

	dialer := o.dialer
	if dialer == nil {
		if o.legacy {
			dialer = legacy.NewDialer(baseURL, legacy.WithHTTPClient(streamHTTP), legacy.WithLogger(o.logger))
		} else {
			dialer = sse.NewDialer(baseURL, sse.WithHTTPClient(streamHTTP), sse.WithLogger(o.logger))
		}
	}

	ctrlOpts := []controller.Option{controller.WithLogger(o.logger)}
	if o.locker != nil {
		ctrlOpts = append(ctrlOpts, controller.WithLocker(o.locker, baseURL))
	}
	ctrlOpts = append(ctrlOpts, o.controllerOp...)

	return &Client{
		baseURL:    baseURL,
		controller: controller.New(dialer, transcript.New(), transcript.NewActivityLog(), ctrlOpts...),
		documents:  docstore.New(baseURL, docstore.WithHTTPClient(requestHTTP), docstore.WithLogger(o.logger)),
		logger:     o.logger,
	}, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Controller returns the streaming response controller.
func (c *Client) Controller() *controller.Controller { return c.controller }

// Transcript returns the conversation transcript.
func (c *Client) Transcript() *transcript.Transcript { return c.controller.Transcript() }

// ActivityLog returns the activity log.
func (c *Client) ActivityLog() *transcript.ActivityLog { return c.controller.ActivityLog() }

// Documents returns the document store client.
func (c *Client) Documents() *docstore.Client { return c.documents }

// Submit starts a query without waiting for its outcome.
func (c *Client) Submit(ctx context.Context, query string) (*controller.Session, error) {
	return c.controller.Submit(ctx, query)
}

// Cancel aborts the active query, if any.
func (c *Client) Cancel() bool {
	return c.controller.Cancel()
}

// ErrNothingSubmitted is returned by Ask for a query that is empty after trimming.
var ErrNothingSubmitted = errors.New("nothing submitted: query is empty")

// Ask submits query and waits for the terminal outcome. The returned message
// is the one appended to the transcript. A failed exchange is not an error:
// it is reported through the outcome.
func (c *Client) Ask(ctx context.Context, query string) (domain.Message, domain.Outcome, error) {
	s, err := c.controller.Submit(ctx, query)
	if err != nil {
		return domain.Message{}, domain.Outcome{}, err
	}
	if s == nil {
		return domain.Message{}, domain.Outcome{}, ErrNothingSubmitted
	}

	// Cancelling ctx finalizes the session, so Done always closes.
	<-s.Done()
	msg, _ := s.Result()
	out, _ := s.Outcome()
	return msg, out, nil
}
