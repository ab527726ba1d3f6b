package ports

import (
	"context"

	"github.com/aretw0/ragchat/pkg/domain"
)

// StreamHandlers are the callbacks a transport invokes for one channel.
// Implementations MUST call them serially, never concurrently, and never from
// the goroutine that called Open before Open returns.
type StreamHandlers struct {
	// OnEvent receives each decoded event. A non-nil error means the payload
	// was structurally invalid (see domain.ErrMalformedEvent).
	OnEvent func(ev domain.StreamEvent, err error)

	// OnFailure is called once when the channel stops delivering events:
	// connection loss, end of stream, or the consequence of Close.
	OnFailure func(err error)
}

// Channel is an open push channel.
type Channel interface {
	// Close terminates the channel. It is safe to call more than once.
	Close() error
}

// StreamDialer opens push channels to the backend agent.
type StreamDialer interface {
	// Open establishes a channel for the query. Handlers are bound before the
	// first event can be delivered. An error means no channel was created and
	// no handler will ever be called.
	Open(ctx context.Context, query string, handlers StreamHandlers) (Channel, error)
}

// MarkupRenderer converts assistant markdown into safe markup.
type MarkupRenderer func(markdown string) string
