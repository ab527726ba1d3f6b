package controller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
)

var errClosedByClient = errors.New("stream closed by client")

// fakeDialer records every channel it opens. Tests drive the handlers directly.
type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	openErr  error

	// failOnClose mimics browser EventSource: closing the channel fires the
	// failure handler from the transport's goroutine.
	failOnClose bool

	// block makes Open wait until ctx is done.
	block bool
}

func (d *fakeDialer) Open(ctx context.Context, query string, handlers ports.StreamHandlers) (ports.Channel, error) {
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.openErr != nil {
		return nil, d.openErr
	}
	ch := &fakeChannel{
		query:       query,
		handlers:    handlers,
		failOnClose: d.failOnClose,
		failed:      make(chan struct{}),
	}
	d.mu.Lock()
	d.channels = append(d.channels, ch)
	d.mu.Unlock()
	return ch, nil
}

func (d *fakeDialer) opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

func (d *fakeDialer) last() *fakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}

type fakeChannel struct {
	query       string
	handlers    ports.StreamHandlers
	closed      atomic.Bool
	failOnClose bool
	failed      chan struct{}
}

func (c *fakeChannel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.failOnClose {
		go func() {
			c.handlers.OnFailure(errClosedByClient)
			close(c.failed)
		}()
	}
	return nil
}

func (c *fakeChannel) emit(events ...domain.StreamEvent) {
	for _, ev := range events {
		c.handlers.OnEvent(ev, nil)
	}
}

func (c *fakeChannel) emitMalformed(err error) {
	c.handlers.OnEvent(nil, err)
}

func (c *fakeChannel) drop(err error) {
	c.handlers.OnFailure(err)
}
