// Package transcript holds the two append-only views the controller writes to:
// the chat Transcript and the ActivityLog.
package transcript

import (
	"errors"
	"sync"

	"github.com/aretw0/ragchat/pkg/domain"
)

// ErrNotPlaceholder is returned when Update targets a message that is not a placeholder.
var ErrNotPlaceholder = errors.New("message is not a placeholder")

// ErrUnknownHandle is returned when a handle no longer refers to a transcript entry.
var ErrUnknownHandle = errors.New("unknown transcript handle")

// ChangeKind describes a transcript mutation.
type ChangeKind string

const (
	ChangeAppend ChangeKind = "append"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind    ChangeKind
	Message domain.Message
	// Scroll asks the view to scroll to the bottom.
	Scroll bool
}

// Handle is an owned reference to a transcript entry.
type Handle struct {
	entry *entry
}

// Valid reports whether the handle refers to an entry.
func (h Handle) Valid() bool { return h.entry != nil }

type entry struct {
	msg     domain.Message
	removed bool
}

// Transcript is an ordered list of messages. Messages are never mutated
// after append, except placeholders, which their owner may update or remove.
// Safe for concurrent use.
type Transcript struct {
	mu          sync.RWMutex
	entries     []*entry
	subscribers []func(Change)
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Subscribe registers a listener called synchronously after each mutation.
// Listeners must not call back into the Transcript.
func (t *Transcript) Subscribe(fn func(Change)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// Append adds a message at the end and returns its handle.
func (t *Transcript) Append(msg domain.Message) Handle {
	t.mu.Lock()
	e := &entry{msg: msg}
	t.entries = append(t.entries, e)
	subs := t.subscribers
	t.mu.Unlock()

	notify(subs, Change{Kind: ChangeAppend, Message: msg, Scroll: true})
	return Handle{entry: e}
}

// AppendPlaceholder adds a transient bot message that can later be updated and removed.
func (t *Transcript) AppendPlaceholder(content string) Handle {
	msg := domain.NewBotText(content)
	msg.Placeholder = true
	return t.Append(msg)
}

// Update replaces the content of a placeholder in place.
func (t *Transcript) Update(h Handle, content string) error {
	t.mu.Lock()
	if h.entry == nil || h.entry.removed {
		t.mu.Unlock()
		return ErrUnknownHandle
	}
	if !h.entry.msg.Placeholder {
		t.mu.Unlock()
		return ErrNotPlaceholder
	}
	h.entry.msg.Content = content
	msg := h.entry.msg
	subs := t.subscribers
	t.mu.Unlock()

	notify(subs, Change{Kind: ChangeUpdate, Message: msg})
	return nil
}

// Remove deletes the entry referenced by h. Removing twice is an error.
func (t *Transcript) Remove(h Handle) error {
	t.mu.Lock()
	if h.entry == nil || h.entry.removed {
		t.mu.Unlock()
		return ErrUnknownHandle
	}
	for i, e := range t.entries {
		if e == h.entry {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	h.entry.removed = true
	msg := h.entry.msg
	subs := t.subscribers
	t.mu.Unlock()

	notify(subs, Change{Kind: ChangeRemove, Message: msg})
	return nil
}

// Messages returns a snapshot of the transcript in order.
func (t *Transcript) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Message, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.msg
	}
	return out
}

// Len returns the number of entries, placeholders included.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (domain.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return domain.Message{}, false
	}
	return t.entries[len(t.entries)-1].msg, true
}

func notify[T any](subs []func(T), c T) {
	for _, fn := range subs {
		fn(c)
	}
}
