package transcript

import (
	"sync"

	"github.com/aretw0/ragchat/pkg/domain"
)

// ActivityLog is an append-only list of diagnostic lines.
// Safe for concurrent use.
type ActivityLog struct {
	mu          sync.RWMutex
	entries     []domain.LogEntry
	subscribers []func(domain.LogEntry)
}

// NewActivityLog creates an empty log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

// Subscribe registers a listener called synchronously after each append.
func (l *ActivityLog) Subscribe(fn func(domain.LogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// Append adds an entry.
func (l *ActivityLog) Append(e domain.LogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	subs := l.subscribers
	l.mu.Unlock()

	notify(subs, e)
}

// Add is a shorthand for Append(domain.NewLogEntry(severity, text)).
func (l *ActivityLog) Add(severity domain.Severity, text string) {
	l.Append(domain.NewLogEntry(severity, text))
}

// Entries returns a snapshot of the log in order.
func (l *ActivityLog) Entries() []domain.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
