package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/google/uuid"
)

const lockPollInterval = 10 * time.Millisecond

type lease struct {
	token   string
	expires time.Time
}

// Locker implements ports.DistributedLocker within a single process.
// Safe for concurrent use.
type Locker struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

// NewLocker creates a new in-memory locker.
func NewLocker() *Locker {
	return &Locker{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

// Lock acquires key, polling until it is free or ctx is done.
// A lease older than its ttl is treated as released.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	token := uuid.NewString()
	if l.tryAcquire(key, token, ttl) {
		return l.unlockFunc(key, token), nil
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if l.tryAcquire(key, token, ttl) {
				return l.unlockFunc(key, token), nil
			}
		}
	}
}

// Held reports whether key is currently leased.
func (l *Locker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.leases[key]
	return ok && (cur.expires.IsZero() || l.now().Before(cur.expires))
}

func (l *Locker) tryAcquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.leases[key]; ok {
		if cur.expires.IsZero() || now.Before(cur.expires) {
			return false
		}
	}

	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	l.leases[key] = lease{token: token, expires: expires}
	return true
}

func (l *Locker) unlockFunc(key, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the holder may release; an expired lease may belong to someone else now.
		if cur, ok := l.leases[key]; ok && cur.token == token {
			delete(l.leases, key)
		}
		return nil
	}
}
