package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalLocker is an in-process Locker for single-replica deployments and
// tests. Expired entries are replaced on the next TryLock.
type LocalLocker struct {
	mu    sync.Mutex
	now   func() time.Time
	locks map[string]localEntry
}

type localEntry struct {
	token     string
	expiresAt time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{now: time.Now, locks: make(map[string]localEntry)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[key] = localEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok || e.token != token {
		return ErrLockNotOwned
	}
	delete(l.locks, key)
	return nil
}
