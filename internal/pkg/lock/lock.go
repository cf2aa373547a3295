// Package lock provides keyed mutual exclusion: per-user locks for wallet
// updates and per-game-day locks for result declarations.
package lock

import (
	"context"
	"sync"
	"time"
)

// keyMutex wraps a mutex with reference counting for cleanup.
type keyMutex struct {
	mu       sync.Mutex
	refCount int
}

// KeyLock serializes work per key. Different keys never block each other.
type KeyLock[K comparable] struct {
	locks sync.Map // map[K]*keyMutex
	pool  sync.Pool
}

// New creates a KeyLock for any comparable key type.
func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{
		pool: sync.Pool{
			New: func() any {
				return &keyMutex{}
			},
		},
	}
}

// UserLock serializes wallet operations per Telegram user id.
type UserLock = KeyLock[int64]

// NewUserLock creates a per-user lock.
func NewUserLock() *UserLock {
	return New[int64]()
}

// GameDay identifies one game's declarations for one day.
type GameDay struct {
	GameID int64
	Day    string // YYYY-MM-DD
}

// GameDayLock serializes declarations and deletions per game-day.
type GameDayLock = KeyLock[GameDay]

// NewGameDayLock creates a per-game-day lock.
func NewGameDayLock() *GameDayLock {
	return New[GameDay]()
}

func (kl *KeyLock[K]) getLock(key K) *keyMutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*keyMutex)
	}

	newLock := kl.pool.Get().(*keyMutex)
	newLock.refCount = 0

	// Another goroutine may have stored one first.
	actual, loaded := kl.locks.LoadOrStore(key, newLock)
	if loaded {
		kl.pool.Put(newLock)
	}
	return actual.(*keyMutex)
}

// Lock acquires the lock for a key.
func (kl *KeyLock[K]) Lock(key K) {
	lock := kl.getLock(key)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a key.
func (kl *KeyLock[K]) Unlock(key K) {
	if v, ok := kl.locks.Load(key); ok {
		lock := v.(*keyMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyLock[K]) TryLock(key K) bool {
	lock := kl.getLock(key)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// LockWithTimeout attempts to acquire the lock until the timeout expires or
// ctx is done. It returns false if the lock was not acquired.
func (kl *KeyLock[K]) LockWithTimeout(ctx context.Context, key K, timeout time.Duration) bool {
	lock := kl.getLock(key)

	done := make(chan struct{})
	go func() {
		lock.mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		lock.refCount++
		return true
	case <-timeoutCtx.Done():
		// The waiter still gets the mutex eventually; hand it straight back.
		go func() {
			<-done
			lock.mu.Unlock()
		}()
		return false
	}
}

// WithLock executes fn while holding the key's lock.
func (kl *KeyLock[K]) WithLock(key K, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext executes fn while holding the key's lock, giving up with
// ErrLockTimeout if the lock is not acquired within timeout.
func (kl *KeyLock[K]) WithLockContext(ctx context.Context, key K, timeout time.Duration, fn func() error) error {
	if !kl.LockWithTimeout(ctx, key, timeout) {
		return ErrLockTimeout
	}
	defer kl.Unlock(key)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// IsLocked reports whether the key is currently locked. The answer may be
// stale as soon as it is returned.
func (kl *KeyLock[K]) IsLocked(key K) bool {
	if v, ok := kl.locks.Load(key); ok {
		lock := v.(*keyMutex)
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
