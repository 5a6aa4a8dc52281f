// Package lock serializes read-modify-write cycles on one ledger partition.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrPartitionLockTimeout is returned when a partition lock is not acquired in time
var ErrPartitionLockTimeout = errors.New("partition lock timeout")

// Locker grants exclusive access to a key until release is called.
// release is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func timeoutError(key string, waited time.Duration) error {
	return fmt.Errorf("%w: %s after %s", ErrPartitionLockTimeout, key, waited)
}

// KeyedMutex is an in-process Locker. Different keys never block each other.
type KeyedMutex struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates a KeyedMutex; timeout <= 0 waits until ctx ends
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{
		timeout: timeout,
		locks:   make(map[string]*keyLock),
	}
}

// Acquire blocks until key is free, ctx is done or the timeout elapses
func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	var timeout <-chan time.Time
	if m.timeout > 0 {
		timer := time.NewTimer(m.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(key, l)
		return nil, ctx.Err()
	case <-timeout:
		m.unref(key, l)
		return nil, timeoutError(key, m.timeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.unref(key, l)
		})
	}, nil
}

func (m *KeyedMutex) unref(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

// Chain acquires every locker in order and releases them in reverse
func Chain(lockers ...Locker) Locker {
	return chain(lockers)
}

type chain []Locker

func (c chain) Acquire(ctx context.Context, key string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, l := range c {
		release, err := l.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
