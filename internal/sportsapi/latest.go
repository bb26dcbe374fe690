package sportsapi

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a fetch that a newer query replaced.
var ErrSuperseded = errors.New("sportsapi: query superseded by a newer one")

// Latest runs one fetch at a time per caller, such as a search box or a date picker. Starting a fetch cancels the
// one in flight, and the superseded fetch's result is discarded.
type Latest[T any] struct {
	mu     sync.Mutex
	gen    uint64
	key    string
	cancel context.CancelFunc
}

// Do runs fetch for key. It returns ErrSuperseded if another Do started before fetch finished.
func (l *Latest[T]) Do(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	fctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.key = key
	l.cancel = cancel
	l.mu.Unlock()

	v, err := fetch(fctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		cancel()
		var zero T
		return zero, ErrSuperseded
	}
	l.cancel = nil
	cancel()
	return v, err
}

// Current is the key of the most recent query.
func (l *Latest[T]) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}

// Cancel aborts the fetch in flight, if any.
func (l *Latest[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
