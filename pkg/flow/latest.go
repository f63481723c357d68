package flow

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to an attempt that a newer attempt replaced
// before it completed. Its result must be discarded.
var ErrSuperseded = errors.New("flow: superseded by a newer attempt")

// Latest serialises a phase so only the most recent attempt counts.
// Starting an attempt cancels the context of any attempt still in flight.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Go runs fn as the newest attempt. It returns ErrSuperseded when another
// call to Go started before fn returned.
func (l *Latest) Go(ctx context.Context, fn func(context.Context) error) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	mine := l.seq
	attemptCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	err := fn(attemptCtx)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()
	if l.seq != mine {
		return ErrSuperseded
	}
	l.cancel = nil
	return err
}

// Do is Go for attempts that produce a value.
func Do[T any](ctx context.Context, l *Latest, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := l.Go(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
