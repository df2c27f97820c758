package observer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher runs observer tasks off the conversation's critical path. The
// Dispatch call must return before the task completes. At most one task per
// key runs at a time; a duplicate dispatch for an in-flight key is dropped,
// which keeps note writes at-most-once per question id under correct
// operation.
type Dispatcher interface {
	Dispatch(key string, task func(ctx context.Context))
}

// GoDispatcher runs tasks on detached goroutines with a per-task timeout.
type GoDispatcher struct {
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func NewGoDispatcher(timeout time.Duration) *GoDispatcher {
	return &GoDispatcher{
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

func (d *GoDispatcher) Dispatch(key string, task func(ctx context.Context)) {
	d.mu.Lock()
	if _, running := d.inflight[key]; running {
		d.mu.Unlock()
		slog.Warn("observer task already in flight; dropping duplicate dispatch", "key", key)
		return
	}
	d.inflight[key] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			delete(d.inflight, key)
			d.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		task(ctx)
	}()
}

// Wait blocks until all dispatched tasks finish. Used on shutdown and in
// tests; the conversation path never calls it.
func (d *GoDispatcher) Wait() {
	d.wg.Wait()
}
