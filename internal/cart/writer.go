package cart

import (
	"context"
	"sync"
	"time"

	"github.com/marinamsm/GoMarketplace/internal/storage"
)

// writer is the only goroutine that writes the cart key. Requests queued while a write
// is in flight collapse into one write of the newest blob, which confirms all of them.
type writer struct {
	storage storage.Storage
	key     string
	timeout time.Duration

	mu       sync.Mutex
	pending  []byte
	waiters  []chan error
	busy     bool
	barriers []chan struct{}

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

func newWriter(s storage.Storage, key string, timeout time.Duration) *writer {
	w := &writer{
		storage: s,
		key:     key,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w
}

// enqueue never blocks, so callers may hold their own lock while calling it.
func (w *writer) enqueue(data []byte) <-chan error {
	done := make(chan error, 1)

	w.mu.Lock()
	w.pending = data
	w.waiters = append(w.waiters, done)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return done
}

// barrier is closed once every write queued before the call has reached storage,
// successfully or not.
func (w *writer) barrier() <-chan struct{} {
	ch := make(chan struct{})

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.busy && len(w.waiters) == 0 {
		close(ch)
		return ch
	}
	w.barriers = append(w.barriers, ch)
	return ch
}

func (w *writer) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *writer) flush() {
	w.mu.Lock()
	data, waiters := w.pending, w.waiters
	w.pending, w.waiters = nil, nil
	w.busy = len(waiters) > 0
	w.mu.Unlock()

	if len(waiters) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	err := w.storage.SetItem(ctx, w.key, string(data))
	cancel()

	for _, done := range waiters {
		done <- err
	}

	w.mu.Lock()
	w.busy = false
	if len(w.waiters) == 0 {
		for _, ch := range w.barriers {
			close(ch)
		}
		w.barriers = nil
	}
	w.mu.Unlock()
}

// close writes whatever is still pending and stops the loop.
func (w *writer) close() {
	close(w.stop)
	w.wg.Wait()
}
