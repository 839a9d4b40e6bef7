package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds a single store write from the worker.
const DefaultWriteTimeout = 5 * time.Second

// Recorder writes entries to a Store asynchronously. Record never blocks:
// when the queue is full the entry is dropped and OnDrop is called.
type Recorder struct {
	store  Store
	queue  chan *Entry
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	onDrop       func()
	writeTimeout time.Duration
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithDropHandler sets the callback invoked for each dropped entry.
func WithDropHandler(fn func()) RecorderOption {
	return func(r *Recorder) { r.onDrop = fn }
}

// WithWriteTimeout overrides DefaultWriteTimeout.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.writeTimeout = d }
}

// NewRecorder starts a recorder with a queue of the given size.
func NewRecorder(store Store, buffer int, opts ...RecorderOption) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}

	r := &Recorder{
		store:        store,
		queue:        make(chan *Entry, buffer),
		done:         make(chan struct{}),
		logger:       slog.Default().With("component", "journal.recorder"),
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Store returns the backing store.
func (r *Recorder) Store() Store {
	return r.store
}

// Record enqueues e. It reports false when e was dropped.
func (r *Recorder) Record(e *Entry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(e, "recorder closed")
		return false
	}

	select {
	case r.queue <- e:
		return true
	default:
		r.drop(e, "queue full")
		return false
	}
}

func (r *Recorder) drop(e *Entry, reason string) {
	r.logger.Warn("dropping journal entry",
		"request_id", e.RequestID,
		"reason", reason,
		"queue_capacity", cap(r.queue),
	)
	if r.onDrop != nil {
		r.onDrop()
	}
}

// Close stops accepting entries, drains the queue and waits for pending
// writes. It does not close the store.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case e := <-r.queue:
			r.write(e)
		case <-r.done:
			for {
				select {
				case e := <-r.queue:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.store.Append(ctx, e); err != nil {
		r.logger.Error("failed to write journal entry",
			"request_id", e.RequestID,
			"error", err,
		)
	}
}
