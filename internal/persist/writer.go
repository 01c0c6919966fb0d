// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

// DefaultWriteTimeout bounds a single background save.
const DefaultWriteTimeout = 5 * time.Second

type (
	// WriterOptions configures NewWriter.
	WriterOptions struct {
		// Logger receives save failures. Defaults to a discarding logger.
		Logger *log.Logger
		// OnError is called from the writer goroutine after a failed save.
		OnError func(error)
		// Timeout bounds each save. Defaults to DefaultWriteTimeout.
		Timeout time.Duration
	}

	// Writer saves state through a Store on a background goroutine. Its
	// SaveSnapshot and SaveDirectory methods never block on I/O.
	Writer struct {
		store   Store
		logger  *log.Logger
		onError func(error)
		timeout time.Duration

		mu      sync.Mutex
		root    *vfs.Node
		cwd     vpath.Path
		hasRoot bool
		hasCwd  bool
		closed  bool

		wake    chan struct{}
		flushCh chan chan struct{}
		stop    chan struct{}
		done    chan struct{}
	}

	// State is what a Store holds for one session.
	State struct {
		Root      *vfs.Node
		Directory vpath.Path
	}
)

// NewWriter starts the background goroutine. Call Close to stop it.
func NewWriter(store Store, opts WriterOptions) *Writer {
	w := &Writer{
		store:   store,
		logger:  opts.Logger,
		onError: opts.OnError,
		timeout: opts.Timeout,
		wake:    make(chan struct{}, 1),
		flushCh: make(chan chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.timeout <= 0 {
		w.timeout = DefaultWriteTimeout
	}
	go w.run()
	return w
}

// SaveSnapshot queues root for saving, replacing any snapshot still pending.
func (w *Writer) SaveSnapshot(root *vfs.Node) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.root, w.hasRoot = root, true
	w.mu.Unlock()
	w.signal()
}

// SaveDirectory queues cwd for saving, replacing any directory still pending.
func (w *Writer) SaveDirectory(cwd vpath.Path) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.cwd, w.hasCwd = cwd, true
	w.mu.Unlock()
	w.signal()
}

// Flush blocks until everything queued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushCh <- ack:
	case <-w.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes pending state, stops the goroutine and closes the store.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return w.store.Close()
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushCh:
			w.drain()
			close(ack)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

// drain writes whatever is pending. Only the newest values are written.
func (w *Writer) drain() {
	w.mu.Lock()
	root, hasRoot := w.root, w.hasRoot
	cwd, hasCwd := w.cwd, w.hasCwd
	w.root, w.hasRoot, w.hasCwd = nil, false, false
	w.mu.Unlock()

	if hasRoot {
		w.save("snapshot", func(ctx context.Context) error { return w.store.SaveSnapshot(ctx, root) })
	}
	if hasCwd {
		w.save("directory", func(ctx context.Context) error { return w.store.SaveDirectory(ctx, cwd) })
	}
}

func (w *Writer) save(what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		w.logger.Error("failed to save state", "what", what, "err", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.logger.Debug("saved state", "what", what)
}

// Load reads the saved tree and directory. Missing state yields a zero State.
// A corrupt tree is reported with ErrCorruptSnapshot; the directory is still
// returned when it could be read.
func Load(ctx context.Context, store Store) (State, error) {
	var st State
	cwd, err := store.LoadDirectory(ctx)
	if err != nil {
		return st, err
	}
	st.Directory = cwd
	root, err := store.LoadSnapshot(ctx)
	if err != nil {
		return st, err
	}
	if root != nil {
		if verr := root.Validate(); verr != nil {
			return st, fmt.Errorf("%w: %w", ErrCorruptSnapshot, verr)
		}
	}
	st.Root = root
	return st, nil
}
