package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/storage"
)

const (
	// Buffer size for queued snapshot writes
	queueSize = 256

	// Time allowed for a single store call
	writeTimeout = 5 * time.Second
)

// op is a queued store call; flush ops only signal that everything before
// them has been written
type op struct {
	room    *model.Room
	code    model.RoomCode
	flushed chan struct{}
}

// Writer applies snapshot writes to a SnapshotStore in order on a single
// background goroutine. Store failures are logged and dropped.
type Writer struct {
	store  storage.SnapshotStore
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan op
	stopped chan struct{}
}

// NewWriter creates a Writer and starts its worker
func NewWriter(store storage.SnapshotStore, logger *slog.Logger) *Writer {
	w := &Writer{
		store:   store,
		logger:  logger.With(slog.String("component", "persistence")),
		queue:   make(chan op, queueSize),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.stopped)
	for o := range w.queue {
		switch {
		case o.flushed != nil:
			close(o.flushed)
		case o.room != nil:
			w.apply(o.room.Code, "save snapshot", func(ctx context.Context) error {
				return w.store.SaveSnapshot(ctx, o.room)
			})
		default:
			w.apply(o.code, "delete snapshot", func(ctx context.Context) error {
				return w.store.DeleteSnapshot(ctx, o.code)
			})
		}
	}
}

func (w *Writer) apply(code model.RoomCode, action string, f func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := f(ctx); err != nil {
		w.logger.Error("failed to "+action,
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
	}
}

// Save queues a snapshot of the room
func (w *Writer) Save(room *model.Room) {
	w.enqueue(op{room: room.Clone(), code: room.Code})
}

// Delete queues removal of the room's snapshot
func (w *Writer) Delete(code model.RoomCode) {
	w.enqueue(op{code: code})
}

func (w *Writer) enqueue(o op) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.queue <- o:
	default:
		w.logger.Warn("snapshot write dropped - queue full",
			slog.String("room_code", string(o.code)))
	}
}

// Flush waits until every write queued before the call has been applied
func (w *Writer) Flush(ctx context.Context) error {
	flushed := make(chan struct{})

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return nil
	}
	select {
	case w.queue <- op{flushed: flushed}:
		w.mu.RUnlock()
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for queued ones to finish
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.stopped
}
