// Package watch merges the storage change signal and a fixed-interval poll
// into a single per-room event stream. Callers subscribe once and observe
// every effective change to the room, regardless of which trigger caught it.
package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/rooms"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// defaultPollInterval is the fallback re-read cadence used when missed
// notifications must self-heal.
const defaultPollInterval = 2 * time.Second

// Event is one observed state of a watched room. Found is false when the
// room key is absent (deleted or never created); the room is then zero.
type Event struct {
	Room  model.Room
	Found bool
}

// Watcher re-reads rooms from the shared namespace on change notifications
// and on poll ticks, delivering only effective changes to subscribers.
type Watcher struct {
	store    storage.Store
	interval time.Duration
	log      logger.Logger
}

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithInterval sets the polling fallback interval.
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a Watcher over the given store.
func New(store storage.Store, opts ...Option) *Watcher {
	w := &Watcher{
		store:    store,
		interval: defaultPollInterval,
		log:      logger.Get().Named("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch subscribes fn to the room's event stream. The first event fires
// immediately with the current state; later events fire only when the stored
// payload actually changed. The returned stop function releases the ticker
// and the storage subscription; it is safe to call more than once.
func (w *Watcher) Watch(ctx context.Context, roomID string, fn func(Event)) (func(), error) {
	// Coalescing trigger: a pending re-read absorbs further signals.
	trigger := make(chan struct{}, 1)
	kick := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	unsubscribe, err := w.store.Subscribe(ctx, rooms.Key(roomID), func() {
		metrics.RecordSyncNotification()
		kick()
	})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}

	metrics.WatcherStarted()
	go w.run(ctx, roomID, trigger, done, fn)

	// Initial snapshot before any trigger arrives.
	kick()

	return stop, nil
}

func (w *Watcher) run(ctx context.Context, roomID string, trigger <-chan struct{}, done <-chan struct{}, fn func(Event)) {
	defer metrics.WatcherStopped()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last []byte
	var delivered bool

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			metrics.RecordSyncPollTick()
		case <-trigger:
		}

		raw, err := w.store.Get(ctx, rooms.Key(roomID))
		switch {
		case errors.Is(err, storage.ErrKeyNotFound):
			raw = nil
		case err != nil:
			w.log.Warn(ctx, "room re-read failed",
				logger.String("room", roomID), logger.Error(err))
			continue
		}

		// Suppress no-op deliveries: both triggers can observe the same
		// payload, and the poll re-reads unconditionally.
		if delivered && bytes.Equal(raw, last) {
			continue
		}
		last = raw
		delivered = true

		metrics.RecordSyncDelivery()
		fn(w.decode(ctx, roomID, raw))
	}
}

// decode turns a stored payload into an Event. A missing payload means the
// room is gone; a malformed one degrades to an empty room shell rather than
// failing the stream.
func (w *Watcher) decode(ctx context.Context, roomID string, raw []byte) Event {
	if raw == nil {
		return Event{}
	}
	var room model.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		w.log.Warn(ctx, "malformed room payload; degrading to empty room",
			logger.String("room", roomID), logger.Error(err))
		return Event{Room: model.Room{ID: roomID}, Found: true}
	}
	return Event{Room: room, Found: true}
}
