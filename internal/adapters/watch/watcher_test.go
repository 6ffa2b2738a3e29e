package watch_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/adapters/watch"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/rooms"
	"github.com/okian/encore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func putRoom(t *testing.T, store storage.Store, room model.Room) {
	t.Helper()
	raw, err := json.Marshal(room)
	So(err, ShouldBeNil)
	So(store.Set(t.Context(), rooms.Key(room.ID), raw), ShouldBeNil)
}

func waitEvent(events <-chan watch.Event) (watch.Event, bool) {
	select {
	case ev := <-events:
		return ev, true
	case <-time.After(2 * time.Second):
		return watch.Event{}, false
	}
}

func TestWatchDeliversChanges(t *testing.T) {
	Convey("Given a watched room", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := t.Context()

		putRoom(t, store, model.Room{ID: "4821", Judges: []string{"Ada"}})

		w := watch.New(store, watch.WithInterval(50*time.Millisecond))
		events := make(chan watch.Event, 16)
		stop, err := w.Watch(ctx, "4821", func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)
		defer stop()

		Convey("Then the initial snapshot arrives first", func() {
			ev, ok := waitEvent(events)
			So(ok, ShouldBeTrue)
			So(ev.Found, ShouldBeTrue)
			So(ev.Room.ID, ShouldEqual, "4821")
			So(ev.Room.Judges, ShouldResemble, []string{"Ada"})

			Convey("And a write to the room produces a follow-up event", func() {
				putRoom(t, store, model.Room{ID: "4821", Judges: []string{"Ada", "Linus"}})

				ev, ok := waitEvent(events)
				So(ok, ShouldBeTrue)
				So(ev.Room.Judges, ShouldResemble, []string{"Ada", "Linus"})
			})

			Convey("And an unchanged payload is not re-delivered by the poll", func() {
				select {
				case <-events:
					So("no event", ShouldEqual, "expected")
				case <-time.After(200 * time.Millisecond):
					// several poll ticks elapsed with no duplicate delivery
				}
			})
		})
	})
}

func TestWatchMissingRoom(t *testing.T) {
	Convey("Given a watch on a room that does not exist", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := t.Context()

		w := watch.New(store, watch.WithInterval(50*time.Millisecond))
		events := make(chan watch.Event, 16)
		stop, err := w.Watch(ctx, "0000", func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)
		defer stop()

		Convey("Then the stream reports not-found instead of an empty room", func() {
			ev, ok := waitEvent(events)
			So(ok, ShouldBeTrue)
			So(ev.Found, ShouldBeFalse)
		})
	})
}

func TestWatchRoomDeleted(t *testing.T) {
	Convey("Given a watched room that gets deleted", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := t.Context()

		putRoom(t, store, model.Room{ID: "4821"})

		w := watch.New(store, watch.WithInterval(50*time.Millisecond))
		events := make(chan watch.Event, 16)
		stop, err := w.Watch(ctx, "4821", func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)
		defer stop()

		ev, ok := waitEvent(events)
		So(ok, ShouldBeTrue)
		So(ev.Found, ShouldBeTrue)

		Convey("When the room key is removed", func() {
			So(store.Delete(ctx, rooms.Key("4821")), ShouldBeNil)

			Convey("Then a not-found event follows", func() {
				ev, ok := waitEvent(events)
				So(ok, ShouldBeTrue)
				So(ev.Found, ShouldBeFalse)
			})
		})
	})
}

func TestWatchMalformedPayload(t *testing.T) {
	Convey("Given a room whose payload is corrupted after the first read", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := t.Context()

		putRoom(t, store, model.Room{ID: "4821", Judges: []string{"Ada"}})

		w := watch.New(store, watch.WithInterval(50*time.Millisecond))
		events := make(chan watch.Event, 16)
		stop, err := w.Watch(ctx, "4821", func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)
		defer stop()

		_, ok := waitEvent(events)
		So(ok, ShouldBeTrue)

		Convey("When the stored payload becomes malformed", func() {
			So(store.Set(ctx, rooms.Key("4821"), []byte("{broken")), ShouldBeNil)

			Convey("Then the stream degrades to an empty room shell", func() {
				ev, ok := waitEvent(events)
				So(ok, ShouldBeTrue)
				So(ev.Found, ShouldBeTrue)
				So(ev.Room.ID, ShouldEqual, "4821")
				So(ev.Room.Judges, ShouldBeEmpty)
			})
		})
	})
}

func TestWatchStop(t *testing.T) {
	Convey("Given a stopped watch", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := t.Context()

		putRoom(t, store, model.Room{ID: "4821"})

		w := watch.New(store, watch.WithInterval(50*time.Millisecond))
		events := make(chan watch.Event, 16)
		stop, err := w.Watch(ctx, "4821", func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)

		_, ok := waitEvent(events)
		So(ok, ShouldBeTrue)

		stop()
		// Stopping twice must be safe.
		stop()

		Convey("Then later writes deliver nothing", func() {
			putRoom(t, store, model.Room{ID: "4821", Judges: []string{"Ada"}})
			select {
			case <-events:
				So("no event", ShouldEqual, "expected")
			case <-time.After(200 * time.Millisecond):
			}
		})
	})
}
