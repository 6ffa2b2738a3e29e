package service_test

import (
	"testing"
	"time"

	service "github.com/okian/encore/internal/app"
	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/adapters/watch"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/rooms"
	"github.com/okian/encore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newStarted(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithStore(storage.NewMemoryStore())}, opts...)
	svc := service.New(opts...)
	So(svc.Start(t.Context()), ShouldBeNil)
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithStore(storage.NewMemoryStore()))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(t.Context())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["contestants"], ShouldEqual, 3)
				So(stats["rounds"], ShouldEqual, 3)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(t.Context()), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_RoomFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStarted(t)
		ctx := t.Context()

		Convey("When a room is created and judged", func() {
			room, err := svc.CreateRoom(ctx, "Ada")
			So(err, ShouldBeNil)
			So(room.ID, ShouldNotBeEmpty)

			_, err = svc.JoinRoom(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)

			_, replaced, err := svc.SubmitScore(ctx, room.ID, model.ScoreSet{
				ContestantID: "c2",
				RoundID:      1,
				Judge:        "Ada",
				CriteriaScores: map[string]float64{
					"pitch": 8, "technique": 7, "emotion": 5, "stage": 3, "completion": 2,
				},
			})
			So(err, ShouldBeNil)
			So(replaced, ShouldBeFalse)

			Convey("Then the leaderboard ranks the scored contestant first", func() {
				standings, err := svc.Leaderboard(ctx, room.ID)
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 3)
				So(standings[0].ContestantID, ShouldEqual, "c2")
				So(standings[0].TotalScore, ShouldEqual, 25.0)
				So(standings[0].Rank, ShouldEqual, 1)
			})

			Convey("And the share summary names the leader", func() {
				text, err := svc.ShareSummary(ctx, room.ID)
				So(err, ShouldBeNil)
				So(text, ShouldContainSubstring, "Wei")
			})

			Convey("And resubmitting replaces rather than accumulates", func() {
				_, replaced, err := svc.SubmitScore(ctx, room.ID, model.ScoreSet{
					ContestantID:   "c2",
					RoundID:        1,
					Judge:          "Ada",
					CriteriaScores: map[string]float64{"pitch": 4},
				})
				So(err, ShouldBeNil)
				So(replaced, ShouldBeTrue)

				standings, err := svc.Leaderboard(ctx, room.ID)
				So(err, ShouldBeNil)
				So(standings[0].TotalScore, ShouldEqual, 4.0)
			})

			Convey("And resetting clears scores but keeps the roster", func() {
				reset, err := svc.ResetScores(ctx, room.ID)
				So(err, ShouldBeNil)
				So(reset.Scores, ShouldBeEmpty)
				So(reset.Judges, ShouldResemble, []string{"Ada", "Linus"})
			})

			Convey("And deleting the room makes it unknown", func() {
				So(svc.DeleteRoom(ctx, room.ID), ShouldBeNil)
				_, err := svc.GetRoom(ctx, room.ID)
				So(err, ShouldWrap, rooms.ErrRoomNotFound)
			})
		})

		Convey("When looking up a room that does not exist", func() {
			_, err := svc.GetRoom(ctx, "0000")
			So(err, ShouldWrap, rooms.ErrRoomNotFound)
		})
	})
}

func TestService_Watch(t *testing.T) {
	Convey("Given a started service with a fast poll interval", t, func() {
		svc := newStarted(t, service.WithPollInterval(50*time.Millisecond))
		ctx := t.Context()

		room, err := svc.CreateRoom(ctx, "Ada")
		So(err, ShouldBeNil)

		events := make(chan watch.Event, 16)
		stop, err := svc.Watch(ctx, room.ID, func(ev watch.Event) { events <- ev })
		So(err, ShouldBeNil)
		defer stop()

		Convey("Then the stream opens with the current snapshot", func() {
			select {
			case ev := <-events:
				So(ev.Found, ShouldBeTrue)
				So(ev.Room.ID, ShouldEqual, room.ID)
			case <-time.After(2 * time.Second):
				So("timeout", ShouldBeEmpty)
			}

			Convey("And a submission produces a follow-up event", func() {
				_, _, err := svc.SubmitScore(ctx, room.ID, model.ScoreSet{
					ContestantID:   "c1",
					RoundID:        1,
					Judge:          "Ada",
					CriteriaScores: map[string]float64{"pitch": 9},
				})
				So(err, ShouldBeNil)

				select {
				case ev := <-events:
					So(ev.Room.Scores, ShouldHaveLength, 1)
				case <-time.After(2 * time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})
}
