package rooms_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/rooms"
	"github.com/okian/encore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newService(t *testing.T) (*rooms.Service, *storage.MemoryStore) {
	t.Helper()
	So(logger.Init(), ShouldBeNil)
	store := storage.NewMemoryStore()
	return rooms.New(store, catalog.Default()), store
}

func TestCreate(t *testing.T) {
	Convey("Given a fresh service", t, func() {
		svc, store := newService(t)
		ctx := t.Context()

		Convey("When creating a room", func() {
			room, err := svc.Create(ctx, "Ada")
			So(err, ShouldBeNil)

			Convey("Then the code is a 4-digit number", func() {
				So(len(room.ID), ShouldEqual, 4)
			})

			Convey("Then the creator is the sole member", func() {
				So(room.Judges, ShouldResemble, []string{"Ada"})
				So(room.Scores, ShouldBeEmpty)
				So(room.CreatedAt, ShouldBeGreaterThan, 0)
			})

			Convey("Then the room is persisted under its key", func() {
				raw, err := store.Get(ctx, rooms.Key(room.ID))
				So(err, ShouldBeNil)
				var stored model.Room
				So(json.Unmarshal(raw, &stored), ShouldBeNil)
				So(stored, ShouldResemble, room)
			})
		})

		Convey("When the creator name is blank", func() {
			_, err := svc.Create(ctx, "   ")
			So(err, ShouldEqual, rooms.ErrInvalidJudgeName)
		})
	})
}

func TestCreateCollision(t *testing.T) {
	Convey("Given a namespace where nearly every code is taken", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := context.Background()

		// Occupy all 2-digit codes except one so creation must retry into it.
		for code := 10; code <= 99; code++ {
			if code == 42 {
				continue
			}
			key := rooms.Key(strconv.Itoa(code))
			So(store.Set(ctx, key, []byte(`{"id":"x"}`)), ShouldBeNil)
		}

		svc := rooms.New(store, catalog.Default(),
			rooms.WithCodeDigits(2),
			rooms.WithCreateAttempts(10_000),
		)

		Convey("When creating a room", func() {
			room, err := svc.Create(ctx, "Ada")

			Convey("Then it lands on the only free code without overwriting", func() {
				So(err, ShouldBeNil)
				So(room.ID, ShouldEqual, "42")

				// Existing rooms are untouched.
				raw, err := store.Get(ctx, rooms.Key("10"))
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"id":"x"}`)
			})
		})
	})

	Convey("Given a namespace with every code taken", t, func() {
		So(logger.Init(), ShouldBeNil)
		store := storage.NewMemoryStore()
		ctx := context.Background()
		for code := 10; code <= 99; code++ {
			So(store.Set(ctx, rooms.Key(strconv.Itoa(code)), []byte(`{}`)), ShouldBeNil)
		}
		svc := rooms.New(store, catalog.Default(),
			rooms.WithCodeDigits(2),
			rooms.WithCreateAttempts(50),
		)

		Convey("Then creation gives up with no-free-code", func() {
			_, err := svc.Create(ctx, "Ada")
			So(err, ShouldEqual, rooms.ErrNoFreeCode)
		})
	})
}

func TestJoin(t *testing.T) {
	Convey("Given an existing room", t, func() {
		svc, _ := newService(t)
		ctx := t.Context()
		room, err := svc.Create(ctx, "Ada")
		So(err, ShouldBeNil)

		Convey("When a new judge joins", func() {
			got, err := svc.Join(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)

			Convey("Then membership grows in insertion order", func() {
				So(got.Judges, ShouldResemble, []string{"Ada", "Linus"})
			})
		})

		Convey("When the same judge joins twice", func() {
			_, err := svc.Join(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)
			got, err := svc.Join(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)

			Convey("Then the rejoin is idempotent", func() {
				So(got.Judges, ShouldResemble, []string{"Ada", "Linus"})
			})
		})

		Convey("When joining a nonexistent room", func() {
			_, err := svc.Join(ctx, "0000", "Linus")

			Convey("Then it fails with room-not-found", func() {
				So(err, ShouldEqual, rooms.ErrRoomNotFound)
			})
		})

		Convey("When joining with a blank name", func() {
			_, err := svc.Join(ctx, room.ID, " ")
			So(err, ShouldEqual, rooms.ErrInvalidJudgeName)
		})
	})
}

func TestJudgeManagement(t *testing.T) {
	Convey("Given a room with one judge", t, func() {
		svc, _ := newService(t)
		ctx := t.Context()
		room, err := svc.Create(ctx, "Ada")
		So(err, ShouldBeNil)

		Convey("When adding a new judge", func() {
			got, err := svc.AddJudge(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)
			So(got.Judges, ShouldResemble, []string{"Ada", "Linus"})
		})

		Convey("When adding a duplicate judge name", func() {
			_, err := svc.AddJudge(ctx, room.ID, "Ada")

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, rooms.ErrDuplicateJudge)
			})
		})

		Convey("When removing a judge who has scored", func() {
			_, err := svc.AddJudge(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)
			_, _, err = svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID:   "c1",
				RoundID:        1,
				Judge:          "Linus",
				CriteriaScores: map[string]float64{"pitch": 8},
			})
			So(err, ShouldBeNil)

			got, err := svc.RemoveJudge(ctx, room.ID, "Linus")
			So(err, ShouldBeNil)

			Convey("Then membership shrinks but scores are retained", func() {
				So(got.Judges, ShouldResemble, []string{"Ada"})
				So(len(got.Scores), ShouldEqual, 1)
				So(got.Scores[0].Judge, ShouldEqual, "Linus")
			})
		})

		Convey("When removing an unknown judge", func() {
			_, err := svc.RemoveJudge(ctx, room.ID, "Grace")
			So(err, ShouldEqual, rooms.ErrUnknownJudge)
		})
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given a room with a registered judge", t, func() {
		svc, _ := newService(t)
		ctx := t.Context()
		room, err := svc.Create(ctx, "Ada")
		So(err, ShouldBeNil)

		Convey("When submitting a valid score set", func() {
			got, replaced, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID:   "c1",
				RoundID:        1,
				Judge:          "Ada",
				CriteriaScores: map[string]float64{"pitch": 9.5, "technique": 7},
			})
			So(err, ShouldBeNil)

			Convey("Then it lands in the room with zero-filled criteria", func() {
				So(replaced, ShouldBeFalse)
				So(len(got.Scores), ShouldEqual, 1)
				s := got.Scores[0]
				So(s.CriteriaScores["pitch"], ShouldAlmostEqual, 9.5)
				So(s.CriteriaScores["emotion"], ShouldEqual, 0)
				So(s.CriteriaScores["stage"], ShouldEqual, 0)
				So(s.CriteriaScores["completion"], ShouldEqual, 0)
				So(s.UpdatedAt, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When resubmitting the same identity key", func() {
			submit := func(pitch float64) (model.Room, bool) {
				got, replaced, err := svc.Submit(ctx, room.ID, model.ScoreSet{
					ContestantID:   "c1",
					RoundID:        1,
					Judge:          "Ada",
					CriteriaScores: map[string]float64{"pitch": pitch},
				})
				So(err, ShouldBeNil)
				return got, replaced
			}
			submit(5)
			got, replaced := submit(9)

			Convey("Then the submission replaces, never accumulates", func() {
				So(replaced, ShouldBeTrue)
				So(len(got.Scores), ShouldEqual, 1)
				So(got.Scores[0].CriteriaScores["pitch"], ShouldEqual, 9)
			})
		})

		Convey("When a value exceeds the criterion maximum", func() {
			got, _, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID:   "c1",
				RoundID:        1,
				Judge:          "Ada",
				CriteriaScores: map[string]float64{"pitch": 12},
			})
			So(err, ShouldBeNil)

			Convey("Then it is clamped to the maximum, never stored above it", func() {
				So(got.Scores[0].CriteriaScores["pitch"], ShouldEqual, 10)
			})
		})

		Convey("When the judge is not a member", func() {
			_, _, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID: "c1", RoundID: 1, Judge: "Mallory",
			})
			So(err, ShouldEqual, rooms.ErrUnknownJudge)
		})

		Convey("When the contestant is unknown", func() {
			_, _, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID: "c9", RoundID: 1, Judge: "Ada",
			})
			So(err, ShouldEqual, rooms.ErrUnknownContestant)
		})

		Convey("When the round is unknown", func() {
			_, _, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID: "c1", RoundID: 9, Judge: "Ada",
			})
			So(err, ShouldEqual, rooms.ErrUnknownRound)
		})

		Convey("When a criterion id is unknown", func() {
			_, _, err := svc.Submit(ctx, room.ID, model.ScoreSet{
				ContestantID:   "c1",
				RoundID:        1,
				Judge:          "Ada",
				CriteriaScores: map[string]float64{"charisma": 3},
			})
			So(err, ShouldWrap, rooms.ErrUnknownCriterion)
		})
	})
}

func TestResetAndDelete(t *testing.T) {
	Convey("Given a room with scores", t, func() {
		svc, _ := newService(t)
		ctx := t.Context()
		room, err := svc.Create(ctx, "Ada")
		So(err, ShouldBeNil)
		_, _, err = svc.Submit(ctx, room.ID, model.ScoreSet{
			ContestantID: "c1", RoundID: 1, Judge: "Ada",
			CriteriaScores: map[string]float64{"pitch": 8},
		})
		So(err, ShouldBeNil)

		Convey("When resetting scores", func() {
			got, err := svc.ResetScores(ctx, room.ID)
			So(err, ShouldBeNil)

			Convey("Then scores are gone but membership stays", func() {
				So(got.Scores, ShouldBeEmpty)
				So(got.Judges, ShouldResemble, []string{"Ada"})
			})
		})

		Convey("When deleting the room", func() {
			So(svc.Delete(ctx, room.ID), ShouldBeNil)

			Convey("Then it reads back as room-not-found", func() {
				_, err := svc.Get(ctx, room.ID)
				So(err, ShouldEqual, rooms.ErrRoomNotFound)
			})
		})

		Convey("When deleting a nonexistent room", func() {
			So(svc.Delete(ctx, "0000"), ShouldEqual, rooms.ErrRoomNotFound)
		})
	})
}

func TestMalformedState(t *testing.T) {
	Convey("Given a corrupted room payload", t, func() {
		svc, store := newService(t)
		ctx := t.Context()
		So(store.Set(ctx, rooms.Key("7777"), []byte("{not json")), ShouldBeNil)

		Convey("When reading the room", func() {
			room, err := svc.Get(ctx, "7777")

			Convey("Then it degrades to an empty room shell, not an error", func() {
				So(err, ShouldBeNil)
				So(room.ID, ShouldEqual, "7777")
				So(room.Judges, ShouldBeEmpty)
				So(room.Scores, ShouldBeEmpty)
			})
		})
	})
}
