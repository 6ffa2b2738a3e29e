package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/encore/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		cat := catalog.Default()

		Convey("Then it validates", func() {
			So(cat.Validate(), ShouldBeNil)
		})

		Convey("Then every round's total_max equals its criteria sum", func() {
			for _, r := range cat.Rounds {
				var sum float64
				for _, c := range r.Criteria {
					sum += c.MaxScore
				}
				So(sum, ShouldAlmostEqual, r.TotalMax)
			}
		})

		Convey("Then lookups resolve known ids", func() {
			_, ok := cat.Contestant("c2")
			So(ok, ShouldBeTrue)
			r, ok := cat.Round(3)
			So(ok, ShouldBeTrue)
			_, ok = r.Criterion("pitch")
			So(ok, ShouldBeTrue)
		})

		Convey("Then lookups reject unknown ids", func() {
			_, ok := cat.Contestant("c9")
			So(ok, ShouldBeFalse)
			_, ok = cat.Round(7)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		cat := catalog.Default()

		Convey("When a value exceeds the criterion max", func() {
			v, ok := cat.Clamp(1, "pitch", 12)

			Convey("Then it is clamped to the max, never stored above it", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 10)
			})
		})

		Convey("When a value is negative", func() {
			v, ok := cat.Clamp(1, "stage", -3)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0)
		})

		Convey("When a value sits between steps", func() {
			v, ok := cat.Clamp(1, "pitch", 7.44)

			Convey("Then it snaps to the 0.1 step", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 7.4)
			})
		})

		Convey("When the criterion is unknown", func() {
			_, ok := cat.Clamp(1, "charisma", 5)
			So(ok, ShouldBeFalse)
		})

		Convey("When the round is unknown", func() {
			_, ok := cat.Clamp(9, "pitch", 5)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a catalog with a broken total_max", t, func() {
		cat := catalog.Default()
		cat.Rounds[0].TotalMax = 99

		Convey("Then validation fails with the invalid-catalog kind", func() {
			err := cat.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "total_max")
		})
	})

	Convey("Given a catalog with duplicate contestant ids", t, func() {
		cat := catalog.Default()
		cat.Contestants[1].ID = cat.Contestants[0].ID

		So(cat.Validate(), ShouldNotBeNil)
	})

	Convey("Given a catalog with a non-positive max score", t, func() {
		cat := catalog.Default()
		cat.Rounds[0].Criteria[0].MaxScore = 0
		cat.Rounds[0].TotalMax = 20

		So(cat.Validate(), ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a YAML catalog file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "catalog.yaml")
		payload := `
contestants:
  - id: s1
    name: Solo
    title: The only one
rounds:
  - id: 1
    title: Round 1
    total_max: 15
    criteria:
      - id: pitch
        name: Pitch
        max_score: 10
      - id: stage
        name: Stage
        max_score: 5
`
		So(os.WriteFile(path, []byte(payload), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			cat, err := catalog.Load(path)

			Convey("Then the catalog parses and validates", func() {
				So(err, ShouldBeNil)
				So(len(cat.Contestants), ShouldEqual, 1)
				So(len(cat.Rounds), ShouldEqual, 1)
				So(cat.Rounds[0].TotalMax, ShouldEqual, 15)
			})
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := catalog.Load("/nonexistent/catalog.yaml")
		So(err, ShouldNotBeNil)
	})
}
