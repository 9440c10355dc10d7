package normalize_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/scoutval/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a raw value, a baseline and a weight", t, func() {
		Convey("When 45 minutes are normalized against 90", func() {
			s := normalize.Normalize(45, 90, 0.1)

			Convey("Then the normalized value is exactly one half", func() {
				So(s.NormalizedValue, ShouldEqual, 0.5)
				So(s.WeightedContribution, ShouldEqual, 0.5*0.1)
				So(s.RawValue, ShouldEqual, 45)
				So(s.ReferenceBaseline, ShouldEqual, 90)
			})
		})

		Convey("When the raw value exceeds the baseline", func() {
			s := normalize.Normalize(3, 1, 0.25)

			Convey("Then the value is not clamped", func() {
				So(s.NormalizedValue, ShouldEqual, 3)
				So(s.WeightedContribution, ShouldEqual, 0.75)
			})
		})

		Convey("When the weight is negative", func() {
			s := normalize.Normalize(2, 5, -0.025)

			Convey("Then the contribution is a penalty", func() {
				So(s.WeightedContribution, ShouldBeLessThan, 0)
				So(s.WeightedContribution, ShouldEqual, (2.0/5.0)*-0.025)
			})
		})
	})
}

func TestNormalizeIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		raw := r.Float64()*2000 - 1000
		base := r.Float64()*100 + 0.001
		w := r.Float64()*2 - 1
		s := normalize.Normalize(raw, base, w)
		if s.NormalizedValue != raw/base {
			t.Fatalf("normalized %v != %v/%v", s.NormalizedValue, raw, base)
		}
		if s.WeightedContribution != s.NormalizedValue*w {
			t.Fatalf("contribution %v != %v*%v", s.WeightedContribution, s.NormalizedValue, w)
		}
	}
}

func TestPerGame(t *testing.T) {
	Convey("Given a season count", t, func() {
		Convey("When the player has no appearances", func() {
			v := normalize.PerGame(3, 0)

			Convey("Then the denominator is one", func() {
				So(v, ShouldEqual, 3.0)
				So(math.IsInf(v, 0), ShouldBeFalse)
				So(math.IsNaN(v), ShouldBeFalse)
			})
		})

		Convey("When the player has appearances", func() {
			So(normalize.PerGame(10, 20), ShouldEqual, 0.5)
		})

		Convey("When guarding baselines", func() {
			So(normalize.AtLeastOne(0), ShouldEqual, 1)
			So(normalize.AtLeastOne(80), ShouldEqual, 80)
		})
	})
}

func TestSum(t *testing.T) {
	Convey("Given a map of stats", t, func() {
		stats := map[string]normalize.Stat{
			"a": normalize.Normalize(1, 3, 0.1),
			"b": normalize.Normalize(7, 11, 0.3),
			"c": normalize.Normalize(5, 2, -0.05),
			"d": normalize.Normalize(13, 17, 0.2),
		}
		want := stats["a"].WeightedContribution + stats["b"].WeightedContribution +
			stats["c"].WeightedContribution + stats["d"].WeightedContribution

		Convey("Then the sum matches any summation order within tolerance", func() {
			reversed := stats["d"].WeightedContribution + stats["c"].WeightedContribution +
				stats["b"].WeightedContribution + stats["a"].WeightedContribution
			So(normalize.Sum(stats), ShouldAlmostEqual, want, 1e-9)
			So(normalize.Sum(stats), ShouldAlmostEqual, reversed, 1e-9)
		})

		Convey("Then repeated sums are bit-identical", func() {
			first := normalize.Sum(stats)
			for i := 0; i < 50; i++ {
				So(normalize.Sum(stats), ShouldEqual, first)
			}
		})

		Convey("Then an empty map sums to zero", func() {
			So(normalize.Sum(nil), ShouldEqual, 0)
		})

		Convey("Then a clone is independent", func() {
			c := normalize.Clone(stats)
			delete(c, "a")
			So(len(stats), ShouldEqual, 4)
		})
	})
}
