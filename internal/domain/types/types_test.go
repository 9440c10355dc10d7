package types_test

import (
	"errors"
	"fmt"
	"testing"

	types "github.com/okian/scoutval/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		entry := types.Entry{Rank: 1, PlayerID: 276, Category: "Attacker", Score: 0.91}

		Convey("Then it should keep the values it was built with", func() {
			So(entry.Rank, ShouldEqual, 1)
			So(entry.PlayerID, ShouldEqual, 276)
			So(entry.Category, ShouldEqual, "Attacker")
			So(entry.Score, ShouldEqual, 0.91)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given the valuation error taxonomy", t, func() {
		Convey("When a configuration error names a metric", func() {
			err := types.NewConfigurationError("Goalkeeper", "savesPerGame", "missing weight")

			Convey("Then it matches the configuration kind and carries the metric", func() {
				So(errors.Is(err, types.ErrConfiguration), ShouldBeTrue)
				So(errors.Is(err, types.ErrUpstreamFetch), ShouldBeFalse)
				So(err.Error(), ShouldContainSubstring, "savesPerGame")
				So(err.Error(), ShouldContainSubstring, "Goalkeeper")
			})

			Convey("And it survives wrapping", func() {
				wrapped := fmt.Errorf("valuation: %w", err)
				var cfgErr *types.ConfigurationError
				So(errors.As(wrapped, &cfgErr), ShouldBeTrue)
				So(cfgErr.Metric, ShouldEqual, "savesPerGame")
			})
		})

		Convey("When a configuration error has no metric", func() {
			err := types.NewConfigurationError("Defender", "", "no profile")

			Convey("Then the message only names the category", func() {
				So(err.Error(), ShouldNotContainSubstring, "metric")
			})
		})

		Convey("When an upstream fetch fails", func() {
			cause := errors.New("disk gone")
			err := types.NewUpstreamFetchError("get player", cause)

			Convey("Then both the kind and the cause are reachable", func() {
				So(errors.Is(err, types.ErrUpstreamFetch), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
			})
		})

		Convey("When data is unavailable for a section", func() {
			err := types.NewDataUnavailableError(9, "performance", "no statistics")

			Convey("Then it matches the data-unavailable kind", func() {
				So(errors.Is(err, types.ErrDataUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "performance")
			})
		})
	})
}
