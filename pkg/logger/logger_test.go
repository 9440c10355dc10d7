package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(Init(), ShouldBeNil)
		Reset(func() { So(Sync(), ShouldBeNil) })

		Convey("Then Get and Named should return loggers", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("weights"), ShouldNotBeNil)
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithJSON()), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "valuation computed",
				String("category", "Attacker"),
				Int("player_id", 7),
				Float64("composite", 0.42),
				Bool("partial", false),
				Error(errors.New("boom")),
			)

			Convey("Then the record should carry message and fields", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "valuation computed")
				So(rec["category"], ShouldEqual, "Attacker")
				So(rec["player_id"], ShouldEqual, 7.0)
				So(rec["partial"], ShouldEqual, false)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("store").Warn(ctx, "slow write", Int("ms", 120))

			Convey("Then fields should be grouped under the name", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				group, ok := rec["store"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["ms"], ShouldEqual, 120.0)
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Reset(func() { _ = SetLevelString("info") })
			Get().Info(ctx, "dropped")
			Get().Debug(ctx, "dropped too")

			Convey("Then lower records should be filtered", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known names should parse", func() {
			for _, lvl := range []string{"debug", "info", "", "warn", "WARNING", " error "} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Then unknown names should fail", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
