package player_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/scoutval/internal/domain/player"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCategory(t *testing.T) {
	Convey("Given position labels from the feed", t, func() {
		Convey("When the label is one of the built-in categories in any case", func() {
			for label, want := range map[string]player.Category{
				"Attacker":   player.Attacker,
				"midfielder": player.Midfielder,
				" DEFENDER ": player.Defender,
				"goalkeeper": player.Goalkeeper,
				"forward":    player.Attacker,
				"Keeper":     player.Goalkeeper,
			} {
				got, err := player.ParseCategory(label)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("When the label is unknown", func() {
			_, err := player.ParseCategory("coach")

			Convey("Then it reports an unknown category", func() {
				So(errors.Is(err, player.ErrUnknownCategory), ShouldBeTrue)
			})
		})

		Convey("When listing group labels", func() {
			So(player.Attacker.GroupLabel(), ShouldEqual, "Forwards")
			So(player.Goalkeeper.GroupLabel(), ShouldEqual, "Goalkeepers")
			So(player.Category("x").Valid(), ShouldBeFalse)
			So(len(player.Categories()), ShouldEqual, 4)
		})
	})
}

func TestRecord(t *testing.T) {
	Convey("Given a player document decoded from JSON", t, func() {
		raw := `{
			"id": 276, "name": "N. Striker", "position": "Attacker", "teamId": 85,
			"statistics": [{
				"games": {"appearences": 20, "minutes": 1800, "lineups": 18, "captain": true, "rating": null},
				"goals": {"total": 10, "assists": 4, "saves": null},
				"assists": 5,
				"shots": {"total": 50, "on": 20},
				"cards": {"yellow": 2, "red": 0}
			}]
		}`
		var rec player.Record
		So(json.Unmarshal([]byte(raw), &rec), ShouldBeNil)

		Convey("Then absent counters read as zero and present ones as their value", func() {
			s, err := rec.CurrentSeason()
			So(err, ShouldBeNil)
			So(player.Count(s.Games.Appearances), ShouldEqual, 20)
			So(player.Count(s.Goals.Saves), ShouldEqual, 0)
			So(player.Count(s.Tackles.Total), ShouldEqual, 0)
			So(s.Games.Captain, ShouldBeTrue)
		})

		Convey("Then the top-level assists field wins over goals.assists", func() {
			s, _ := rec.CurrentSeason()
			So(s.AssistCount(), ShouldEqual, 5)
			s.Assists = nil
			So(s.AssistCount(), ShouldEqual, 4)
		})

		Convey("When cloning the record", func() {
			clone := rec.Clone()
			*clone.Statistics[0].Goals.Total = 99
			clone.Statistics[0].Games.Captain = false

			Convey("Then the original is untouched", func() {
				So(player.Count(rec.Statistics[0].Goals.Total), ShouldEqual, 10)
				So(rec.Statistics[0].Games.Captain, ShouldBeTrue)
			})
		})
	})

	Convey("Given a record without statistics", t, func() {
		rec := player.Record{ID: 1, Position: "Defender"}

		Convey("Then there is no current season", func() {
			_, err := rec.CurrentSeason()
			So(errors.Is(err, player.ErrNoStatistics), ShouldBeTrue)
		})
	})
}
