package model_test

import (
	"encoding/json"
	"testing"

	"github.com/rallyrank/rallyrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchRateable(t *testing.T) {
	Convey("Given a completed match with both participants", t, func() {
		m := model.Match{WinnerID: "p1", LoserID: "p2"}

		Convey("Then it is rateable", func() {
			So(m.Rateable(), ShouldBeTrue)
		})

		Convey("When the match did not finish", func() {
			m.DNF = true
			So(m.Rateable(), ShouldBeFalse)
		})

		Convey("When the winner id is missing", func() {
			m.WinnerID = ""
			So(m.Rateable(), ShouldBeFalse)
		})

		Convey("When the loser id is missing", func() {
			m.LoserID = ""
			So(m.Rateable(), ShouldBeFalse)
		})
	})
}

func TestMatchResults(t *testing.T) {
	Convey("Given a normal result", t, func() {
		m := model.Match{WinnerID: "p1", LoserID: "p2", Outcome: model.OutcomeWin}
		w, l := m.Results()
		So(w, ShouldEqual, 1.0)
		So(l, ShouldEqual, 0.0)
	})

	Convey("Given a tie", t, func() {
		m := model.Match{WinnerID: "p1", LoserID: "p2", Outcome: model.OutcomeTie}
		w, l := m.Results()
		So(w, ShouldEqual, 0.5)
		So(l, ShouldEqual, 0.5)
	})
}

func TestNewRatingDefaults(t *testing.T) {
	Convey("A fresh rating carries the system defaults", t, func() {
		r := model.NewRating()
		So(r.Rating, ShouldEqual, 1500.0)
		So(r.Deviation, ShouldEqual, 350.0)
		So(r.Volatility, ShouldEqual, 0.06)
		So(r.MatchesPlayed, ShouldEqual, 0)
	})
}

func TestRatingJSONKeys(t *testing.T) {
	Convey("A rating marshals with snake_case keys", t, func() {
		out, err := json.Marshal(model.Rating{Rating: 1512.3, Deviation: 210.4, Volatility: 0.06, MatchesPlayed: 4})
		So(err, ShouldBeNil)

		var keys map[string]interface{}
		So(json.Unmarshal(out, &keys), ShouldBeNil)
		So(keys, ShouldContainKey, "rating")
		So(keys, ShouldContainKey, "deviation")
		So(keys, ShouldContainKey, "volatility")
		So(keys, ShouldContainKey, "matches_played")
	})
}
