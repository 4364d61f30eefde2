package winrate_test

import (
	"testing"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/internal/domain/winrate"
	. "github.com/smartystreets/goconvey/convey"
)

func match(winner, loser string, winnerSets, loserSets int) model.Match {
	return model.Match{
		WinnerID:   winner,
		LoserID:    loser,
		Date:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Outcome:    model.OutcomeWin,
		WinnerSets: winnerSets,
		LoserSets:  loserSets,
	}
}

func TestMatchTallies(t *testing.T) {
	Convey("Given a handful of matches", t, func() {
		matches := []model.Match{
			match("A", "B", 3, 0),
			match("A", "C", 3, 1),
			match("B", "C", 3, 2),
			match("C", "A", 3, 2),
		}

		tallies := winrate.Matches(matches)

		Convey("Then each player accumulates wins and losses", func() {
			So(tallies["A"].Wins, ShouldEqual, 2)
			So(tallies["A"].Losses, ShouldEqual, 1)
			So(tallies["A"].Total, ShouldEqual, 3)
			So(tallies["B"].Wins, ShouldEqual, 1)
			So(tallies["B"].Losses, ShouldEqual, 1)
			So(tallies["C"].Wins, ShouldEqual, 1)
			So(tallies["C"].Losses, ShouldEqual, 2)
		})

		Convey("Then rates are percentages rounded to two decimals", func() {
			So(tallies["A"].Rate, ShouldEqual, 66.67)
			So(tallies["B"].Rate, ShouldEqual, 50.0)
			So(tallies["C"].Rate, ShouldEqual, 33.33)
		})

		Convey("Then matches missing an id are ignored", func() {
			withBad := append(matches, match("", "A", 3, 0))
			again := winrate.Matches(withBad)
			So(again["A"].Total, ShouldEqual, 3)
		})
	})

	Convey("Given no matches", t, func() {
		So(winrate.Matches(nil), ShouldBeEmpty)
	})
}

func TestSetTallies(t *testing.T) {
	Convey("Given matches with set scores", t, func() {
		matches := []model.Match{
			match("A", "B", 3, 1),
			match("B", "A", 3, 2),
		}

		tallies := winrate.Sets(matches)

		Convey("Then set wins mirror between the two participants", func() {
			So(tallies["A"].Wins, ShouldEqual, 5)
			So(tallies["A"].Losses, ShouldEqual, 4)
			So(tallies["A"].Total, ShouldEqual, 9)
			So(tallies["B"].Wins, ShouldEqual, 4)
			So(tallies["B"].Losses, ShouldEqual, 5)
			So(tallies["B"].Rate, ShouldEqual, 44.44)
		})

		Convey("Then matches without recorded set scores contribute nothing", func() {
			withUnscored := append(matches, match("A", "B", 0, 0))
			again := winrate.Sets(withUnscored)
			So(again["A"].Total, ShouldEqual, 9)
		})
	})
}

func TestRanked(t *testing.T) {
	Convey("Given a tally map", t, func() {
		matches := []model.Match{
			match("A", "B", 3, 0),
			match("A", "C", 3, 0),
			match("B", "C", 3, 0),
			match("D", "E", 3, 0),
		}

		ranked := winrate.Ranked(winrate.Matches(matches))

		Convey("Then entries sort by rate descending with id as final tie-break", func() {
			So(len(ranked), ShouldEqual, 5)
			So(ranked[0].PlayerID, ShouldEqual, "A") // 100% over 2 matches
			So(ranked[1].PlayerID, ShouldEqual, "D") // 100% over 1 match
			So(ranked[2].PlayerID, ShouldEqual, "B") // 50%
			So(ranked[3].Rate, ShouldEqual, 0)
			So(ranked[3].PlayerID, ShouldEqual, "C")
			So(ranked[4].PlayerID, ShouldEqual, "E")
		})
	})
}
