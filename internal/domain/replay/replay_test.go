package replay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rallyrank/rallyrank/internal/adapters/repository"
	"github.com/rallyrank/rallyrank/internal/domain/glicko"
	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/internal/domain/replay"
	"github.com/rallyrank/rallyrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 12, 0, 0, 0, time.UTC)
}

func roster(ids ...string) []model.Player {
	players := make([]model.Player, len(ids))
	for i, id := range ids {
		players[i] = model.Player{PlayerID: id, Name: "Player " + id}
	}
	return players
}

func match(code, winner, loser string, date time.Time) model.Match {
	return model.Match{
		DocumentCode: code,
		WinnerID:     winner,
		LoserID:      loser,
		Date:         date,
		Outcome:      model.OutcomeWin,
	}
}

func newReplayer(ctx context.Context, players []model.Player) (*replay.Replayer, *repository.ArenaStore) {
	store := repository.NewArenaStore()
	store.Init(ctx, players)
	return replay.New(store, glicko.New()), store
}

func TestReplayScenario(t *testing.T) {
	ctx := context.Background()

	Convey("Given a roster of three equal players and three matches", t, func() {
		r, store := newReplayer(ctx, roster("A", "B", "C"))
		matches := []model.Match{
			match("m1", "A", "B", day(1)),
			match("m2", "B", "C", day(2)),
			match("m3", "A", "C", day(3)),
		}

		history, report := r.Run(ctx, matches)

		Convey("Then every match produces exactly one history row", func() {
			So(len(history), ShouldEqual, 3)
			So(report.Rated, ShouldEqual, 3)
			So(report.Skips, ShouldBeEmpty)
		})

		Convey("Then final ratings move in the expected directions", func() {
			a, err := store.Get(ctx, "A")
			So(err, ShouldBeNil)
			So(a.Rating, ShouldBeGreaterThan, 1500)

			c, err := store.Get(ctx, "C")
			So(err, ShouldBeNil)
			So(c.Rating, ShouldBeLessThan, 1500)
		})

		Convey("Then match counts are conserved", func() {
			for _, id := range []string{"A", "B", "C"} {
				state, err := store.Get(ctx, id)
				So(err, ShouldBeNil)
				So(state.MatchesPlayed, ShouldEqual, 2)
			}
		})

		Convey("Then rows carry pre/post snapshots and deltas", func() {
			first := history[0]
			So(first.DocumentCode, ShouldEqual, "m1")
			So(first.WinnerPre.Rating, ShouldEqual, 1500)
			So(first.LoserPre.Rating, ShouldEqual, 1500)
			So(first.Expected, ShouldEqual, 0.5)
			So(first.WinnerDelta, ShouldBeGreaterThan, 0)
			So(first.LoserDelta, ShouldBeLessThan, 0)
			So(first.WinnerPost.Rating-first.WinnerPre.Rating, ShouldEqual, first.WinnerDelta)
			So(first.WinnerMatches, ShouldEqual, 1)
			So(first.LoserMatches, ShouldEqual, 1)
		})

		Convey("Then deviations shrink for everyone who played", func() {
			for _, row := range history {
				So(row.WinnerPost.Deviation, ShouldBeLessThan, row.WinnerPre.Deviation)
				So(row.LoserPost.Deviation, ShouldBeLessThan, row.LoserPre.Deviation)
			}
		})
	})
}

func TestReplayDeterminism(t *testing.T) {
	ctx := context.Background()

	Convey("Given the same match list replayed twice from identical initial state", t, func() {
		matches := []model.Match{
			match("m1", "A", "B", day(1)),
			match("m2", "B", "C", day(2)),
			match("m3", "A", "C", day(3)),
			match("m4", "C", "B", day(4)),
		}

		r1, _ := newReplayer(ctx, roster("A", "B", "C"))
		first, _ := r1.Run(ctx, matches)

		r2, _ := newReplayer(ctx, roster("A", "B", "C"))
		second, _ := r2.Run(ctx, matches)

		Convey("Then the histories are identical", func() {
			So(second, ShouldResemble, first)
		})
	})
}

func TestReplayOrderSensitivity(t *testing.T) {
	ctx := context.Background()

	Convey("Given two matches with disjoint participants", t, func() {
		forward := []model.Match{
			match("m1", "A", "B", day(1)),
			match("m2", "C", "D", day(2)),
		}
		reversed := []model.Match{
			match("m2", "C", "D", day(1)),
			match("m1", "A", "B", day(2)),
		}

		r1, s1 := newReplayer(ctx, roster("A", "B", "C", "D"))
		r1.Run(ctx, forward)
		r2, s2 := newReplayer(ctx, roster("A", "B", "C", "D"))
		r2.Run(ctx, reversed)

		Convey("Then final ratings are unaffected by the order", func() {
			So(s2.States(ctx), ShouldResemble, s1.States(ctx))
		})
	})

	Convey("Given two matches sharing a participant", t, func() {
		forward := []model.Match{
			match("m1", "A", "B", day(1)),
			match("m2", "B", "C", day(2)),
		}
		reversed := []model.Match{
			match("m2", "B", "C", day(1)),
			match("m1", "A", "B", day(2)),
		}

		r1, _ := newReplayer(ctx, roster("A", "B", "C"))
		h1, _ := r1.Run(ctx, forward)
		r2, _ := newReplayer(ctx, roster("A", "B", "C"))
		h2, _ := r2.Run(ctx, reversed)

		Convey("Then B's intermediate trajectory changes", func() {
			// In the forward order B enters the second match weakened by
			// the loss to A; reversed, B enters it at the defaults.
			So(h1[1].WinnerID, ShouldEqual, "B")
			So(h2[0].WinnerID, ShouldEqual, "B")
			So(h1[1].WinnerPre.Rating, ShouldNotEqual, h2[0].WinnerPre.Rating)
		})
	})
}

func TestReplayStableSortOnEqualDates(t *testing.T) {
	ctx := context.Background()

	Convey("Given matches sharing an identical timestamp", t, func() {
		r, _ := newReplayer(ctx, roster("A", "B", "C"))
		matches := []model.Match{
			match("first", "A", "B", day(1)),
			match("second", "B", "C", day(1)),
			match("third", "C", "A", day(1)),
		}

		history, _ := r.Run(ctx, matches)

		Convey("Then original input order is the tie-break", func() {
			So(len(history), ShouldEqual, 3)
			So(history[0].DocumentCode, ShouldEqual, "first")
			So(history[1].DocumentCode, ShouldEqual, "second")
			So(history[2].DocumentCode, ShouldEqual, "third")
		})
	})
}

func TestReplaySkips(t *testing.T) {
	ctx := context.Background()

	Convey("Given a match referencing a player not in the roster", t, func() {
		r, store := newReplayer(ctx, roster("A", "B"))
		matches := []model.Match{
			match("m1", "A", "B", day(1)),
			match("m2", "Z", "A", day(2)),
			match("m3", "B", "A", day(3)),
		}

		history, report := r.Run(ctx, matches)

		Convey("Then the bad match is skipped and the batch continues", func() {
			So(len(history), ShouldEqual, 2)
			So(report.Rated, ShouldEqual, 2)
			So(len(report.Skips), ShouldEqual, 1)
			So(report.Skips[0].DocumentCode, ShouldEqual, "m2")
			So(report.Skips[0].Reason, ShouldEqual, replay.SkipUnknownPlayer)
		})

		Convey("Then the skipped match mutates no state", func() {
			a, err := store.Get(ctx, "A")
			So(err, ShouldBeNil)
			So(a.MatchesPlayed, ShouldEqual, 2)
		})
	})

	Convey("Given a match flagged as did-not-finish", t, func() {
		r, _ := newReplayer(ctx, roster("A", "B"))
		dnf := match("m1", "A", "B", day(1))
		dnf.DNF = true

		history, report := r.Run(ctx, []model.Match{dnf})

		Convey("Then it contributes nothing", func() {
			So(history, ShouldBeEmpty)
			So(report.Skips[0].Reason, ShouldEqual, replay.SkipDNF)
		})
	})

	Convey("Given a match with a missing participant id", t, func() {
		r, _ := newReplayer(ctx, roster("A", "B"))
		missing := match("m1", "A", "", day(1))

		history, report := r.Run(ctx, []model.Match{missing})

		Convey("Then it is excluded with a missing-id reason", func() {
			So(history, ShouldBeEmpty)
			So(report.Skips[0].Reason, ShouldEqual, replay.SkipMissingID)
		})
	})
}

func TestReplayTieSymmetry(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tie between two players at identical defaults", t, func() {
		r, store := newReplayer(ctx, roster("A", "B"))
		tie := match("m1", "A", "B", day(1))
		tie.Outcome = model.OutcomeTie

		history, _ := r.Run(ctx, []model.Match{tie})

		Convey("Then both receive identical post-match states", func() {
			So(len(history), ShouldEqual, 1)
			So(history[0].WinnerPost, ShouldResemble, history[0].LoserPost)

			a, err := store.Get(ctx, "A")
			So(err, ShouldBeNil)
			b, err := store.Get(ctx, "B")
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
		})
	})
}

func TestReplayDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unsorted match list", t, func() {
		r, _ := newReplayer(ctx, roster("A", "B"))
		matches := []model.Match{
			match("late", "A", "B", day(9)),
			match("early", "B", "A", day(1)),
		}

		history, _ := r.Run(ctx, matches)

		Convey("Then replay orders by date internally", func() {
			So(history[0].DocumentCode, ShouldEqual, "early")
			So(history[1].DocumentCode, ShouldEqual, "late")
		})

		Convey("And the caller's slice keeps its order", func() {
			So(matches[0].DocumentCode, ShouldEqual, "late")
		})
	})
}

// rejectingStore refuses writes for one player id.
type rejectingStore struct {
	*repository.ArenaStore
	rejectID string
}

func (s *rejectingStore) Apply(ctx context.Context, playerID string, state model.Rating) error {
	if playerID == s.rejectID {
		return errors.New("write rejected")
	}
	return s.ArenaStore.Apply(ctx, playerID, state)
}

func TestReplayPartialCommitRollsBack(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store that rejects writes for the loser", t, func() {
		arena := repository.NewArenaStore()
		arena.Init(ctx, roster("A", "B"))
		store := &rejectingStore{ArenaStore: arena, rejectID: "B"}
		r := replay.New(store, glicko.New())

		history, report := r.Run(ctx, []model.Match{match("m1", "A", "B", day(1))})

		Convey("Then the match is skipped with a store failure", func() {
			So(history, ShouldBeEmpty)
			So(len(report.Skips), ShouldEqual, 1)
			So(report.Skips[0].Reason, ShouldEqual, replay.SkipStoreFailure)
		})

		Convey("And the winner's committed update is undone", func() {
			a, err := arena.Get(ctx, "A")
			So(err, ShouldBeNil)
			So(a, ShouldResemble, model.NewRating())
		})
	})
}
