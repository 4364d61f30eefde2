package glicko_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rallyrank/rallyrank/internal/domain/glicko"
	"github.com/rallyrank/rallyrank/internal/domain/model"
)

func TestWinProbability(t *testing.T) {
	tests := []struct {
		name     string
		player   float64
		opponent float64
		expected float64
	}{{
		"equal ratings",
		1500, 1500,
		0.5,
	}, {
		"400 points stronger",
		1900, 1500,
		10.0 / 11.0,
	}, {
		"400 points weaker",
		1500, 1900,
		1.0 / 11.0,
	}, {
		"200 points stronger",
		1700, 1500,
		0.7597469266479578,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, glicko.WinProbability(test.player, test.opponent), 1e-12)
		})
	}
}

func TestUpdateMovesRatingTowardResult(t *testing.T) {
	u := glicko.New()
	a := model.NewRating()
	b := model.NewRating()

	winner, converged := u.Update(a, b, 1.0)
	assert.True(t, converged)
	assert.Greater(t, winner.Rating, a.Rating)

	loser, converged := u.Update(b, a, 0.0)
	assert.True(t, converged)
	assert.Less(t, loser.Rating, b.Rating)
}

func TestUpdateShrinksDeviation(t *testing.T) {
	u := glicko.New()
	state := model.NewRating()

	for _, score := range []float64{1.0, 0.0, 0.5} {
		next, _ := u.Update(state, model.NewRating(), score)
		assert.Less(t, next.Deviation, state.Deviation,
			"deviation must not grow within a single update, score=%v", score)
	}
}

func TestUpdateTieSymmetry(t *testing.T) {
	u := glicko.New()
	a := model.NewRating()
	b := model.NewRating()

	newA, _ := u.Update(a, b, 0.5)
	newB, _ := u.Update(b, a, 0.5)

	assert.Equal(t, newA, newB)
	assert.InDelta(t, model.DefaultRating, newA.Rating, 1e-9)
}

func TestUpdateIsDeterministic(t *testing.T) {
	u := glicko.New()
	player := model.Rating{Rating: 1622.5, Deviation: 180.0, Volatility: 0.059, MatchesPlayed: 12}
	opponent := model.Rating{Rating: 1431.0, Deviation: 250.0, Volatility: 0.061, MatchesPlayed: 4}

	first, okFirst := u.Update(player, opponent, 1.0)
	second, okSecond := u.Update(player, opponent, 1.0)

	assert.Equal(t, first, second)
	assert.Equal(t, okFirst, okSecond)
}

func TestUpdatePreservesMatchCount(t *testing.T) {
	u := glicko.New()
	player := model.Rating{Rating: 1500, Deviation: 350, Volatility: 0.06, MatchesPlayed: 7}

	next, _ := u.Update(player, model.NewRating(), 1.0)
	assert.Equal(t, 7, next.MatchesPlayed)
}

func TestTinyIterationBoundFlagsNonConvergence(t *testing.T) {
	u := glicko.New(glicko.WithMaxIterations(1), glicko.WithTolerance(1e-12))
	player := model.Rating{Rating: 1500, Deviation: 350, Volatility: 0.06}
	opponent := model.Rating{Rating: 2400, Deviation: 30, Volatility: 0.06}

	// A huge upset with a one-iteration budget cannot settle the
	// volatility solve; the estimate must still come back usable.
	next, converged := u.Update(player, opponent, 1.0)
	assert.False(t, converged)
	assert.Greater(t, next.Rating, player.Rating)
}
