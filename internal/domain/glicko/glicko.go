// Package glicko implements the Glicko-2 single-opponent rating update.
//
// Variable names follow the conventions of Glickman's paper
// (https://www.glicko.net/glicko/glicko2.pdf):
//   - mu/phi: rating and deviation converted to the internal scale
//   - sigma: volatility
//   - tau: the volatility change constraint
//   - g, E: the deviation weighting and expected score terms
//   - v, delta: estimated variance and improvement from the observation
//
// Every function here is pure and deterministic: identical inputs produce
// bit-identical outputs.
package glicko

import (
	"math"

	"github.com/rallyrank/rallyrank/internal/domain/model"
)

// Default solver configuration.
const (
	defaultTau           = 0.5
	defaultTolerance     = 1e-6
	defaultMaxIterations = 100

	scale = 173.7178 // conversion between the public 1500 scale and mu/phi
)

// Updater computes new rating states. The zero value is not usable;
// construct with New.
type Updater struct {
	tau           float64
	tolerance     float64
	maxIterations int
}

// New constructs an Updater with configuration options.
func New(opts ...Option) *Updater {
	u := &Updater{
		tau:           defaultTau,
		tolerance:     defaultTolerance,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// WinProbability is the logistic-model probability that a player rated
// playerRating beats one rated opponentRating.
func WinProbability(playerRating, opponentRating float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponentRating-playerRating)/400.0))
}

// Update computes the player's new state after one match against
// opponent, where score is 1 for a win, 0 for a loss and 0.5 for a tie.
// Both inputs are pre-match states; Update never observes an opponent's
// already-updated rating. MatchesPlayed is carried through unchanged,
// incrementing it is the caller's concern.
//
// The second return value reports whether the volatility solve converged
// within the iteration bound. On non-convergence the best estimate so
// far is still returned and usable.
func (u *Updater) Update(player, opponent model.Rating, score float64) (model.Rating, bool) {
	// Step 1-2: convert to the internal scale.
	mu := toMu(player.Rating)
	phi := toPhi(player.Deviation)
	oppMu := toMu(opponent.Rating)
	oppPhi := toPhi(opponent.Deviation)

	// Step 3-4: estimated variance and improvement from the single
	// observation.
	gOpp := g(oppPhi)
	e := expected(mu, oppMu, gOpp)
	v := 1.0 / (gOpp * gOpp * e * (1.0 - e))
	delta := v * gOpp * (score - e)

	// Step 5: new volatility via iterative root-finding.
	sigma, converged := u.solveSigma(player.Volatility, delta, phi, v)

	// Step 6-7: pre-rating deviation, then the new deviation and rating.
	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := mu + phiNew*phiNew*gOpp*(score-e)

	// Step 8: convert back to the public scale.
	return model.Rating{
		Rating:        fromMu(muNew),
		Deviation:     phiNew * scale,
		Volatility:    sigma,
		MatchesPlayed: player.MatchesPlayed,
	}, converged
}

// solveSigma finds the new volatility with the Illinois variant of
// regula falsi, bounded by the configured tolerance and iteration cap.
func (u *Updater) solveSigma(sigma, delta, phi, v float64) (float64, bool) {
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a)/(u.tau*u.tau)
	}

	// Initial bracket [B, A] per the paper.
	lo := a
	var hi float64
	if delta*delta > phi*phi+v {
		hi = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*u.tau) < 0 {
			k++
			if int(k) > u.maxIterations {
				// Bracket never opened; keep the old volatility.
				return sigma, false
			}
		}
		hi = a - k*u.tau
	}

	fLo := f(lo)
	fHi := f(hi)
	for i := 0; i < u.maxIterations; i++ {
		if math.Abs(hi-lo) <= u.tolerance {
			return math.Exp(lo / 2.0), true
		}
		mid := lo + (lo-hi)*fLo/(fHi-fLo)
		fMid := f(mid)
		if math.IsNaN(fMid) || math.IsInf(fMid, 0) {
			break
		}
		if fMid*fHi <= 0 {
			lo = hi
			fLo = fHi
		} else {
			fLo /= 2.0
		}
		hi = mid
		fHi = fMid
	}
	// Iteration bound reached: return the best estimate, flagged.
	return math.Exp(lo / 2.0), false
}

func toMu(rating float64) float64      { return (rating - model.DefaultRating) / scale }
func fromMu(mu float64) float64        { return mu*scale + model.DefaultRating }
func toPhi(deviation float64) float64  { return deviation / scale }
func g(phi float64) float64            { return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi)) }
func expected(mu, oppMu, gOpp float64) float64 {
	return 1.0 / (1.0 + math.Exp(-gOpp*(mu-oppMu)))
}
