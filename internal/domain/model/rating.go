package model

// Glicko-2 defaults for an unrated player.
const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
)

// Rating is a player's skill estimate at a point in time.
type Rating struct {
	Rating        float64 `json:"rating"`         // scalar skill estimate, 1500-centered
	Deviation     float64 `json:"deviation"`      // uncertainty of the estimate
	Volatility    float64 `json:"volatility"`     // expected fluctuation magnitude
	MatchesPlayed int     `json:"matches_played"` // rated matches applied so far
}

// NewRating returns the default state for an unrated player.
func NewRating() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}
