package model

// Player is one roster record. Only PlayerID matters to the rating
// engine; the rest is identity metadata joined into summaries.
type Player struct {
	PlayerID string
	Name     string
	Country  string
	Gender   string
}
