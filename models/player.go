package models

// Player is a roster entry with its running totals for the active game.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Score  int    `json:"score"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// RecordPlayer is the reduced player shape stored with a finished game.
type RecordPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
