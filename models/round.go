package models

// Round groups the matches sharing a round number.
type Round struct {
	Number  int     `json:"number"`
	Name    string  `json:"name"`
	Matches []Match `json:"matches"`
}
