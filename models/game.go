package models

import "time"

type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
)

// Game is the snapshot owned by one active game session.
type Game struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Category     string     `json:"category,omitempty" db:"category"`
	Format       Format     `json:"format" db:"format"`
	Status       GameStatus `json:"status" db:"status"`
	Players      []Player   `json:"players" db:"-"`
	Matches      []Match    `json:"matches" db:"-"`
	CurrentRound int        `json:"current_round" db:"-"`
	HostPINHash  string     `json:"-" db:"host_pin_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Clone returns a deep copy of the game. Transitions operate on clones so
// that a caller's snapshot is never modified.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Players = make([]Player, len(g.Players))
	copy(c.Players, g.Players)
	c.Matches = make([]Match, len(g.Matches))
	for i, m := range g.Matches {
		c.Matches[i] = m.Clone()
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// MatchIndex returns the position of the match with the given id, or -1.
func (g *Game) MatchIndex(matchID string) int {
	for i := range g.Matches {
		if g.Matches[i].ID == matchID {
			return i
		}
	}
	return -1
}

// PlayerIndex returns the position of the player with the given id, or -1.
func (g *Game) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// HasResults reports whether any non-bye match has been completed.
func (g *Game) HasResults() bool {
	for _, m := range g.Matches {
		if m.Completed && !m.IsBye() {
			return true
		}
	}
	return false
}

// TotalRounds returns the highest round number in the schedule.
func (g *Game) TotalRounds() int {
	total := 0
	for _, m := range g.Matches {
		if m.Round > total {
			total = m.Round
		}
	}
	return total
}
