package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket builds a single round-robin with the circle method.
//
// Seat 0 stays fixed and the other seats rotate one step after every round.
// With an odd roster an empty seat is added; it rotates with the circle, so
// each player rests exactly once. Resting pairings are emitted as completed
// bye matches so callers can show who sits out.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error) {
	if err := checkPlayers(params.Players); err != nil {
		return nil, fmt.Errorf("RoundRobinGenerator: %w", err)
	}

	seats := make([]*string, 0, len(params.Players)+1)
	for _, p := range params.Players {
		seats = append(seats, models.StringPtr(p.ID))
	}
	if len(seats)%2 == 1 {
		seats = append(seats, nil)
	}
	n := len(seats)

	matches := make([]models.Match, 0, n/2*(n-1))
	for round := 1; round < n; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for slot := 0; slot < n/2; slot++ {
			matches = append(matches, pairing(round, slot, seats[slot], seats[n-1-slot]))
		}

		first := seats[1]
		copy(seats[1:], seats[2:])
		seats[n-1] = first
	}

	return matches, nil
}

func pairing(round, slot int, home, away *string) models.Match {
	m := models.Match{
		ID:        fmt.Sprintf("league-%d-%d", round, slot),
		Round:     round,
		SlotIndex: slot,
	}
	switch {
	case home == nil:
		m.Player1ID = models.StringPtr(*away)
		m.Player2Bye = true
	case away == nil:
		m.Player1ID = models.StringPtr(*home)
		m.Player2Bye = true
	default:
		m.Player1ID = models.StringPtr(*home)
		m.Player2ID = models.StringPtr(*away)
		return m
	}
	m.WinnerID = models.StringPtr(*m.Player1ID)
	m.Completed = true
	return m
}
