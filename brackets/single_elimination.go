package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/scoreboard/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket pads the roster with byes up to the next power of two,
// pairs consecutive entries in round 1 and lays out empty slots for every
// later round. Byes are resolved before returning, so players facing a bye
// already sit in their round 2 slot.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error) {
	if err := checkPlayers(params.Players); err != nil {
		return nil, fmt.Errorf("SingleEliminationGenerator: %w", err)
	}

	n := len(params.Players)
	size, numRounds := 1, 0
	for size < n {
		size <<= 1
		numRounds++
	}

	entries := make([]*string, size)
	for i, p := range params.Players {
		entries[i] = models.StringPtr(p.ID)
	}

	matches := make([]models.Match, 0, size-1)
	for slot := 0; slot < size/2; slot++ {
		home, away := entries[2*slot], entries[2*slot+1]
		matches = append(matches, models.Match{
			ID:         matchID(1, slot),
			Round:      1,
			SlotIndex:  slot,
			Player1ID:  home,
			Player2ID:  away,
			Player1Bye: home == nil,
			Player2Bye: away == nil,
		})
	}

	for r, inRound := 2, size/4; r <= numRounds; r, inRound = r+1, inRound/2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for slot := 0; slot < inRound; slot++ {
			matches = append(matches, models.Match{
				ID:        matchID(r, slot),
				Round:     r,
				SlotIndex: slot,
			})
		}
	}

	ResolveByes(matches)
	return matches, nil
}

func matchID(round, slot int) string {
	return fmt.Sprintf("knockout-%d-%d", round, slot)
}

// RoundName names a knockout round by its distance to the final.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round + 1 {
	case 1:
		return "Final"
	case 2:
		return "Semi-Final"
	case 3:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// ResolveByes completes every pending match that has a bye on one side and
// a known player on the other, and every bye-versus-bye match, propagating
// the outcome forward until nothing changes. It works in place.
func ResolveByes(matches []models.Match) {
	for changed := true; changed; {
		changed = false
		for i := range matches {
			m := &matches[i]
			if m.Completed {
				continue
			}
			switch {
			case m.Player1Bye && m.Player2Bye:
				m.WinnerID = nil
			case m.Player2Bye && m.Player1ID != nil:
				m.WinnerID = models.StringPtr(*m.Player1ID)
			case m.Player1Bye && m.Player2ID != nil:
				m.WinnerID = models.StringPtr(*m.Player2ID)
			default:
				continue
			}
			m.Player1Score, m.Player2Score = 0, 0
			m.Completed = true
			Advance(matches, i)
			changed = true
		}
	}
}

// Advance writes the outcome of matches[idx] into the slot it feeds: round
// r+1, match ⌊slot/2⌋, player1 for an even slot and player2 for an odd one.
// A completed bye-versus-bye match feeds a bye. A match that is not completed
// feeds an empty slot.
//
// When the fed slot changes and the next match was already completed, that
// match is reset and the reset cascades, so a corrected result never leaves a
// stale winner further down the bracket. Returns false when matches[idx]
// feeds no further round, that is when it is the final.
func Advance(matches []models.Match, idx int) bool {
	src := matches[idx]
	next := findSlot(matches, src.Round+1, src.SlotIndex/2)
	if next < 0 {
		return false
	}

	var id *string
	bye := false
	if src.Completed {
		if src.WinnerID != nil {
			id = models.StringPtr(*src.WinnerID)
		} else {
			bye = true
		}
	}

	dst := &matches[next]
	curID, curBye := &dst.Player1ID, &dst.Player1Bye
	if src.SlotIndex%2 == 1 {
		curID, curBye = &dst.Player2ID, &dst.Player2Bye
	}
	if sameID(*curID, id) && *curBye == bye {
		return true
	}
	*curID, *curBye = id, bye

	if dst.Completed {
		dst.Completed = false
		dst.WinnerID = nil
		dst.Player1Score, dst.Player2Score = 0, 0
		Advance(matches, next)
	}
	return true
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func findSlot(matches []models.Match, round, slot int) int {
	for i := range matches {
		if matches[i].Round == round && matches[i].SlotIndex == slot {
			return i
		}
	}
	return -1
}

// GroupRounds orders matches into named rounds.
func GroupRounds(matches []models.Match, format models.Format) []models.Round {
	byRound := make(map[int][]models.Match)
	total := 0
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
		if m.Round > total {
			total = m.Round
		}
	}

	rounds := make([]models.Round, 0, len(byRound))
	for r := 1; r <= total; r++ {
		ms, ok := byRound[r]
		if !ok {
			continue
		}
		sort.Slice(ms, func(i, j int) bool { return ms[i].SlotIndex < ms[j].SlotIndex })

		name := fmt.Sprintf("Round %d", r)
		if format == models.FormatKnockout {
			name = RoundName(r, total)
		}
		rounds = append(rounds, models.Round{Number: r, Name: name, Matches: ms})
	}
	return rounds
}
