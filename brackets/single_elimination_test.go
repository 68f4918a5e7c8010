package brackets

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
)

func knockout(t *testing.T, n int) []models.Match {
	t.Helper()
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: roster(n)})
	require.NoError(t, err)
	return matches
}

func complete(matches []models.Match, id string, s1, s2 int) {
	for i := range matches {
		if matches[i].ID != id {
			continue
		}
		m := &matches[i]
		m.Player1Score, m.Player2Score = s1, s2
		if s1 > s2 {
			m.WinnerID = models.StringPtr(*m.Player1ID)
		} else {
			m.WinnerID = models.StringPtr(*m.Player2ID)
		}
		m.Completed = true
		Advance(matches, i)
		ResolveByes(matches)
		return
	}
}

func find(t *testing.T, matches []models.Match, id string) models.Match {
	t.Helper()
	for _, m := range matches {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("match %s not found", id)
	return models.Match{}
}

func TestSingleElimination_Shape(t *testing.T) {
	for n := 2; n <= 17; n++ {
		matches := knockout(t, n)
		rounds := byRound(matches)

		wantRounds := int(math.Ceil(math.Log2(float64(n))))
		require.Len(t, rounds, wantRounds, "n=%d", n)
		slots := 1 << wantRounds
		assert.Len(t, matches, slots-1, "n=%d", n)
		assert.Len(t, rounds[1], slots/2, "n=%d", n)

		for r := 1; r < wantRounds; r++ {
			assert.Len(t, rounds[r+1], (len(rounds[r])+1)/2, "n=%d round %d", n, r+1)
		}
		assert.Len(t, rounds[wantRounds], 1, "n=%d final", n)

		withPlayers := 0
		seen := make(map[string]bool)
		for _, m := range rounds[1] {
			if m.Player1ID != nil || m.Player2ID != nil {
				withPlayers++
			}
			for _, id := range []*string{m.Player1ID, m.Player2ID} {
				if id != nil {
					assert.False(t, seen[*id], "player %s seeded twice", *id)
					seen[*id] = true
				}
			}
		}
		assert.Equal(t, (n+1)/2, withPlayers, "n=%d", n)
		assert.Len(t, seen, n, "n=%d", n)
	}
}

func TestSingleElimination_ThreePlayersByeAdvances(t *testing.T) {
	matches := knockout(t, 3)

	first := find(t, matches, "knockout-1-0")
	assert.Equal(t, "p0", *first.Player1ID)
	assert.Equal(t, "p1", *first.Player2ID)
	assert.False(t, first.Completed)

	bye := find(t, matches, "knockout-1-1")
	assert.True(t, bye.IsBye())
	assert.True(t, bye.Completed)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, "p2", *bye.WinnerID)

	final := find(t, matches, "knockout-2-0")
	assert.Nil(t, final.Player1ID)
	require.NotNil(t, final.Player2ID)
	assert.Equal(t, "p2", *final.Player2ID)
	assert.False(t, final.Completed)

	complete(matches, "knockout-1-0", 10, 3)
	final = find(t, matches, "knockout-2-0")
	assert.Equal(t, "p0", *final.Player1ID)
	assert.Equal(t, "p2", *final.Player2ID)
	assert.True(t, final.Ready())
}

func TestSingleElimination_DoubleByeCarriesForward(t *testing.T) {
	// 5 players: round 1 is (p0,p1) (p2,p3) (p4,bye) (bye,bye)
	matches := knockout(t, 5)

	empty := find(t, matches, "knockout-1-3")
	assert.True(t, empty.Player1Bye && empty.Player2Bye)
	assert.True(t, empty.Completed)
	assert.Nil(t, empty.WinnerID)

	semi := find(t, matches, "knockout-2-1")
	assert.True(t, semi.Completed)
	assert.Equal(t, "p4", *semi.WinnerID)

	final := find(t, matches, "knockout-3-0")
	assert.Equal(t, "p4", *final.Player2ID)
	assert.Nil(t, final.Player1ID)
}

func TestAdvance_WritesWinnerByParity(t *testing.T) {
	matches := knockout(t, 8)

	complete(matches, "knockout-1-2", 4, 1) // p4 beats p5, even slot
	complete(matches, "knockout-1-3", 0, 2) // p7 beats p6, odd slot

	next := find(t, matches, "knockout-2-1")
	assert.Equal(t, "p4", *next.Player1ID)
	assert.Equal(t, "p7", *next.Player2ID)

	untouched := find(t, matches, "knockout-2-0")
	assert.Nil(t, untouched.Player1ID)
	assert.Nil(t, untouched.Player2ID)
}

func TestAdvance_FinalHasNoNextRound(t *testing.T) {
	matches := knockout(t, 2)
	require.Len(t, matches, 1)

	matches[0].WinnerID = models.StringPtr("p0")
	matches[0].Completed = true
	assert.False(t, Advance(matches, 0))
}

func TestAdvance_ChangedWinnerResetsDownstream(t *testing.T) {
	matches := knockout(t, 4)
	complete(matches, "knockout-1-0", 3, 1)
	complete(matches, "knockout-1-1", 3, 1)
	complete(matches, "knockout-2-0", 5, 2)

	final := find(t, matches, "knockout-2-0")
	require.True(t, final.Completed)
	assert.Equal(t, "p0", *final.WinnerID)

	complete(matches, "knockout-1-0", 1, 3)

	final = find(t, matches, "knockout-2-0")
	assert.False(t, final.Completed)
	assert.Nil(t, final.WinnerID)
	assert.Equal(t, "p1", *final.Player1ID)
	assert.Equal(t, "p2", *final.Player2ID)
	assert.Zero(t, final.Player1Score)
}

func TestAdvance_SameWinnerKeepsDownstream(t *testing.T) {
	matches := knockout(t, 4)
	complete(matches, "knockout-1-0", 3, 1)
	complete(matches, "knockout-1-1", 3, 1)
	complete(matches, "knockout-2-0", 5, 2)

	complete(matches, "knockout-1-0", 9, 0)

	final := find(t, matches, "knockout-2-0")
	assert.True(t, final.Completed)
	assert.Equal(t, 5, final.Player1Score)
}

func TestRoundName(t *testing.T) {
	assert.Equal(t, "Final", RoundName(4, 4))
	assert.Equal(t, "Semi-Final", RoundName(3, 4))
	assert.Equal(t, "Quarter-Final", RoundName(2, 4))
	assert.Equal(t, "Round 1", RoundName(1, 4))
	assert.Equal(t, "Final", RoundName(1, 1))
}

func TestGroupRounds_Knockout(t *testing.T) {
	rounds := GroupRounds(knockout(t, 16), models.FormatKnockout)
	require.Len(t, rounds, 4)

	names := []string{rounds[0].Name, rounds[1].Name, rounds[2].Name, rounds[3].Name}
	assert.Equal(t, []string{"Round 1", "Quarter-Final", "Semi-Final", "Final"}, names)
	assert.Len(t, rounds[0].Matches, 8)
	assert.Len(t, rounds[3].Matches, 1)
	for i, m := range rounds[1].Matches {
		assert.Equal(t, i, m.SlotIndex)
	}
}
