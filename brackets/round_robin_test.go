package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
)

func TestRoundRobin_EveryPairPlaysOnce(t *testing.T) {
	for n := 2; n <= 11; n++ {
		players := roster(n)
		matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: players})
		require.NoError(t, err)

		pairs := make(map[[2]string]int)
		fixtures := 0
		for _, m := range matches {
			if m.IsBye() {
				continue
			}
			fixtures++
			a, b := *m.Player1ID, *m.Player2ID
			if a > b {
				a, b = b, a
			}
			pairs[[2]string{a, b}]++
		}

		assert.Equal(t, n*(n-1)/2, fixtures, "n=%d", n)
		assert.Len(t, pairs, n*(n-1)/2, "n=%d", n)
		for pair, count := range pairs {
			assert.Equal(t, 1, count, "n=%d pair %v", n, pair)
		}
	}
}

func TestRoundRobin_EachPlayerOncePerRound(t *testing.T) {
	for n := 2; n <= 11; n++ {
		players := roster(n)
		matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: players})
		require.NoError(t, err)

		rounds := byRound(matches)
		wantRounds := n - 1
		if n%2 == 1 {
			wantRounds = n
		}
		assert.Len(t, rounds, wantRounds, "n=%d", n)

		byes := make(map[string]int)
		for r, ms := range rounds {
			seen := make(map[string]int)
			for _, m := range ms {
				assert.Equal(t, r, m.Round)
				seen[*m.Player1ID]++
				if m.Player2ID != nil {
					seen[*m.Player2ID]++
				}
				if m.IsBye() {
					byes[*m.Player1ID]++
					assert.True(t, m.Completed)
					assert.Nil(t, m.Player2ID)
				} else {
					assert.False(t, m.Completed)
				}
			}
			assert.Len(t, seen, n, "n=%d round %d", n, r)
			for id, c := range seen {
				assert.Equal(t, 1, c, "n=%d round %d player %s", n, r, id)
			}
		}

		if n%2 == 1 {
			assert.Len(t, byes, n, "every player rests once, n=%d", n)
			for id, c := range byes {
				assert.Equal(t, 1, c, "player %s", id)
			}
		} else {
			assert.Empty(t, byes)
		}
	}
}

func TestRoundRobin_IsDeterministic(t *testing.T) {
	players := roster(6)
	gen := NewRoundRobinGenerator()

	first, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Players: players})
	require.NoError(t, err)
	second, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Players: players})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("regenerated schedule differs (-first +second):\n%s", diff)
	}
}

func TestRoundRobin_FourPlayers(t *testing.T) {
	players := roster(4)
	matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: players})
	require.NoError(t, err)

	require.Len(t, matches, 6)
	played := make(map[string]int)
	for _, m := range matches {
		played[*m.Player1ID]++
		played[*m.Player2ID]++
	}
	for _, p := range players {
		assert.Equal(t, 3, played[p.ID], p.ID)
	}

	assert.Equal(t, "league-1-0", matches[0].ID)
	assert.Equal(t, "p0", *matches[0].Player1ID)
	assert.Equal(t, "p3", *matches[0].Player2ID)
	assert.Equal(t, "p1", *matches[1].Player1ID)
	assert.Equal(t, "p2", *matches[1].Player2ID)
	// second round after rotating seats 1..3 once
	assert.Equal(t, "p0", *matches[2].Player1ID)
	assert.Equal(t, "p1", *matches[2].Player2ID)
}

func TestRoundRobin_SlotIndexMatchesPosition(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: roster(5)})
	require.NoError(t, err)

	for r, ms := range byRound(matches) {
		for i, m := range ms {
			assert.Equal(t, i, m.SlotIndex, "round %d", r)
		}
	}
}

func TestGroupRounds_League(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Players: roster(4)})
	require.NoError(t, err)

	rounds := GroupRounds(matches, models.FormatLeague)
	require.Len(t, rounds, 3)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, fmt.Sprintf("Round %d", i+1), r.Name)
		assert.Len(t, r.Matches, 2)
	}
}
