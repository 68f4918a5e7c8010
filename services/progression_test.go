package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/standings"
)

func newGame(t *testing.T, format models.Format, players ...models.Player) *models.Game {
	t.Helper()
	game, err := NewGame(context.Background(), NewGameInput{Name: "Friday night", Format: format, Players: players})
	require.NoError(t, err)
	return game
}

func abcd() []models.Player {
	return []models.Player{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "c", Name: "Carol"},
		{ID: "d", Name: "Dave"},
	}
}

func playerByName(t *testing.T, game *models.Game, name string) models.Player {
	t.Helper()
	for _, p := range game.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %s not in roster", name)
	return models.Player{}
}

func matchByID(t *testing.T, game *models.Game, id string) models.Match {
	t.Helper()
	idx := game.MatchIndex(id)
	require.GreaterOrEqual(t, idx, 0, "match %s", id)
	return game.Matches[idx]
}

// fourPlayerOutcomes: a beats b and c, d upsets a, b beats c and d, c beats d.
var fourPlayerOutcomes = map[[2]string][2]int{
	{"a", "b"}: {3, 1},
	{"a", "c"}: {3, 1},
	{"d", "a"}: {3, 0},
	{"b", "c"}: {3, 1},
	{"b", "d"}: {3, 1},
	{"c", "d"}: {3, 1},
}

func outcome(outcomes map[[2]string][2]int, m models.Match) (int, int) {
	p1, p2 := *m.Player1ID, *m.Player2ID
	if s, ok := outcomes[[2]string{p1, p2}]; ok {
		return s[0], s[1]
	}
	s := outcomes[[2]string{p2, p1}]
	return s[1], s[0]
}

func playAll(t *testing.T, game *models.Game, outcomes map[[2]string][2]int, order []int) *models.Game {
	t.Helper()
	var err error
	for _, i := range order {
		m := game.Matches[i]
		s1, s2 := outcome(outcomes, m)
		game, err = ApplyResult(game, m.ID, s1, s2)
		require.NoError(t, err, m.ID)
	}
	return game
}

func TestNewGame_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewGame(ctx, NewGameInput{Name: "  ", Format: models.FormatNormal, Players: abcd()})
	assert.ErrorIs(t, err, ErrGameNameRequired)

	_, err = NewGame(ctx, NewGameInput{Name: "x", Format: "ladder", Players: abcd()})
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewGame(ctx, NewGameInput{Name: "x", Format: models.FormatNormal})
	assert.ErrorIs(t, err, ErrNoPlayers)

	_, err = NewGame(ctx, NewGameInput{Name: "x", Format: models.FormatNormal, Players: []models.Player{{ID: "a", Name: ""}}})
	assert.ErrorIs(t, err, ErrPlayerNameMissing)

	dup := []models.Player{{ID: "a", Name: "Alice"}, {ID: "a", Name: "Again"}}
	_, err = NewGame(ctx, NewGameInput{Name: "x", Format: models.FormatNormal, Players: dup})
	assert.ErrorIs(t, err, ErrDuplicatePlayer)

	for _, format := range []models.Format{models.FormatLeague, models.FormatKnockout} {
		_, err = NewGame(ctx, NewGameInput{Name: "x", Format: format, Players: abcd()[:1]})
		assert.ErrorIs(t, err, ErrNotEnoughPlayers, format)
	}
}

func TestNewGame_AssignsIDsAndResetsTotals(t *testing.T) {
	game := newGame(t, models.FormatNormal,
		models.Player{Name: " Alice ", Score: 40, Wins: 2},
		models.Player{ID: "bob", Name: "Bob"},
	)

	assert.NotEmpty(t, game.ID)
	assert.Equal(t, models.GameStatusActive, game.Status)
	assert.Empty(t, game.Matches)
	assert.Zero(t, game.CurrentRound)

	require.Len(t, game.Players, 2)
	assert.NotEmpty(t, game.Players[0].ID)
	assert.Equal(t, "Alice", game.Players[0].Name)
	assert.Zero(t, game.Players[0].Score)
	assert.Zero(t, game.Players[0].Wins)
	assert.Equal(t, "bob", game.Players[1].ID)
}

func TestKnockout_ThreePlayerScenario(t *testing.T) {
	game := newGame(t, models.FormatKnockout,
		models.Player{Name: "Alice"}, models.Player{Name: "Bob"}, models.Player{Name: "Carol"})
	alice := playerByName(t, game, "Alice")
	carol := playerByName(t, game, "Carol")

	require.Len(t, game.Matches, 3)
	assert.Equal(t, 1, game.CurrentRound)

	bye := matchByID(t, game, "knockout-1-1")
	assert.True(t, bye.IsBye())
	assert.Equal(t, carol.ID, *bye.WinnerID)

	final := matchByID(t, game, "knockout-2-0")
	assert.Equal(t, carol.ID, *final.Player2ID)

	before := game.Clone()
	next, err := ApplyResult(game, "knockout-1-0", 10, 3)
	require.NoError(t, err)
	if diff := cmp.Diff(before, game); diff != "" {
		t.Fatalf("input snapshot was mutated:\n%s", diff)
	}

	final = matchByID(t, next, "knockout-2-0")
	assert.Equal(t, alice.ID, *final.Player1ID)
	assert.Equal(t, carol.ID, *final.Player2ID)
	assert.Equal(t, 1, playerByName(t, next, "Alice").Wins)
	assert.Equal(t, 10, playerByName(t, next, "Alice").Score)
	assert.Equal(t, 1, playerByName(t, next, "Bob").Losses)
	assert.Zero(t, playerByName(t, next, "Carol").Wins, "a bye is not a win")
	assert.Equal(t, models.GameStatusActive, next.Status)

	done, err := ApplyResult(next, "knockout-2-0", 2, 7)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusCompleted, done.Status)
	champion, ok := standings.Champion(done.Matches)
	require.True(t, ok)
	assert.Equal(t, carol.ID, champion)

	_, err = ApplyResult(done, "knockout-1-0", 1, 0)
	assert.ErrorIs(t, err, ErrGameCompleted)
}

func TestKnockout_DrawIsRejected(t *testing.T) {
	game := newGame(t, models.FormatKnockout, abcd()...)
	before := game.Clone()

	_, err := ApplyResult(game, "knockout-1-0", 5, 5)
	assert.ErrorIs(t, err, ErrDrawNotAllowed)
	if diff := cmp.Diff(before, game); diff != "" {
		t.Fatalf("draw changed state:\n%s", diff)
	}
}

func TestKnockout_RejectsByeAndUndecidedMatches(t *testing.T) {
	game := newGame(t, models.FormatKnockout, abcd()[:3]...)

	_, err := ApplyResult(game, "knockout-1-1", 3, 0)
	assert.ErrorIs(t, err, ErrByeMatch)

	_, err = ApplyResult(game, "knockout-2-0", 3, 0)
	assert.ErrorIs(t, err, ErrMatchNotReady)

	_, err = ApplyResult(game, "knockout-9-9", 3, 0)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestKnockout_ReentryChangesWinnerDownstream(t *testing.T) {
	game := newGame(t, models.FormatKnockout, abcd()...)
	var err error
	game, err = ApplyResult(game, "knockout-1-0", 3, 1)
	require.NoError(t, err)
	game, err = ApplyResult(game, "knockout-1-1", 3, 1)
	require.NoError(t, err)

	game, err = ApplyResult(game, "knockout-1-0", 0, 2)
	require.NoError(t, err)

	final := matchByID(t, game, "knockout-2-0")
	assert.Equal(t, "b", *final.Player1ID)
	assert.Equal(t, "c", *final.Player2ID)

	a := playerByName(t, game, "Alice")
	assert.Zero(t, a.Wins)
	assert.Equal(t, 1, a.Losses)
	assert.Zero(t, a.Score)
}

func TestLeague_FourPlayerScenario(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()...)

	require.Len(t, game.Matches, 6)
	assert.Equal(t, 3, game.TotalRounds())

	order := make([]int, len(game.Matches))
	for i := range order {
		order[i] = i
	}
	done := playAll(t, game, fourPlayerOutcomes, order)

	assert.Equal(t, models.GameStatusCompleted, done.Status)
	for _, p := range done.Players {
		assert.Equal(t, 3, p.Wins+p.Losses, p.ID)
	}

	rows := standings.Rank(done.Players, done.Matches, done.Format)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.PlayerID
	}
	// a and b both win twice, b scores more; c and d tie completely
	assert.Equal(t, []string{"b", "a", "c", "d"}, got)
	assert.Equal(t, 7, rows[0].Score)
	assert.Equal(t, 6, rows[1].Score)
}

func TestLeague_AggregationIsOrderIndependent(t *testing.T) {
	game := newGame(t, models.FormatLeague, append(abcd(), models.Player{ID: "e", Name: "Eve"})...)
	outcomes := map[[2]string][2]int{
		{"a", "e"}: {2, 0},
		{"e", "b"}: {4, 4},
		{"c", "e"}: {1, 0},
		{"e", "d"}: {6, 2},
	}
	for k, v := range fourPlayerOutcomes {
		outcomes[k] = v
	}

	var forward, backward []int
	for i, m := range game.Matches {
		if m.IsBye() {
			continue
		}
		forward = append(forward, i)
		backward = append([]int{i}, backward...)
	}

	one := playAll(t, game, outcomes, forward)
	two := playAll(t, game, outcomes, backward)
	if diff := cmp.Diff(one.Players, two.Players); diff != "" {
		t.Fatalf("totals depend on submission order:\n%s", diff)
	}
	if diff := cmp.Diff(one.Matches, two.Matches); diff != "" {
		t.Fatalf("matches depend on submission order:\n%s", diff)
	}
}

func TestLeague_DrawCreditsScoreOnly(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()...)
	m := game.Matches[0]

	next, err := ApplyResult(game, m.ID, 5, 5)
	require.NoError(t, err)

	played := matchByID(t, next, m.ID)
	assert.True(t, played.Completed)
	assert.Nil(t, played.WinnerID)

	for _, id := range []string{*m.Player1ID, *m.Player2ID} {
		p := next.Players[next.PlayerIndex(id)]
		assert.Equal(t, 5, p.Score)
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
	}
}

func TestLeague_ResubmissionReplacesResult(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()...)
	m := game.Matches[0]

	game, err := ApplyResult(game, m.ID, 4, 1)
	require.NoError(t, err)
	game, err = ApplyResult(game, m.ID, 4, 1)
	require.NoError(t, err)

	p1 := game.Players[game.PlayerIndex(*m.Player1ID)]
	assert.Equal(t, 4, p1.Score)
	assert.Equal(t, 1, p1.Wins)

	game, err = ApplyResult(game, m.ID, 0, 2)
	require.NoError(t, err)
	p1 = game.Players[game.PlayerIndex(*m.Player1ID)]
	p2 := game.Players[game.PlayerIndex(*m.Player2ID)]
	assert.Zero(t, p1.Score)
	assert.Zero(t, p1.Wins)
	assert.Equal(t, 1, p1.Losses)
	assert.Equal(t, 2, p2.Score)
	assert.Equal(t, 1, p2.Wins)
}

func TestLeague_NegativeScoresNormalize(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()...)
	m := game.Matches[0]

	next, err := ApplyResult(game, m.ID, -3, 2)
	require.NoError(t, err)
	played := matchByID(t, next, m.ID)
	assert.Zero(t, played.Player1Score)
	assert.Equal(t, *m.Player2ID, *played.WinnerID)
}

func TestLeague_OddRosterByeIsNotScorable(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()[:3]...)
	for _, m := range game.Matches {
		if m.IsBye() {
			_, err := ApplyResult(game, m.ID, 1, 0)
			assert.ErrorIs(t, err, ErrByeMatch)
			return
		}
	}
	t.Fatal("odd roster produced no bye")
}

func TestApplyResult_NormalGameHasNoMatches(t *testing.T) {
	game := newGame(t, models.FormatNormal, abcd()...)
	_, err := ApplyResult(game, "league-1-0", 1, 0)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestNormalScoring(t *testing.T) {
	game := newGame(t, models.FormatNormal, abcd()...)

	game, err := AdjustScore(game, "a", 5)
	require.NoError(t, err)
	game, err = AdjustScore(game, "a", -8)
	require.NoError(t, err)
	assert.Zero(t, game.Players[0].Score, "adjusting clamps at zero")

	game, err = SetScore(game, "b", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, game.Players[1].Score)
	game, err = SetScore(game, "b", -1)
	require.NoError(t, err)
	assert.Zero(t, game.Players[1].Score)

	game, err = SetScore(game, "c", 9)
	require.NoError(t, err)
	game, err = ResetScores(game)
	require.NoError(t, err)
	for _, p := range game.Players {
		assert.Zero(t, p.Score, p.ID)
	}

	_, err = AdjustScore(game, "nobody", 1)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	league := newGame(t, models.FormatLeague, abcd()...)
	_, err = AdjustScore(league, "a", 1)
	assert.ErrorIs(t, err, ErrFormatMismatch)
	_, err = ResetScores(league)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestSetCurrentRound_Clamps(t *testing.T) {
	game := newGame(t, models.FormatLeague, abcd()...)

	next, err := SetCurrentRound(game, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentRound)
	assert.Equal(t, 1, game.CurrentRound)

	next, err = SetCurrentRound(game, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, next.CurrentRound)

	next, err = SetCurrentRound(game, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, next.CurrentRound)

	_, err = SetCurrentRound(newGame(t, models.FormatNormal, abcd()...), 1)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestRegenerateSchedule(t *testing.T) {
	ctx := context.Background()
	game := newGame(t, models.FormatLeague, abcd()...)

	again, err := RegenerateSchedule(ctx, game)
	require.NoError(t, err)
	if diff := cmp.Diff(game.Matches, again.Matches); diff != "" {
		t.Fatalf("regenerated schedule differs:\n%s", diff)
	}

	played, err := ApplyResult(game, game.Matches[0].ID, 1, 0)
	require.NoError(t, err)
	_, err = RegenerateSchedule(ctx, played)
	assert.ErrorIs(t, err, ErrScheduleLocked)
}

func TestCompleteAndBuildRecord(t *testing.T) {
	game := newGame(t, models.FormatNormal, abcd()...)
	game, err := SetScore(game, "c", 12)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	done := Complete(game, now)
	assert.Equal(t, models.GameStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, now, *done.CompletedAt)
	assert.Equal(t, models.GameStatusActive, game.Status)

	again := Complete(done, now.Add(time.Hour))
	assert.Equal(t, now, *again.CompletedAt)

	record := BuildRecord(done, now)
	assert.Equal(t, done.ID, record.GameID)
	assert.Equal(t, "Friday night", record.Name)
	assert.Equal(t, "normal", record.Mode)
	assert.Equal(t, []models.RecordPlayer{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Carol"}, {ID: "d", Name: "Dave"}}, record.Players)
	assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": 12, "d": 0}, record.Scores)
}
