package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/standings"
)

// ErrNotEnoughPlayers is returned when a tournament roster is below two players.
var ErrNotEnoughPlayers = brackets.ErrNotEnoughPlayers

// The functions in this file are the game transitions. Each takes a snapshot,
// works on a deep copy and returns the new snapshot, so a failed transition
// leaves the caller's game exactly as it was.

type NewGameInput struct {
	Name     string
	Category string
	Format   models.Format
	Players  []models.Player
}

// NewGame validates the roster, assigns missing player ids and generates the
// schedule for tournament formats.
func NewGame(ctx context.Context, input NewGameInput) (*models.Game, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGameNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}
	if len(input.Players) == 0 {
		return nil, ErrNoPlayers
	}

	players := make([]models.Player, len(input.Players))
	seen := make(map[string]struct{}, len(input.Players))
	for i, p := range input.Players {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: player #%d", ErrPlayerNameMissing, i+1)
		}
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
		p.Score, p.Wins, p.Losses = 0, 0, 0
		players[i] = p
	}

	game := &models.Game{
		ID:       uuid.NewString(),
		Name:     name,
		Category: strings.TrimSpace(input.Category),
		Format:   input.Format,
		Status:   models.GameStatusActive,
		Players:  players,
		Matches:  []models.Match{},
	}

	if game.Format.IsTournament() {
		matches, err := generateSchedule(ctx, game)
		if err != nil {
			return nil, err
		}
		game.Matches = matches
		game.CurrentRound = 1
	}
	return game, nil
}

// RegenerateSchedule rebuilds the fixtures of a tournament that has no
// recorded results yet. The schedule depends only on roster order.
func RegenerateSchedule(ctx context.Context, game *models.Game) (*models.Game, error) {
	if err := checkActive(game); err != nil {
		return nil, err
	}
	if !game.Format.IsTournament() {
		return nil, fmt.Errorf("%w: %s has no schedule", ErrFormatMismatch, game.Format)
	}
	if game.HasResults() {
		return nil, ErrScheduleLocked
	}

	out := game.Clone()
	matches, err := generateSchedule(ctx, out)
	if err != nil {
		return nil, err
	}
	out.Matches = matches
	out.CurrentRound = 1
	recomputeTotals(out)
	return out, nil
}

// ApplyResult records the score of a league fixture or knockout match.
// Scores are clamped at 0. Re-submitting a completed match replaces its
// previous result; player totals are always rebuilt from the stored matches.
func ApplyResult(game *models.Game, matchID string, score1, score2 int) (*models.Game, error) {
	if err := checkActive(game); err != nil {
		return nil, err
	}
	if !game.Format.IsTournament() {
		return nil, fmt.Errorf("%w: %s games have no matches", ErrFormatMismatch, game.Format)
	}

	idx := game.MatchIndex(matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	current := game.Matches[idx]
	if current.IsBye() {
		return nil, fmt.Errorf("%w: %s", ErrByeMatch, matchID)
	}
	if !current.Ready() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
	}

	score1, score2 = models.NormalizeScore(score1), models.NormalizeScore(score2)
	if game.Format == models.FormatKnockout && score1 == score2 {
		return nil, fmt.Errorf("%w: %s %d-%d", ErrDrawNotAllowed, matchID, score1, score2)
	}

	out := game.Clone()
	m := &out.Matches[idx]
	m.Player1Score, m.Player2Score = score1, score2
	m.Completed = true
	switch {
	case score1 > score2:
		m.WinnerID = models.StringPtr(*m.Player1ID)
	case score2 > score1:
		m.WinnerID = models.StringPtr(*m.Player2ID)
	default:
		m.WinnerID = nil
	}

	if out.Format == models.FormatKnockout {
		brackets.Advance(out.Matches, idx)
		brackets.ResolveByes(out.Matches)
	}

	recomputeTotals(out)
	if standings.Finished(out.Format, out.Matches) {
		out.Status = models.GameStatusCompleted
	}
	return out, nil
}

// AdjustScore adds delta to a player's free-form score, never going below 0.
func AdjustScore(game *models.Game, playerID string, delta int) (*models.Game, error) {
	out, idx, err := normalPlayer(game, playerID)
	if err != nil {
		return nil, err
	}
	out.Players[idx].Score = models.NormalizeScore(out.Players[idx].Score + delta)
	return out, nil
}

// SetScore overwrites a player's free-form score.
func SetScore(game *models.Game, playerID string, score int) (*models.Game, error) {
	out, idx, err := normalPlayer(game, playerID)
	if err != nil {
		return nil, err
	}
	out.Players[idx].Score = models.NormalizeScore(score)
	return out, nil
}

// ResetScores sets every free-form score back to 0.
func ResetScores(game *models.Game) (*models.Game, error) {
	if err := checkActive(game); err != nil {
		return nil, err
	}
	if game.Format != models.FormatNormal {
		return nil, fmt.Errorf("%w: reset needs %s, got %s", ErrFormatMismatch, models.FormatNormal, game.Format)
	}
	out := game.Clone()
	for i := range out.Players {
		out.Players[i].Score = 0
	}
	return out, nil
}

// SetCurrentRound moves the displayed round, clamped to the schedule.
func SetCurrentRound(game *models.Game, round int) (*models.Game, error) {
	if game == nil {
		return nil, ErrGameNotFound
	}
	if !game.Format.IsTournament() {
		return nil, fmt.Errorf("%w: %s games have no rounds", ErrFormatMismatch, game.Format)
	}
	total := game.TotalRounds()
	if round > total {
		round = total
	}
	if round < 1 {
		round = 1
	}
	out := game.Clone()
	out.CurrentRound = round
	return out, nil
}

// Complete marks the game finished. A completed game stays completed.
func Complete(game *models.Game, now time.Time) *models.Game {
	out := game.Clone()
	out.Status = models.GameStatusCompleted
	if out.CompletedAt == nil {
		t := now.UTC()
		out.CompletedAt = &t
	}
	return out
}

// BuildRecord produces the history entry for a game: every player with the
// final score they hold.
func BuildRecord(game *models.Game, now time.Time) *models.GameRecord {
	record := &models.GameRecord{
		GameID:    game.ID,
		Timestamp: now.UTC(),
		Name:      game.Name,
		Mode:      string(game.Format),
		Players:   make([]models.RecordPlayer, len(game.Players)),
		Scores:    make(map[string]int, len(game.Players)),
	}
	for i, p := range game.Players {
		record.Players[i] = models.RecordPlayer{ID: p.ID, Name: p.Name}
		record.Scores[p.ID] = p.Score
	}
	return record
}

func generateSchedule(ctx context.Context, game *models.Game) ([]models.Match, error) {
	gen, err := brackets.NewGenerator(game.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	matches, err := gen.GenerateBracket(ctx, brackets.GenerateBracketParams{Players: game.Players})
	if err != nil {
		return nil, fmt.Errorf("generate %s schedule: %w", gen.GetName(), err)
	}
	return matches, nil
}

// recomputeTotals rebuilds score, wins and losses of a tournament roster
// from its completed non-bye matches.
func recomputeTotals(game *models.Game) {
	if !game.Format.IsTournament() {
		return
	}
	index := make(map[string]int, len(game.Players))
	for i := range game.Players {
		index[game.Players[i].ID] = i
		game.Players[i].Score, game.Players[i].Wins, game.Players[i].Losses = 0, 0, 0
	}

	credit := func(id *string, score int, won, lost bool) {
		if id == nil {
			return
		}
		i, ok := index[*id]
		if !ok {
			return
		}
		p := &game.Players[i]
		p.Score += score
		if won {
			p.Wins++
		}
		if lost {
			p.Losses++
		}
	}

	for _, m := range game.Matches {
		if !m.Completed || m.IsBye() {
			continue
		}
		credit(m.Player1ID, m.Player1Score, m.Player1Score > m.Player2Score, m.Player1Score < m.Player2Score)
		credit(m.Player2ID, m.Player2Score, m.Player2Score > m.Player1Score, m.Player2Score < m.Player1Score)
	}
}

func normalPlayer(game *models.Game, playerID string) (*models.Game, int, error) {
	if err := checkActive(game); err != nil {
		return nil, -1, err
	}
	if game.Format != models.FormatNormal {
		return nil, -1, fmt.Errorf("%w: direct scoring needs %s, got %s", ErrFormatMismatch, models.FormatNormal, game.Format)
	}
	idx := game.PlayerIndex(playerID)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return game.Clone(), idx, nil
}

func checkActive(game *models.Game) error {
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status == models.GameStatusCompleted {
		return ErrGameCompleted
	}
	return nil
}
