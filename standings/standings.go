// Package standings ranks players of a game and aggregates finished games
// into an all-time leaderboard. Everything here is a pure function of its
// arguments.
package standings

import (
	"sort"

	"github.com/Dosada05/scoreboard/models"
)

const DefaultLeaderboardSize = 10

// Rank orders the roster for display.
//
//   - league: wins desc, then score desc
//   - normal: score desc
//   - knockout: champion first, then deepest round reached, then wins
//
// Remaining ties keep roster order. Match participants that are not in the
// roster are ignored.
func Rank(players []models.Player, matches []models.Match, format models.Format) []models.Standing {
	index := make(map[string]int, len(players))
	rows := make([]models.Standing, len(players))
	for i, p := range players {
		index[p.ID] = i
		rows[i] = models.Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Avatar:   p.Avatar,
			Score:    p.Score,
			Wins:     p.Wins,
			Losses:   p.Losses,
		}
	}

	reached := make([]int, len(players))
	for _, m := range matches {
		for _, id := range []*string{m.Player1ID, m.Player2ID} {
			if id == nil {
				continue
			}
			i, ok := index[*id]
			if !ok {
				continue
			}
			if m.Completed && !m.IsBye() {
				rows[i].Played++
			}
			if m.Round > reached[i] {
				reached[i] = m.Round
			}
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}

	var less func(a, b int) bool
	switch format {
	case models.FormatLeague:
		less = func(a, b int) bool {
			if rows[a].Wins != rows[b].Wins {
				return rows[a].Wins > rows[b].Wins
			}
			return rows[a].Score > rows[b].Score
		}
	case models.FormatKnockout:
		champion, _ := Champion(matches)
		less = func(a, b int) bool {
			ca, cb := rows[a].PlayerID == champion, rows[b].PlayerID == champion
			if ca != cb {
				return ca
			}
			if reached[a] != reached[b] {
				return reached[a] > reached[b]
			}
			return rows[a].Wins > rows[b].Wins
		}
	default:
		less = func(a, b int) bool {
			return rows[a].Score > rows[b].Score
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })

	out := make([]models.Standing, len(rows))
	for pos, i := range order {
		out[pos] = rows[i]
		out[pos].Rank = pos + 1
	}
	return out
}

// Champion returns the winner of the single final-round match of a knockout
// bracket. ok is false while the final is undecided.
func Champion(matches []models.Match) (string, bool) {
	finalRound, inFinal := 0, 0
	var final models.Match
	for _, m := range matches {
		switch {
		case m.Round > finalRound:
			finalRound, inFinal, final = m.Round, 1, m
		case m.Round == finalRound:
			inFinal++
		}
	}
	if inFinal != 1 || !final.Completed || final.WinnerID == nil {
		return "", false
	}
	return *final.WinnerID, true
}

// Finished reports whether a tournament format reached its terminal state:
// every league fixture played, or the knockout final decided. Free-form
// games only end when the host finishes them.
func Finished(format models.Format, matches []models.Match) bool {
	switch format {
	case models.FormatLeague:
		if len(matches) == 0 {
			return false
		}
		for _, m := range matches {
			if !m.Completed {
				return false
			}
		}
		return true
	case models.FormatKnockout:
		_, ok := Champion(matches)
		return ok
	default:
		return false
	}
}

// Leaderboard sums every player's score across finished games. Players are
// keyed by id; the name of their first appearance is kept. Ties keep first
// appearance order. topN <= 0 selects DefaultLeaderboardSize.
func Leaderboard(records []models.GameRecord, topN int) []models.LeaderboardEntry {
	if topN <= 0 {
		topN = DefaultLeaderboardSize
	}

	index := make(map[string]int)
	entries := make([]models.LeaderboardEntry, 0)
	for _, r := range records {
		for _, p := range r.Players {
			i, ok := index[p.ID]
			if !ok {
				i = len(entries)
				index[p.ID] = i
				entries = append(entries, models.LeaderboardEntry{PlayerID: p.ID, Name: p.Name})
			}
			entries[i].Score += r.Scores[p.ID]
			entries[i].Games++
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
