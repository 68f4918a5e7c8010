package models

import (
	"strings"
	"time"
)

// GameRecord is the persisted summary of a finished game.
type GameRecord struct {
	ID        int64          `json:"id" db:"id"`
	GameID    string         `json:"game_id" db:"game_id"`
	Timestamp time.Time      `json:"timestamp" db:"timestamp"`
	Name      string         `json:"name" db:"name"`
	Mode      string         `json:"mode" db:"mode"`
	Players   []RecordPlayer `json:"players" db:"players"`
	Scores    map[string]int `json:"scores" db:"scores"`
}

// HistoryFilter narrows a history listing. Empty fields match every record
// and a non-positive Limit returns all matches.
type HistoryFilter struct {
	Mode  string
	Query string
	Limit int
}

// Matches reports whether rec has the filter's mode and contains Query,
// case-insensitively, in its name or in a player name.
func (f HistoryFilter) Matches(rec GameRecord) bool {
	if f.Mode != "" && rec.Mode != f.Mode {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" || strings.Contains(strings.ToLower(rec.Name), q) {
		return true
	}
	for _, p := range rec.Players {
		if strings.Contains(strings.ToLower(p.Name), q) {
			return true
		}
	}
	return false
}

// LeaderboardEntry is a player's total across all recorded games.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Games    int    `json:"games"`
}

// Standing is one row of a ranked table for the active game.
type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Score    int    `json:"score"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Played   int    `json:"played"`
}
