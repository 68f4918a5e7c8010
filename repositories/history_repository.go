package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/scoreboard/models"
)

var ErrGameAlreadyRecorded = errors.New("game result already recorded")

// HistoryRepository stores one record per finished game.
type HistoryRepository interface {
	Save(ctx context.Context, record *models.GameRecord) error
	// List returns the newest records first. limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]models.GameRecord, error)
	// Search is List narrowed by mode and a name or player search.
	Search(ctx context.Context, filter models.HistoryFilter) ([]models.GameRecord, error)
	// CountByMode returns how many records each mode has.
	CountByMode(ctx context.Context) (map[string]int, error)
}

type postgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

func (r *postgresHistoryRepository) Save(ctx context.Context, record *models.GameRecord) error {
	players, err := jsonColumn(record.Players)
	if err != nil {
		return err
	}
	scores, err := jsonColumn(record.Scores)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO game_results (game_id, recorded_at, name, mode, players, scores)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err = r.db.QueryRowContext(ctx, query,
		record.GameID, record.Timestamp, record.Name, record.Mode, players, scores,
	).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err, "game_results_game_id_key") {
			return ErrGameAlreadyRecorded
		}
		return fmt.Errorf("insert result for game %s: %w", record.GameID, err)
	}
	return nil
}

func (r *postgresHistoryRepository) List(ctx context.Context, limit int) ([]models.GameRecord, error) {
	return r.Search(ctx, models.HistoryFilter{Limit: limit})
}

func (r *postgresHistoryRepository) Search(ctx context.Context, filter models.HistoryFilter) ([]models.GameRecord, error) {
	query := `
		SELECT id, game_id, recorded_at, name, mode, players, scores
		FROM game_results
		WHERE ($1::text = '' OR mode = $1::text)
		  AND ($2::text = ''
		    OR name ILIKE '%' || $2::text || '%'
		    OR EXISTS (
		      SELECT 1 FROM jsonb_array_elements(players) AS p
		      WHERE p->>'name' ILIKE '%' || $2::text || '%'))
		ORDER BY recorded_at DESC, id DESC`
	args := []interface{}{filter.Mode, escapeLike(strings.TrimSpace(filter.Query))}
	if filter.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	defer rows.Close()

	records := make([]models.GameRecord, 0)
	for rows.Next() {
		var (
			rec             models.GameRecord
			players, scores []byte
		)
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.Timestamp, &rec.Name, &rec.Mode, &players, &scores); err != nil {
			return nil, fmt.Errorf("scan game result: %w", err)
		}
		if err := scanJSON(players, &rec.Players); err != nil {
			return nil, err
		}
		if err := scanJSON(scores, &rec.Scores); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *postgresHistoryRepository) CountByMode(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM game_results GROUP BY mode`)
	if err != nil {
		return nil, fmt.Errorf("count game results: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			mode string
			n    int
		)
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("scan game result count: %w", err)
		}
		counts[mode] = n
	}
	return counts, rows.Err()
}

// escapeLike quotes the LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
