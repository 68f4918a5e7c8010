package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/scoreboard/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameConflict = errors.New("game id already exists")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id string) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, name, category, format, status, current_round, players, matches,
	host_pin_hash, created_at, updated_at, completed_at`

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	players, matches, err := encodeRoster(game)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.UpdatedAt = now

	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.ExecContext(ctx, query,
		game.ID, game.Name, game.Category, game.Format, game.Status, game.CurrentRound,
		players, matches, game.HostPINHash, game.CreatedAt, game.UpdatedAt, game.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "games_pkey") {
			return ErrGameConflict
		}
		return fmt.Errorf("insert game %s: %w", game.ID, err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	var (
		game             models.Game
		players, matches []byte
		completedAt      sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID, &game.Name, &game.Category, &game.Format, &game.Status, &game.CurrentRound,
		&players, &matches, &game.HostPINHash, &game.CreatedAt, &game.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}

	if err := scanJSON(players, &game.Players); err != nil {
		return nil, err
	}
	if err := scanJSON(matches, &game.Matches); err != nil {
		return nil, err
	}
	if game.Players == nil {
		game.Players = []models.Player{}
	}
	if game.Matches == nil {
		game.Matches = []models.Match{}
	}
	if completedAt.Valid {
		t := completedAt.Time
		game.CompletedAt = &t
	}
	return &game, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	players, matches, err := encodeRoster(game)
	if err != nil {
		return err
	}
	game.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE games
		SET name = $1, category = $2, status = $3, current_round = $4, players = $5,
		    matches = $6, host_pin_hash = $7, updated_at = $8, completed_at = $9
		WHERE id = $10`
	result, err := r.db.ExecContext(ctx, query,
		game.Name, game.Category, game.Status, game.CurrentRound, players,
		matches, game.HostPINHash, game.UpdatedAt, game.CompletedAt, game.ID,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", game.ID, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func encodeRoster(game *models.Game) (players, matches []byte, err error) {
	if players, err = jsonColumn(game.Players); err != nil {
		return nil, nil, err
	}
	if matches, err = jsonColumn(game.Matches); err != nil {
		return nil, nil, err
	}
	return players, matches, nil
}
