package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/standings"
	"github.com/Dosada05/scoreboard/storage"
	"github.com/Dosada05/scoreboard/utils"
)

const (
	minPINLength = 4
	maxPINLength = 12
)

// Broadcaster pushes game snapshots to connected viewers.
type Broadcaster interface {
	Publish(gameID, messageType string, payload interface{})
}

type CreateGameInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Format   string          `json:"format"`
	Players  []models.Player `json:"players"`
	HostPIN  string          `json:"host_pin"`
}

type CreatedGame struct {
	Game      *GameView  `json:"game"`
	HostToken *HostToken `json:"host"`
}

// GameView is a game snapshot with its derived rounds and standings.
type GameView struct {
	*models.Game
	Rounds     []models.Round    `json:"rounds,omitempty"`
	Standings  []models.Standing `json:"standings"`
	ChampionID *string           `json:"champion_id,omitempty"`
}

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*CreatedGame, error)
	GetGame(ctx context.Context, gameID string) (*GameView, error)
	SubmitResult(ctx context.Context, gameID, matchID string, score1, score2 int) (*GameView, error)
	AdjustScore(ctx context.Context, gameID, playerID string, delta int) (*GameView, error)
	SetScore(ctx context.Context, gameID, playerID string, score int) (*GameView, error)
	ResetScores(ctx context.Context, gameID string) (*GameView, error)
	SetCurrentRound(ctx context.Context, gameID string, round int) (*GameView, error)
	RegenerateSchedule(ctx context.Context, gameID string) (*GameView, error)
	FinishGame(ctx context.Context, gameID string) (*models.GameRecord, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type gameService struct {
	gameRepo    repositories.GameRepository
	historyRepo repositories.HistoryRepository
	auth        AuthService
	archiver    storage.GameArchiver
	broadcaster Broadcaster
	metrics     metrics.Recorder
	logger      *slog.Logger
	locks       *keyedMutex
	now         func() time.Time
}

func NewGameService(
	gameRepo repositories.GameRepository,
	historyRepo repositories.HistoryRepository,
	auth AuthService,
	archiver storage.GameArchiver,
	broadcaster Broadcaster,
	recorder metrics.Recorder,
	logger *slog.Logger,
) GameService {
	if archiver == nil {
		archiver = storage.NewNoopArchiver()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		gameRepo:    gameRepo,
		historyRepo: historyRepo,
		auth:        auth,
		archiver:    archiver,
		broadcaster: broadcaster,
		metrics:     recorder,
		logger:      logger,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// NewView derives rounds, standings and the champion of a snapshot.
func NewView(game *models.Game) *GameView {
	view := &GameView{
		Game:      game,
		Standings: standings.Rank(game.Players, game.Matches, game.Format),
	}
	if game.Format.IsTournament() {
		view.Rounds = brackets.GroupRounds(game.Matches, game.Format)
	}
	if game.Format == models.FormatKnockout {
		if id, ok := standings.Champion(game.Matches); ok {
			view.ChampionID = &id
		}
	}
	return view
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (created *CreatedGame, err error) {
	defer s.observe("create_game", time.Now(), &err)

	format, err := models.ParseFormat(strings.TrimSpace(input.Format))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var pinHash string
	if pin := strings.TrimSpace(input.HostPIN); pin != "" {
		if len(pin) < minPINLength || len(pin) > maxPINLength {
			return nil, ErrInvalidPIN
		}
		if pinHash, err = utils.HashPIN(pin); err != nil {
			return nil, err
		}
	}

	game, err := NewGame(ctx, NewGameInput{
		Name:     input.Name,
		Category: input.Category,
		Format:   format,
		Players:  input.Players,
	})
	if err != nil {
		return nil, err
	}
	game.HostPINHash = pinHash

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	token, err := s.auth.IssueHostToken(game.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.GameCreated(string(game.Format))
	s.logger.InfoContext(ctx, "game created",
		slog.String("game_id", game.ID),
		slog.String("format", string(game.Format)),
		slog.Int("players", len(game.Players)),
		slog.Int("matches", len(game.Matches)),
	)
	return &CreatedGame{Game: NewView(game), HostToken: token}, nil
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*GameView, error) {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return NewView(game), nil
}

func (s *gameService) SubmitResult(ctx context.Context, gameID, matchID string, score1, score2 int) (*GameView, error) {
	return s.mutate(ctx, "submit_result", gameID, func(game *models.Game) (*models.Game, error) {
		next, err := ApplyResult(game, matchID, score1, score2)
		if err != nil {
			return nil, err
		}
		m := next.Matches[next.MatchIndex(matchID)]
		s.metrics.ResultRecorded(string(next.Format), m.WinnerID == nil)
		return next, nil
	})
}

func (s *gameService) AdjustScore(ctx context.Context, gameID, playerID string, delta int) (*GameView, error) {
	return s.mutate(ctx, "adjust_score", gameID, func(game *models.Game) (*models.Game, error) {
		return AdjustScore(game, playerID, delta)
	})
}

func (s *gameService) SetScore(ctx context.Context, gameID, playerID string, score int) (*GameView, error) {
	return s.mutate(ctx, "set_score", gameID, func(game *models.Game) (*models.Game, error) {
		return SetScore(game, playerID, score)
	})
}

func (s *gameService) ResetScores(ctx context.Context, gameID string) (*GameView, error) {
	return s.mutate(ctx, "reset_scores", gameID, ResetScores)
}

func (s *gameService) SetCurrentRound(ctx context.Context, gameID string, round int) (*GameView, error) {
	return s.mutate(ctx, "set_round", gameID, func(game *models.Game) (*models.Game, error) {
		return SetCurrentRound(game, round)
	})
}

func (s *gameService) RegenerateSchedule(ctx context.Context, gameID string) (*GameView, error) {
	return s.mutate(ctx, "regenerate_schedule", gameID, func(game *models.Game) (*models.Game, error) {
		return RegenerateSchedule(ctx, game)
	})
}

// FinishGame completes the game and stores its history record. The completed
// game is persisted before the record, so a failed save can be retried.
// Finishing a game that is already recorded fails with ErrGameCompleted.
func (s *gameService) FinishGame(ctx context.Context, gameID string) (record *models.GameRecord, err error) {
	defer s.observe("finish_game", time.Now(), &err)

	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Status == models.GameStatusActive {
		done := Complete(game, s.now())
		if err := s.gameRepo.Update(ctx, done); err != nil {
			return nil, fmt.Errorf("failed to update game %s: %w", gameID, err)
		}
		s.metrics.GameCompleted(string(done.Format))
		s.publish(done)
		game = done
	}

	record, err = s.finalize(ctx, game)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "game finished", slog.String("game_id", gameID), slog.Int64("record_id", record.ID))
	return record, nil
}

func (s *gameService) DeleteGame(ctx context.Context, gameID string) (err error) {
	defer s.observe("delete_game", time.Now(), &err)

	unlock := s.locks.Lock(gameID)
	defer unlock()

	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	if err := s.archiver.Remove(ctx, gameID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove game archive", slog.String("game_id", gameID), slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "game deleted", slog.String("game_id", gameID))
	return nil
}

// mutate runs one transition under the game's lock, persists the result and
// pushes it to viewers.
func (s *gameService) mutate(
	ctx context.Context,
	operation, gameID string,
	transition func(*models.Game) (*models.Game, error),
) (view *GameView, err error) {
	defer s.observe(operation, time.Now(), &err)

	unlock := s.locks.Lock(gameID)
	defer unlock()

	current, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	next, err := transition(current)
	if err != nil {
		return nil, err
	}

	justCompleted := current.Status == models.GameStatusActive && next.Status == models.GameStatusCompleted
	if justCompleted {
		next = Complete(next, s.now())
	}

	if err := s.gameRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update game %s: %w", gameID, err)
	}

	if justCompleted {
		s.metrics.GameCompleted(string(next.Format))
		if _, err := s.finalize(ctx, next); err != nil {
			s.logger.ErrorContext(ctx, "failed to record completed game",
				slog.String("game_id", gameID), slog.Any("error", err))
		}
	}

	s.publish(next)
	s.logger.DebugContext(ctx, "game updated", slog.String("game_id", gameID), slog.String("operation", operation))
	return NewView(next), nil
}

// finalize stores the history record and then archives the game.
// An archive failure is logged; a history failure is returned. A game that
// is already recorded is not archived again.
func (s *gameService) finalize(ctx context.Context, game *models.Game) (*models.GameRecord, error) {
	record := BuildRecord(game, s.now())
	if err := s.historyRepo.Save(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrGameAlreadyRecorded) {
			return nil, fmt.Errorf("%w: %s already recorded", ErrGameCompleted, game.ID)
		}
		return nil, fmt.Errorf("failed to save result of game %s: %w", game.ID, err)
	}

	res, err := s.archiver.Archive(ctx, game, record)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive game", slog.String("game_id", game.ID), slog.Any("error", err))
		return record, nil
	}
	if res != nil {
		s.logger.InfoContext(ctx, "game archived", slog.String("game_id", game.ID), slog.String("location", res.Location))
	}
	return record, nil
}

func (s *gameService) load(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return game, nil
}

func (s *gameService) publish(game *models.Game) {
	if s.broadcaster == nil {
		return
	}
	messageType := brackets.MessageGameUpdated
	if game.Status == models.GameStatusCompleted {
		messageType = brackets.MessageGameCompleted
	}
	s.broadcaster.Publish(game.ID, messageType, NewView(game))
}

func (s *gameService) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveOperation(operation, started, *err)
}
