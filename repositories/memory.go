package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/models"
)

// In-memory repositories back the service when no DATABASE_URL is set and
// in tests. Stored values are copied on the way in and out.

type memoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]*models.Game
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGameRepository{games: make(map[string]*models.Game)}
}

func (r *memoryGameRepository) Create(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; ok {
		return ErrGameConflict
	}
	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.UpdatedAt = now
	r.games[game.ID] = game.Clone()
	return nil
}

func (r *memoryGameRepository) GetByID(_ context.Context, id string) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return game.Clone(), nil
}

func (r *memoryGameRepository) Update(_ context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.games[game.ID]
	if !ok {
		return ErrGameNotFound
	}
	game.CreatedAt = stored.CreatedAt
	game.UpdatedAt = time.Now().UTC()
	r.games[game.ID] = game.Clone()
	return nil
}

func (r *memoryGameRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

type memoryHistoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records []models.GameRecord
}

func NewMemoryHistoryRepository() HistoryRepository {
	return &memoryHistoryRepository{}
}

func (r *memoryHistoryRepository) Save(_ context.Context, record *models.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.GameID == record.GameID {
			return ErrGameAlreadyRecorded
		}
	}
	r.nextID++
	record.ID = r.nextID
	r.records = append(r.records, copyRecord(*record))
	return nil
}

func (r *memoryHistoryRepository) List(ctx context.Context, limit int) ([]models.GameRecord, error) {
	return r.Search(ctx, models.HistoryFilter{Limit: limit})
}

func (r *memoryHistoryRepository) Search(_ context.Context, filter models.HistoryFilter) ([]models.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.GameRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Matches(rec) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryHistoryRepository) CountByMode(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range r.records {
		counts[rec.Mode]++
	}
	return counts, nil
}

func copyRecord(rec models.GameRecord) models.GameRecord {
	c := rec
	c.Players = append([]models.RecordPlayer(nil), rec.Players...)
	c.Scores = make(map[string]int, len(rec.Scores))
	for k, v := range rec.Scores {
		c.Scores[k] = v
	}
	return c
}
