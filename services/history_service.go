package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/standings"
)

const DefaultHistoryLimit = 100

type HistoryOverview struct {
	History     []models.GameRecord       `json:"history"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	Counts      map[string]int            `json:"counts"`
}

type HistoryService interface {
	// ListHistory returns the newest matching records first.
	ListHistory(ctx context.Context, filter models.HistoryFilter) ([]models.GameRecord, error)
	// ModeCounts returns the number of recorded games per mode, unfiltered.
	ModeCounts(ctx context.Context) (map[string]int, error)
	Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error)
	Overview(ctx context.Context, limit, topN int) (*HistoryOverview, error)
}

type historyService struct {
	historyRepo  repositories.HistoryRepository
	defaultLimit int
	defaultTop   int
}

// NewHistoryService uses defaultLimit and defaultTop when callers pass a
// non-positive value. Non-positive defaults fall back to 100 and 10.
func NewHistoryService(historyRepo repositories.HistoryRepository, defaultLimit, defaultTop int) HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	if defaultTop <= 0 {
		defaultTop = standings.DefaultLeaderboardSize
	}
	return &historyService{
		historyRepo:  historyRepo,
		defaultLimit: defaultLimit,
		defaultTop:   defaultTop,
	}
}

func (s *historyService) ListHistory(ctx context.Context, filter models.HistoryFilter) ([]models.GameRecord, error) {
	mode, err := normalizeModeFilter(filter.Mode)
	if err != nil {
		return nil, err
	}
	filter.Mode = mode
	if filter.Limit <= 0 {
		filter.Limit = s.defaultLimit
	}

	records, err := s.historyRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if records == nil {
		return []models.GameRecord{}, nil
	}
	return records, nil
}

func (s *historyService) ModeCounts(ctx context.Context) (map[string]int, error) {
	counts, err := s.historyRepo.CountByMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	for _, f := range []models.Format{models.FormatNormal, models.FormatLeague, models.FormatKnockout} {
		if _, ok := counts[string(f)]; !ok {
			counts[string(f)] = 0
		}
	}
	return counts, nil
}

// normalizeModeFilter maps "" and "all" to no filter and rejects unknown modes.
func normalizeModeFilter(mode string) (string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" || mode == "all" {
		return "", nil
	}
	f, err := models.ParseFormat(mode)
	if err != nil {
		return "", fmt.Errorf("%w: unknown mode %q", ErrValidationFailed, mode)
	}
	return string(f), nil
}

func (s *historyService) Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error) {
	if topN <= 0 {
		topN = s.defaultTop
	}
	records, err := s.historyRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for leaderboard: %w", err)
	}
	return standings.Leaderboard(records, topN), nil
}

func (s *historyService) Overview(ctx context.Context, limit, topN int) (*HistoryOverview, error) {
	var overview HistoryOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history, err := s.ListHistory(gctx, models.HistoryFilter{Limit: limit})
		if err != nil {
			return err
		}
		overview.History = history
		return nil
	})
	g.Go(func() error {
		board, err := s.Leaderboard(gctx, topN)
		if err != nil {
			return err
		}
		overview.Leaderboard = board
		return nil
	})
	g.Go(func() error {
		counts, err := s.ModeCounts(gctx)
		if err != nil {
			return err
		}
		overview.Counts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
