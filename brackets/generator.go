package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

var ErrNotEnoughPlayers = errors.New("not enough players to generate a schedule (minimum 2)")

type GenerateBracketParams struct {
	Players []models.Player
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Match, error)

	GetName() string
}

// NewGenerator returns the schedule generator for a tournament format.
func NewGenerator(format models.Format) (BracketGenerator, error) {
	switch format {
	case models.FormatLeague:
		return NewRoundRobinGenerator(), nil
	case models.FormatKnockout:
		return NewSingleEliminationGenerator(), nil
	default:
		return nil, fmt.Errorf("format %q has no bracket generator", format)
	}
}

func checkPlayers(players []models.Player) error {
	if len(players) < 2 {
		return fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, len(players))
	}
	return nil
}
