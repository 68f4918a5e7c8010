package middleware

import (
	"context"
	"errors"
)

type contextKey string

const hostGameContextKey contextKey = "host_game_id"

// GetHostGameIDFromContext returns the game id of an authenticated host.
func GetHostGameIDFromContext(ctx context.Context) (string, error) {
	gameID, ok := ctx.Value(hostGameContextKey).(string)
	if !ok || gameID == "" {
		return "", errors.New("host game id not found in context")
	}
	return gameID, nil
}
