package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/utils"
)

const (
	claimGameID = "game_id"
	claimRole   = "role"
	roleHost    = "host"

	DefaultTokenTTL = 12 * time.Hour
)

type HostToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService issues and checks the bearer tokens that authorize game hosts.
type AuthService interface {
	IssueHostToken(gameID string) (*HostToken, error)
	ExchangePIN(ctx context.Context, gameID, pin string) (*HostToken, error)
	// ValidateHostToken returns the game id the token was issued for.
	ValidateHostToken(token string) (string, error)
}

type authService struct {
	gameRepo repositories.GameRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(gameRepo repositories.GameRepository, secret []byte, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &authService{
		gameRepo: gameRepo,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *authService) IssueHostToken(gameID string) (*HostToken, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		claimGameID: gameID,
		claimRole:   roleHost,
		"exp":       expires.Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign host token: %w", err)
	}
	return &HostToken{Token: signed, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

func (s *authService) ExchangePIN(ctx context.Context, gameID, pin string) (*HostToken, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if game.HostPINHash == "" {
		return nil, fmt.Errorf("%w: game %s has no host pin", ErrForbiddenOperation, gameID)
	}
	if !utils.CheckPINHash(pin, game.HostPINHash) {
		return nil, ErrAuthenticationFailed
	}
	return s.IssueHostToken(gameID)
}

func (s *authService) ValidateHostToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrAuthenticationFailed
	}
	if role, _ := claims[claimRole].(string); role != roleHost {
		return "", fmt.Errorf("%w: missing host role", ErrAuthenticationFailed)
	}
	gameID, _ := claims[claimGameID].(string)
	if gameID == "" {
		return "", fmt.Errorf("%w: missing '%s' claim", ErrAuthenticationFailed, claimGameID)
	}
	return gameID, nil
}
