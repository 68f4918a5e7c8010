package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// TokenValidator resolves a bearer token to the game it authorizes.
type TokenValidator interface {
	ValidateHostToken(token string) (string, error)
}

// RequireGameHost rejects requests without a valid host token for the game
// named by the {gameID} URL parameter.
func RequireGameHost(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			gameID, err := validator.ValidateHostToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired host token")
				return
			}
			if gameID != chi.URLParam(r, "gameID") {
				writeError(w, http.StatusForbidden, "token does not grant access to this game")
				return
			}

			ctx := context.WithValue(r.Context(), hostGameContextKey, gameID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
