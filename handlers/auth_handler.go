package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/scoreboard/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type pinInput struct {
	PIN string `json:"pin"`
}

// ExchangePIN trades a game's host PIN for a host token.
func (h *AuthHandler) ExchangePIN(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input pinInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.PIN = strings.TrimSpace(input.PIN)
	if input.PIN == "" {
		badRequestResponse(w, r, errors.New("pin is required"))
		return
	}

	token, err := h.authService.ExchangePIN(r.Context(), gameID, input.PIN)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"host": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
