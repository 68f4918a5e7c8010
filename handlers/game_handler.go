package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gs,
	}
}

type resultInput struct {
	Player1Score models.Score `json:"player1_score"`
	Player2Score models.Score `json:"player2_score"`
}

type deltaInput struct {
	Delta int `json:"delta"`
}

type scoreInput struct {
	Score models.Score `json:"score"`
}

type roundInput struct {
	Round int `json:"round"`
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.gameService.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/api/games/"+created.Game.ID)
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": created.Game, "host": created.HostToken}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetRounds(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	rounds := view.Rounds
	if rounds == nil {
		rounds = []models.Round{}
	}
	env := jsonResponse{"rounds": rounds, "current_round": view.CurrentRound}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	env := jsonResponse{
		"standings":   view.Standings,
		"champion_id": view.ChampionID,
		"status":      view.Status,
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.gameService.SubmitResult(r.Context(), gameID, matchID, input.Player1Score.Int(), input.Player2Score.Int())
	h.respondView(w, r, view, err)
}

func (h *GameHandler) AdjustScore(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, ok := gameAndPlayer(w, r)
	if !ok {
		return
	}

	var input deltaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.gameService.AdjustScore(r.Context(), gameID, playerID, input.Delta)
	h.respondView(w, r, view, err)
}

func (h *GameHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, ok := gameAndPlayer(w, r)
	if !ok {
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.gameService.SetScore(r.Context(), gameID, playerID, input.Score.Int())
	h.respondView(w, r, view, err)
}

func (h *GameHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.gameService.ResetScores(r.Context(), gameID)
	h.respondView(w, r, view, err)
}

func (h *GameHandler) SetRound(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input roundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.gameService.SetCurrentRound(r.Context(), gameID, input.Round)
	h.respondView(w, r, view, err)
}

func (h *GameHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.gameService.RegenerateSchedule(r.Context(), gameID)
	h.respondView(w, r, view, err)
}

func (h *GameHandler) FinishGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.gameService.FinishGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"record": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.DeleteGame(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) loadGame(w http.ResponseWriter, r *http.Request) (*services.GameView, bool) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return nil, false
	}
	view, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, false
	}
	return view, true
}

func (h *GameHandler) respondView(w http.ResponseWriter, r *http.Request, view *services.GameView, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func gameAndPlayer(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	playerID, err := urlParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return gameID, playerID, true
}
