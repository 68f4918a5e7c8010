package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(hs services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: hs}
}

// ListHistory serves finished games, newest first. ?limit overrides the
// default, ?mode keeps one format and ?q searches game and player names.
// The per-mode counts ignore the filters.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := readIntQuery(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter := models.HistoryFilter{
		Mode:  r.URL.Query().Get("mode"),
		Query: r.URL.Query().Get("q"),
		Limit: limit,
	}

	records, err := h.historyService.ListHistory(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	counts, err := h.historyService.ModeCounts(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": records, "counts": counts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HistoryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := readIntQuery(r, "top", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.historyService.Leaderboard(r.Context(), top)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HistoryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	limit, err := readIntQuery(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	top, err := readIntQuery(r, "top", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.historyService.Overview(r.Context(), limit, top)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
