package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type WebSocketHandler struct {
	hub         *brackets.Hub
	gameService services.GameService
	metrics     metrics.Recorder
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" or an empty
// list accepts any origin.
func NewWebSocketHandler(
	hub *brackets.Hub,
	gs services.GameService,
	recorder metrics.Recorder,
	logger *slog.Logger,
	allowedOrigins []string,
) *WebSocketHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:         hub,
		gameService: gs,
		metrics:     recorder,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// ServeWs subscribes the connection to /ws/games/{gameID} and sends the
// current snapshot first.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.gameService.GetGame(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.String("game_id", gameID), slog.Any("error", err))
		return
	}

	room := brackets.RoomForGame(gameID)
	client := brackets.NewClient(h.hub, conn, room)

	err = h.hub.Subscribe(client, func() ([]byte, error) {
		return h.snapshot(r.Context(), gameID, room)
	})
	if err != nil {
		h.logger.Warn("websocket subscribe failed", slog.String("game_id", gameID), slog.Any("error", err))
		conn.Close()
		return
	}
	h.metrics.WebSocketConnected()

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.metrics.WebSocketDisconnected()
	}()

	h.logger.Debug("websocket client connected", slog.String("room", room))
}

func (h *WebSocketHandler) snapshot(ctx context.Context, gameID, room string) ([]byte, error) {
	view, err := h.gameService.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	messageType := brackets.MessageGameUpdated
	if view.Status == models.GameStatusCompleted {
		messageType = brackets.MessageGameCompleted
	}
	return json.Marshal(brackets.WebSocketMessage{Type: messageType, Payload: view, RoomID: room})
}
