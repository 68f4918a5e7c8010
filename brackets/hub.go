package brackets

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message types pushed to game rooms.
const (
	MessageGameUpdated   = "GAME_UPDATED"
	MessageGameCompleted = "GAME_COMPLETED"
)

var ErrHubStopped = errors.New("hub is stopped")

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, room string) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Room: room,
	}
}

// Hub keeps one room per game and fans snapshots out to its clients.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// RoomForGame is the room name clients of a game join.
func RoomForGame(gameID string) string {
	return "game_" + gameID
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			count := len(h.rooms[client.Room])
			h.mu.Unlock()
			h.logger.Debug("client registered", slog.String("room", client.Room), slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok && clients[client] {
				client.close()
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.rooms, client.Room)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", slog.String("room", client.Room))
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Subscribe adds the client to its room and queues the message built by first
// ahead of any broadcast to that room. Publishing is held off while first
// runs, so the first message is never older than a later one.
func (h *Hub) Subscribe(c *Client, first func() ([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		c.close()
		return ErrHubStopped
	default:
	}

	msg, err := first()
	if err != nil {
		c.close()
		return err
	}
	c.trySend(msg)

	if _, ok := h.rooms[c.Room]; !ok {
		h.rooms[c.Room] = make(map[*Client]bool)
	}
	h.rooms[c.Room][c] = true
	h.logger.Debug("client subscribed", slog.String("room", c.Room), slog.Int("clients", len(h.rooms[c.Room])))
	return nil
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of clients connected to a room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Publish sends a typed message to every client watching the game.
// Clients whose buffer is full are skipped.
func (h *Hub) Publish(gameID, messageType string, payload interface{}) {
	room := RoomForGame(gameID)
	messageBytes, err := json.Marshal(WebSocketMessage{Type: messageType, Payload: payload, RoomID: room})
	if err != nil {
		h.logger.Error("marshal websocket message", slog.String("room", room), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		if !client.trySend(messageBytes) {
			h.logger.Warn("client send buffer full, skipping", slog.String("room", room))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for c := range clients {
			c.close()
		}
		delete(h.rooms, room)
	}
}

func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// ReadPump drains client frames (clients only listen) and keeps the
// connection alive through pongs.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("websocket write failed", slog.String("room", c.Room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
