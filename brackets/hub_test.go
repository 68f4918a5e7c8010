package brackets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesRoomOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	watching := NewClient(hub, nil, RoomForGame("g1"))
	other := NewClient(hub, nil, RoomForGame("g2"))
	hub.Register(watching)
	hub.Register(other)
	require.Eventually(t, func() bool {
		return hub.ClientCount(RoomForGame("g1")) == 1 && hub.ClientCount(RoomForGame("g2")) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish("g1", MessageGameUpdated, map[string]int{"round": 2})

	select {
	case raw := <-watching.Send:
		var msg struct {
			Type    string         `json:"type"`
			RoomID  string         `json:"room_id"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageGameUpdated, msg.Type)
		assert.Equal(t, "game_g1", msg.RoomID)
		assert.Equal(t, 2, msg.Payload["round"])
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Empty(t, other.Send)

	hub.Unregister(watching)
	require.Eventually(t, func() bool {
		return hub.ClientCount(RoomForGame("g1")) == 0
	}, time.Second, 5*time.Millisecond)
	_, open := <-watching.Send
	assert.False(t, open)
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := NewClient(hub, nil, RoomForGame("g1"))
	hub.Register(c)
	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open)

	late := NewClient(hub, nil, RoomForGame("g1"))
	hub.Register(late)
	_, open = <-late.Send
	assert.False(t, open)
}

func TestHub_FullBufferIsSkipped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	c := NewClient(hub, nil, RoomForGame("g1"))
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount(RoomForGame("g1")) == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < sendBuffer+5; i++ {
		hub.Publish("g1", MessageGameUpdated, i)
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_SubscribeQueuesFirstMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	c := NewClient(hub, nil, RoomForGame("g1"))
	err := hub.Subscribe(c, func() ([]byte, error) {
		return []byte(`"snapshot"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.ClientCount(RoomForGame("g1")))

	hub.Publish("g1", MessageGameUpdated, "update")
	require.Len(t, c.Send, 2)
	assert.Equal(t, `"snapshot"`, string(<-c.Send))
	assert.Contains(t, string(<-c.Send), `"update"`)
}

func TestHub_SubscribeFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	failing := NewClient(hub, nil, RoomForGame("g1"))
	loadErr := errors.New("game gone")
	assert.ErrorIs(t, hub.Subscribe(failing, func() ([]byte, error) { return nil, loadErr }), loadErr)
	assert.Zero(t, hub.ClientCount(RoomForGame("g1")))
	_, open := <-failing.Send
	assert.False(t, open)

	cancel()
	<-stopped
	late := NewClient(hub, nil, RoomForGame("g1"))
	assert.ErrorIs(t, hub.Subscribe(late, func() ([]byte, error) { return []byte("x"), nil }), ErrHubStopped)
	_, open = <-late.Send
	assert.False(t, open)
}
