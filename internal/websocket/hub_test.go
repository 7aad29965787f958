package websocket_test

import (
	"testing"
	"time"

	"github.com/miftajuneidi2008/ansar-dfp/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, hub *websocket.Hub, id, userID string) *websocket.Client {
	t.Helper()
	c := websocket.NewClient(id, userID, hub, nil)
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.HasClient(id) }, time.Second, 5*time.Millisecond)
	return c
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	c1 := register(t, hub, "c1", "u1")
	register(t, hub, "c2", "u2")
	assert.Equal(t, 2, hub.GetClientCount())

	hub.Unregister <- c1
	require.Eventually(t, func() bool { return !hub.HasClient("c1") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.GetClientCount())

	// The send channel is closed on unregister.
	_, open := <-c1.Send
	assert.False(t, open)
}

func TestHubBroadcastToUserTargetsAllUserConnections(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	first := register(t, hub, "c1", "u1")
	second := register(t, hub, "c2", "u1")
	other := register(t, hub, "c3", "u2")

	hub.BroadcastToUser("u1", []byte("hello"))

	for _, c := range []*websocket.Client{first, second} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	select {
	case <-other.Send:
		t.Fatal("message leaked to another user")
	default:
	}
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	clients := []*websocket.Client{
		register(t, hub, "c1", "u1"),
		register(t, hub, "c2", "u2"),
	}

	hub.Broadcast <- []byte("all")

	for _, c := range clients {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "all", string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	c := register(t, hub, "c1", "u1")
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- []byte("fill")
	}

	hub.BroadcastToUser("u1", []byte("overflow"))
	assert.False(t, hub.HasClient("c1"))
	assert.Equal(t, 0, hub.GetClientCount())
}
