package relay_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
	"studio-backend/internal/relay"
)

func startHub(t *testing.T) (*relay.Hub, string) {
	t.Helper()
	hub := relay.NewHub()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{room}", hub.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialRoom(t *testing.T, baseURL, room string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(baseURL+"/rooms/"+room, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until the predicate matches or the deadline
// passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(collab.Message) bool) collab.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg collab.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestHubBroadcastsRoster(t *testing.T) {
	_, baseURL := startHub(t)

	connA := dialRoom(t, baseURL, "room-1")
	require.NoError(t, connA.WriteJSON(collab.Message{
		Type: collab.MessageJoin,
		Peer: &models.Collaborator{ID: "a", Name: "Ada", Color: "#111111"},
	}))

	msg := readUntil(t, connA, func(m collab.Message) bool {
		return m.Type == collab.MessagePresence && len(m.Peers) == 1
	})
	assert.Equal(t, "a", msg.Peers[0].ID)

	connB := dialRoom(t, baseURL, "room-1")
	require.NoError(t, connB.WriteJSON(collab.Message{
		Type: collab.MessageJoin,
		Peer: &models.Collaborator{ID: "b", Name: "Bo", Color: "#222222"},
	}))

	msg = readUntil(t, connA, func(m collab.Message) bool {
		return m.Type == collab.MessagePresence && len(m.Peers) == 2
	})
	ids := []string{msg.Peers[0].ID, msg.Peers[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestHubFansOutUpdatesToOthers(t *testing.T) {
	_, baseURL := startHub(t)

	connA := dialRoom(t, baseURL, "room-2")
	connB := dialRoom(t, baseURL, "room-2")

	require.NoError(t, connA.WriteJSON(collab.Message{
		Type:   collab.MessageUpdate,
		Update: []byte{0xBE, 0xEF},
	}))

	msg := readUntil(t, connB, func(m collab.Message) bool {
		return m.Type == collab.MessageUpdate
	})
	assert.Equal(t, []byte{0xBE, 0xEF}, msg.Update)
}

func TestHubDropsEmptyRooms(t *testing.T) {
	hub, baseURL := startHub(t)

	conn := dialRoom(t, baseURL, "room-3")
	require.NoError(t, conn.WriteJSON(collab.Message{
		Type: collab.MessageJoin,
		Peer: &models.Collaborator{ID: "a", Name: "Ada", Color: "#111111"},
	}))
	readUntil(t, conn, func(m collab.Message) bool {
		return m.Type == collab.MessagePresence
	})
	assert.Equal(t, 1, hub.RoomCount())

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsMissingRoom(t *testing.T) {
	_, baseURL := startHub(t)

	httpURL := "http" + strings.TrimPrefix(baseURL, "ws")
	resp, err := http.Get(httpURL + "/rooms/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}
