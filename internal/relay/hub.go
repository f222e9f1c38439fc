package relay

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
)

// ============================================================
// Relay Hub
// ============================================================

// Hub hosts collaboration rooms. Each room tracks its connected clients
// and their presence records, rebroadcasts the full roster on every
// membership change, and fans doc updates out to the other members.
// The relay never inspects update payloads.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]*room
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and attaches it to the room from the
// request path.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	if roomID == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[RELAY] upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	rm := h.join(roomID, c)
	log.Printf("[RELAY] client joined room %s", roomID)

	go c.writePump()
	c.readPump(rm)

	rm.leave(c)
	h.drop(rm)
	log.Printf("[RELAY] client left room %s", roomID)
}

// RoomCount reports how many rooms are currently open.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// join adds the client to the room, creating it when needed. Lookup
// and membership change happen under the hub lock, so a concurrent
// drop of the room's last client cannot strand the joiner in a room
// already removed from the map.
func (h *Hub) join(id string, c *client) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[id]
	if !ok {
		rm = &room{id: id, clients: make(map[*client]*models.Collaborator)}
		h.rooms[id] = rm
	}
	rm.join(c)
	return rm
}

// drop removes the room once its last client is gone. The identity
// check keeps a stale drop from deleting a newer room under the same
// id.
func (h *Hub) drop(rm *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm.mu.Lock()
	empty := len(rm.clients) == 0
	rm.mu.Unlock()
	if empty && h.rooms[rm.id] == rm {
		delete(h.rooms, rm.id)
	}
}

// ============================================================
// Room
// ============================================================

type room struct {
	id      string
	mu      sync.Mutex
	clients map[*client]*models.Collaborator
}

func (r *room) join(c *client) {
	r.mu.Lock()
	// No presence record until the client announces itself.
	r.clients[c] = nil
	r.mu.Unlock()
}

func (r *room) leave(c *client) {
	r.mu.Lock()
	if _, ok := r.clients[c]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.clients, c)
	r.mu.Unlock()

	c.close()
	r.broadcastRoster()
}

// handle dispatches one inbound frame. raw carries the original bytes
// so updates are relayed without a re-encode.
func (r *room) handle(c *client, msg *collab.Message, raw []byte) {
	switch msg.Type {
	case collab.MessageJoin:
		if msg.Peer == nil {
			return
		}
		r.mu.Lock()
		r.clients[c] = msg.Peer
		r.mu.Unlock()
		r.broadcastRoster()
	case collab.MessageUpdate:
		r.mu.Lock()
		for other := range r.clients {
			if other != c {
				other.enqueue(raw)
			}
		}
		r.mu.Unlock()
	}
}

// broadcastRoster sends the complete roster to every room member.
func (r *room) broadcastRoster() {
	r.mu.Lock()
	peers := make([]models.Collaborator, 0, len(r.clients))
	for _, peer := range r.clients {
		if peer != nil {
			peers = append(peers, *peer)
		}
	}
	members := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		members = append(members, c)
	}
	r.mu.Unlock()

	data, err := json.Marshal(collab.Message{Type: collab.MessagePresence, Peers: peers})
	if err != nil {
		log.Printf("[RELAY] marshal roster: %v", err)
		return
	}
	for _, c := range members {
		c.enqueue(data)
	}
}

// ============================================================
// Client
// ============================================================

type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *client) readPump(rm *room) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg collab.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[RELAY] bad frame in room %s: %v", rm.id, err)
			continue
		}
		rm.handle(c, &msg, data)
	}
}

func (c *client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// enqueue drops the frame if the client is closed or its buffer is
// full rather than blocking the room.
func (c *client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
