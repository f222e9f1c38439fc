package collab

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"studio-backend/internal/editor/models"
)

// ============================================================
// Wire messages
// ============================================================

const (
	MessageJoin     = "join"     // client → relay: presence record
	MessagePresence = "presence" // relay → clients: full roster
	MessageUpdate   = "update"   // both ways: replicated doc update
)

// Message is the JSON frame exchanged with the relay. Update bytes ride
// as base64 courtesy of encoding/json.
type Message struct {
	Type   string                `json:"type"`
	Peer   *models.Collaborator  `json:"peer,omitempty"`
	Peers  []models.Collaborator `json:"peers,omitempty"`
	Update []byte                `json:"update,omitempty"`
}

// ============================================================
// Websocket Provider
// ============================================================

// WebsocketProvider syncs one room through the relay service. Local doc
// updates are forwarded out, remote updates are applied to the doc, and
// every presence frame replaces the roster wholesale.
type WebsocketProvider struct {
	conn *websocket.Conn
	doc  *Doc

	writeMu sync.Mutex

	mu       sync.Mutex
	roster   []models.Collaborator
	onRoster func(peers []models.Collaborator)

	closeOnce sync.Once
	done      chan struct{}
}

// NewWebsocketProvider dials the relay and joins the given room.
func NewWebsocketProvider(relayURL, room string, doc *Doc) (*WebsocketProvider, error) {
	endpoint := fmt.Sprintf("%s/rooms/%s", strings.TrimRight(relayURL, "/"), room)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", endpoint, err)
	}

	p := &WebsocketProvider{
		conn: conn,
		doc:  doc,
		done: make(chan struct{}),
	}
	doc.Observe(p.forwardUpdate)
	go p.readLoop()
	return p, nil
}

// WebsocketProviderFactory adapts NewWebsocketProvider to the factory
// shape the store expects.
func WebsocketProviderFactory(relayURL string) ProviderFactory {
	return func(room string, doc *Doc) (Provider, error) {
		return NewWebsocketProvider(relayURL, room, doc)
	}
}

func (p *WebsocketProvider) SetLocalState(peer models.Collaborator) {
	p.write(Message{Type: MessageJoin, Peer: &peer})
}

func (p *WebsocketProvider) OnRosterChange(fn func(peers []models.Collaborator)) {
	p.mu.Lock()
	p.onRoster = fn
	current := p.roster
	p.mu.Unlock()

	// Deliver a roster that raced ahead of the registration.
	if fn != nil && current != nil {
		fn(current)
	}
}

func (p *WebsocketProvider) Disconnect() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.writeMu.Lock()
		p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		p.writeMu.Unlock()
		p.conn.Close()
	})
}

// forwardUpdate relays a local doc update to the room, skipping updates
// this provider itself applied from the network.
func (p *WebsocketProvider) forwardUpdate(update []byte, origin any) {
	if origin == any(p) {
		return
	}
	p.write(Message{Type: MessageUpdate, Update: update})
}

func (p *WebsocketProvider) write(msg Message) {
	select {
	case <-p.done:
		return
	default:
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.WriteJSON(msg); err != nil {
		log.Printf("[COLLAB] write: %v", err)
	}
}

func (p *WebsocketProvider) readLoop() {
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			select {
			case <-p.done:
			default:
				log.Printf("[COLLAB] read: %v", err)
			}
			return
		}

		switch msg.Type {
		case MessagePresence:
			peers := msg.Peers
			if peers == nil {
				peers = []models.Collaborator{}
			}
			p.mu.Lock()
			p.roster = peers
			fn := p.onRoster
			p.mu.Unlock()
			if fn != nil {
				fn(peers)
			}
		case MessageUpdate:
			p.doc.ApplyUpdate(msg.Update, p)
		}
	}
}
