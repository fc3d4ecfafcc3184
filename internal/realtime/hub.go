package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
)

// Room name helpers. Rooms are ephemeral subscription groups; their
// membership is connection-scoped state, never persisted.
func RoomUser(userID string) string           { return "user:" + userID }
func RoomChannel(channelID string) string     { return "channel:" + channelID }
func RoomWorkspace(workspaceID string) string { return "workspace:" + workspaceID }

// sendBuffer bounds the per-connection outbox. A consumer that falls
// this far behind starts losing frames.
const sendBuffer = 32

// Envelope is the wire frame exchanged with socket clients.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one connected socket. Writes are serialized through the
// send channel; the write pump owns the connection for writing.
type Client struct {
	Identity domain.Identity

	hub   *Hub
	rooms map[string]struct{}

	mu     sync.Mutex
	send   chan Envelope
	closed bool
}

// Send queues an envelope for delivery. Slow consumers are dropped
// rather than allowed to stall the broadcast path. Broadcast can race
// with Unregister, so delivery and close both synchronize on the
// client mutex; a send never hits a closed channel.
func (c *Client) Send(env Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Outbox exposes the delivery channel for the connection's write pump.
func (c *Client) Outbox() <-chan Envelope {
	return c.send
}

// Hub tracks the rooms and clients held by this process. Cross-process
// fan-out happens through the Bus; the hub only delivers locally.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register admits a connection and joins it to its personal room.
func (h *Hub) Register(identity domain.Identity) *Client {
	client := &Client{
		Identity: identity,
		hub:      h,
		send:     make(chan Envelope, sendBuffer),
		rooms:    make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.Join(client, RoomUser(identity.ID))
	return client
}

// Unregister removes the connection from every room and closes its
// outbox.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
	delete(h.clients, client)
	client.close()
}

// Join adds the connection to a room.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
}

// Leave removes the connection from a room. Leaving cannot leak data,
// so no authorization is required.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

func (h *Hub) leaveLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// InRoom reports whether the connection currently belongs to the room.
func (h *Hub) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := client.rooms[room]
	return ok
}

// Broadcast delivers an envelope to every local member of the room.
func (h *Hub) Broadcast(room string, env Envelope) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		if !client.Send(env) {
			h.logger.Warn("dropping event for slow socket",
				zap.String("room", room),
				zap.String("event", env.Event),
				zap.String("user_id", client.Identity.ID))
		}
	}
}
