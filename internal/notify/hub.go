// Package notify fans typed change notices out to websocket subscribers.
// Services publish (entity kind, team id, action); each team's connected
// clients receive the notice and decide whether to refetch.
package notify

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Change describes a mutation of a team-scoped entity.
type Change struct {
	Entity string `json:"entity"`
	TeamID string `json:"team_id"`
	Action string `json:"action"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type Publisher interface {
	Publish(change Change)
}

// Hub maintains the set of active clients grouped by team and broadcasts
// change notices to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	changes    chan Change

	teams map[string]map[*Client]bool

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		changes:    make(chan Change, 64),
		teams:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes registrations and change fan-out. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case change := <-h.changes:
			h.broadcast(change)
		}
	}
}

func (h *Hub) add(client *Client) {
	if h.teams[client.teamID] == nil {
		h.teams[client.teamID] = make(map[*Client]bool)
	}
	h.teams[client.teamID][client] = true
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.teams[client.teamID]
	if !ok {
		return
	}
	if clients[client] {
		delete(clients, client)
		close(client.send)
	}
	if len(clients) == 0 {
		delete(h.teams, client.teamID)
	}
}

func (h *Hub) broadcast(change Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		h.logger.Error("failed to marshal change notice", zap.Error(err))
		return
	}
	for client := range h.teams[change.TeamID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			delete(h.teams[change.TeamID], client)
			close(client.send)
		}
	}
	if len(h.teams[change.TeamID]) == 0 {
		delete(h.teams, change.TeamID)
	}
}

// Publish queues a change notice for fan-out. Non-blocking; when the hub is
// saturated the notice is dropped (subscribers refetch on the next notice).
func (h *Hub) Publish(change Change) {
	select {
	case h.changes <- change:
	default:
		h.logger.Warn("change feed saturated, dropping notice",
			zap.String("entity", change.Entity),
			zap.String("team_id", change.TeamID))
	}
}

// Client is one websocket subscription, bound to a team.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	teamID string
	userID string
}

func NewClient(hub *Hub, conn *websocket.Conn, teamID, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		teamID: teamID,
		userID: userID,
	}
}

// Start registers the client and runs its pumps.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; the feed is one-way. Its job is to
// detect the peer going away and unregister.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
