package websocket

import (
	"encoding/json"
	"sync"

	"github.com/motorides/dispatch/pkg/logger"
)

// Hub maintains the set of live connections and fans ride events out to all
// of them. Delivery is best-effort: there is no persistence, no replay and
// no per-subscriber filtering, so a subscriber that connects after an event
// or falls behind simply misses it. The ride store stays ground truth.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger

	onCountChange func(n int)
}

// Event is the wire shape of a broadcast ride event.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// OnConnectionCountChange registers a callback invoked with the connection
// count after every register/unregister. Used for metrics.
func (h *Hub) OnConnectionCountChange(fn func(n int)) {
	h.onCountChange = fn
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.notifyCount(n)
			h.logger.Info("Subscriber connected",
				logger.String("client_id", client.ID),
				logger.String("user_type", client.UserType),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.notifyCount(n)
			h.logger.Info("Subscriber disconnected",
				logger.String("client_id", client.ID),
			)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow subscriber: drop the connection rather than
					// block the fan-out.
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish fans an event out to every connection live at the moment of the
// call, at most once per subscriber.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast event", logger.Err(err))
		return
	}
	h.broadcast <- data
}

// ActiveConnections returns the number of live connections.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) notifyCount(n int) {
	if h.onCountChange != nil {
		h.onCountChange(n)
	}
}
