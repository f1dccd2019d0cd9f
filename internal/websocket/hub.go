package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/notify"
)

// Client represents one WebSocket subscriber for a generation.
type Client struct {
	GenerationID string
	Conn         *websocket.Conn
	Send         chan []byte
}

// Hub fans generation status events out to subscribed WebSocket clients.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex
}

type broadcastMessage struct {
	generationID string
	message      []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.GenerationID] == nil {
				h.clients[client.GenerationID] = make(map[*Client]bool)
			}
			h.clients[client.GenerationID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.GenerationID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.GenerationID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.generationID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastEvent pushes a status event to every subscriber of the generation.
func (h *Hub) BroadcastEvent(event notify.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal status event")
		return
	}
	h.broadcast <- &broadcastMessage{generationID: event.GenerationID, message: data}
}

// HandleConnection serves one WebSocket connection until the peer closes it.
func (h *Hub) HandleConnection(conn *websocket.Conn, generationID string) {
	client := &Client{
		GenerationID: generationID,
		Conn:         conn,
		Send:         make(chan []byte, 16),
	}
	h.register <- client
	defer func() {
		h.unregister <- client
	}()

	go func() {
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Drain reads to detect close; subscribers never send data.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
