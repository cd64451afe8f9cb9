// Package ws pushes live order events to staff kitchen displays.
package ws

import (
	"encoding/json"
	"log"
)

// Event is the wire envelope for every broadcast message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans broadcast messages out to every connected client. All
// connections share one room.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set. It must be started before any client
// connects and runs until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("ws client %s connected (%d total)", client.id, len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("ws client %s disconnected (%d total)", client.id, len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast marshals and queues an event for every connected client.
func (h *Hub) Broadcast(eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshaling ws payload: %v", err)
		return
	}
	message, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		log.Printf("ERROR: marshaling ws event: %v", err)
		return
	}
	h.broadcast <- message
}
