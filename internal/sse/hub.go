package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/queue"
	"github.com/google/uuid"
)

const (
	EventInvoiceGenerated = "invoice_generated"
	EventBillingFailed    = "billing_failed"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one open event stream. Events are delivered only when Actor may
// read an invoice of the event's client.
type Client struct {
	ID    string
	Actor access.Actor
	Send  chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *ClientMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// ClientMessage is an event concerning the invoices of one client.
type ClientMessage struct {
	ClientID uuid.UUID
	Event    Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *ClientMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches until ctx is done, then closes every open stream. Run must
// be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			target := access.Target{Resource: access.ResourceInvoice, ClientID: msg.ClientID}
			for _, client := range h.clients {
				if !access.Can(client.Actor, access.ActionRead, target) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds client. Once the hub has stopped the client's Send channel
// is closed straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(clientID uuid.UUID, event Event) {
	select {
	case h.broadcast <- &ClientMessage{ClientID: clientID, Event: event}:
	case <-h.done:
	}
}

// HandleBillingEvent is a queue.MessageHandler that forwards billing outcomes
// to the open streams.
func (h *Hub) HandleBillingEvent(_ context.Context, raw json.RawMessage) error {
	var event queue.BillingEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return queue.Permanent(fmt.Errorf("decode billing event: %w", err))
	}

	eventType := EventInvoiceGenerated
	if event.Error != "" {
		eventType = EventBillingFailed
	}
	h.Broadcast(event.ClientID, Event{Type: eventType, Data: event})
	return nil
}
