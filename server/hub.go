package server

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Hub maintains the set of active clients and fans messages out to them.
// Only the Run goroutine touches the client set and the operator.
type Hub struct {
	clients    map[*Client]bool
	operator   *Client
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	requests   chan request
	quit       chan struct{}
}

type directMessage struct {
	client  *Client
	payload []byte
}

// NewHub initializes a new WebSocket Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan request, 16),
		quit:       make(chan struct{}),
	}
}

// Run handles client registration and message delivery until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.operator = nil
			slog.Info("hub_stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.operator == nil {
				h.promote(client)
			}
			close(client.ready)
			slog.Info("client_connected", "clients", len(h.clients), "operator", client.IsOperator())
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				slog.Info("client_disconnected", "clients", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case dm := <-h.direct:
			if h.clients[dm.client] {
				h.deliver(dm.client, dm.payload)
			}
		}
	}
}

// deliver queues payload for client, dropping clients that cannot keep up.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.remove(client)
		slog.Warn("client_dropped", "reason", "send buffer full")
	}
}

// remove drops client and hands the operator role to a remaining client.
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	if client != h.operator {
		return
	}
	client.operator.Store(false)
	h.operator = nil
	for next := range h.clients {
		h.promote(next)
		break
	}
}

func (h *Hub) promote(client *Client) {
	h.operator = client
	client.operator.Store(true)
	slog.Info("operator_assigned", "clients", len(h.clients))
}

// Broadcast sends msg to every connected client. Messages are dropped when
// the hub is backed up.
func (h *Hub) Broadcast(msg Message) {
	payload, ok := encode(msg)
	if !ok {
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		slog.Warn("broadcast_dropped", "type", msg.Type)
	}
}

// SendTo sends msg to a single client if it is still connected.
func (h *Hub) SendTo(client *Client, msg Message) {
	payload, ok := encode(msg)
	if !ok {
		return
	}
	select {
	case h.direct <- directMessage{client: client, payload: payload}:
	case <-h.quit:
	}
}

// submit forwards a request to the loop goroutine. It returns false once the
// hub has stopped.
func (h *Hub) submit(req request) bool {
	select {
	case h.requests <- req:
		return true
	case <-h.quit:
		return false
	}
}

func encode(msg Message) ([]byte, bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode message", "type", msg.Type, "error", err)
		return nil, false
	}
	return payload, true
}
