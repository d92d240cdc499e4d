package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/versusleague/internal/model"
)

// Hub fans committed events of one contract out to its SSE clients
type Hub struct {
	contract model.ContractAddress
	clients  map[*Client]bool
	mu       sync.RWMutex
	logger   *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a hub for a contract
func NewHub(contract model.ContractAddress, logger *slog.Logger) *Hub {
	return &Hub{
		contract:   contract,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("contract", contract.String())),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop; it returns once Close is called
func (h *Hub) Run() {
	h.logger.Debug("stream hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("stream client registered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; !ok {
				h.mu.Unlock()
				continue
			}
			delete(h.clients, client)
			close(client.send)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("stream client unregistered",
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("stream messages dropped, client buffers full", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			count := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("stream hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

// Register adds a client. It must not be called after Close.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a preformatted message for every client
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("stream broadcast dropped, hub buffer full")
	}
}

// BroadcastEvent formats and queues a committed event
func (h *Hub) BroadcastEvent(ev model.Event) error {
	msg, err := FormatEvent(ev)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Close stops the hub and disconnects its clients
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatEvent renders an event as an SSE message. The id is "<txId>:<seq>"
// and the event name is the event type.
func FormatEvent(ev model.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return formatMessage(fmt.Sprintf("%s:%d", ev.TxID, ev.Seq), string(ev.Type), string(data)), nil
}

func formatMessage(id, eventName, data string) []byte {
	var b strings.Builder
	if id != "" {
		b.WriteString("id: " + id + "\n")
	}
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns one hub per contract
type HubManager struct {
	hubs   map[model.ContractAddress]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.ContractAddress]*Hub),
		logger: logger.With(slog.String("component", "stream")),
	}
}

// GetOrCreateHub returns the contract's hub, starting one if needed
func (m *HubManager) GetOrCreateHub(contract model.ContractAddress) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[contract]; ok {
		return hub
	}
	hub := NewHub(contract, m.logger)
	m.hubs[contract] = hub
	go hub.Run()
	return hub
}

// GetHub returns the contract's hub or nil
func (m *HubManager) GetHub(contract model.ContractAddress) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[contract]
}

// Publish forwards committed events to the hubs of their contracts. It is
// registered as a runtime commit hook.
func (m *HubManager) Publish(events []model.Event) {
	for _, ev := range events {
		hub := m.GetHub(ev.Contract)
		if hub == nil {
			continue
		}
		if err := hub.BroadcastEvent(ev); err != nil {
			m.logger.Error("failed to publish event",
				slog.String("tx_id", ev.TxID),
				slog.String("type", string(ev.Type)),
				slog.Any("error", err))
		}
	}
}

// CleanupEmptyHubs closes hubs without clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for contract, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, contract)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("stream empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Close stops every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for contract, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, contract)
	}
}
