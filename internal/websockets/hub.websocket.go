package websockets

import (
	"sync"

	"resorthub/internal/models"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
)

type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client
	m.log.Function("registerClient").Debug("client registered", "clientID", client.ID)
}

// unregisterClient is called from both pumps; only the first call closes send.
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}
	delete(m.hub.clients, client.ID)
	close(client.send)

	m.log.Function("unregisterClient").Debug(
		"client unregistered",
		"clientID", client.ID,
		"principal", client.Principal.String(),
	)
}

func (m *Manager) authenticate(client *Client, principal models.Principal) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	client.Principal = principal
	client.Status = STATUS_AUTHENTICATED
}

func (m *Manager) isAuthenticated(client *Client) bool {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return client.Status == STATUS_AUTHENTICATED
}

// sendWhere queues message on every authenticated client whose principal
// matches. Slow clients lose the message rather than stall the bus.
func (m *Manager) sendWhere(message Message, match func(models.Principal) bool) int {
	log := m.log.Function("sendWhere")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for _, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED || !match(client.Principal) {
			continue
		}
		if client.trySend(message) {
			sent++
			continue
		}
		log.Warn("client send buffer full, dropping message", "clientID", client.ID, "type", message.Type)
	}
	return sent
}

func (m *Manager) ConnectionCount() int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return len(m.hub.clients)
}
