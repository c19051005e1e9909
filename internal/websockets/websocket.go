package websockets

import (
	"context"
	"time"

	"resorthub/internal/events"
	"resorthub/internal/logger"
	"resorthub/internal/models"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64
	SYSTEM_CHANNEL    = "system"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Resolver turns a bearer token into the principal it was issued to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.Principal, error)
}

type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type Client struct {
	ID         string
	Principal  models.Principal
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

type Manager struct {
	hub      *Hub
	sessions Resolver
	log      logger.Logger
}

func New(sessions Resolver, subscriber Subscriber) (*Manager, error) {
	log := logger.New("websockets")

	manager := newManager(sessions, log)

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	for _, channel := range []events.Channel{
		events.NOTIFICATION_CHANNEL,
		events.MESSAGE_CHANNEL,
		events.RESERVATION_CHANNEL,
	} {
		if err := subscriber.Subscribe(channel, manager.Deliver); err != nil {
			return nil, log.Err("failed to subscribe to channel", err, "channel", channel)
		}
	}

	return manager, nil
}

func newManager(sessions Resolver, log logger.Logger) *Manager {
	return &Manager{
		hub: &Hub{
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		sessions: sessions,
		log:      log,
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	authRequest := systemMessage(string(events.AUTH_REQUEST), "authenticate", nil)
	if err := c.WriteJSON(authRequest); err != nil {
		log.Er("failed to send auth request", err)
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	defer func() {
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Debug("connection already closed", "clientID", client.ID)
		}
	}()

	client.startAuthTimeout()
	go client.readPump()
	client.writePump()
}

// Deliver routes a bus event to the connections it is addressed to. Events
// without a recipient go to every admin connection.
func (m *Manager) Deliver(event events.Event) error {
	message := Message{
		ID:        event.ID,
		Type:      string(event.Type),
		Channel:   event.Channel.String(),
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}

	if event.Recipient == nil {
		m.sendWhere(message, func(p models.Principal) bool { return p.IsAdmin() })
		return nil
	}

	recipient := *event.Recipient
	m.sendWhere(message, func(p models.Principal) bool { return p == recipient })
	return nil
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	switch events.MessageType(message.Type) {
	case events.AUTH_RESPONSE:
		c.handleAuthResponse(message)
	case events.PING:
		c.enqueue(systemMessage(string(events.PONG), "pong", nil))
	default:
		if !c.Manager.isAuthenticated(c) {
			c.enqueue(systemMessage(
				string(events.AUTH_FAILURE),
				"authentication_required",
				map[string]any{"reason": "Authentication required"},
			))
			return
		}
		log.Debug("ignoring client message", "clientID", c.ID, "type", message.Type)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("websocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue never blocks; a full buffer drops the message. It holds the hub
// read lock so send cannot be closed underneath it, and reports false once
// the client is unregistered.
func (c *Client) enqueue(message Message) bool {
	c.Manager.hub.mutex.RLock()
	defer c.Manager.hub.mutex.RUnlock()

	if _, ok := c.Manager.hub.clients[c.ID]; !ok {
		return false
	}
	return c.trySend(message)
}

// trySend requires the hub lock to be held by the caller.
func (c *Client) trySend(message Message) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func systemMessage(messageType, action string, data map[string]any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Channel:   SYSTEM_CHANNEL,
		Action:    action,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
