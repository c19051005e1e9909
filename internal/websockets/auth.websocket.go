package websockets

import (
	"context"
	"time"

	"resorthub/internal/events"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

// startAuthTimeout closes the connection when no valid token arrives in time.
func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.isAuthenticated(c) {
			return
		}
		log.Warn("client failed to authenticate in time", "clientID", c.ID)
		c.sendAuthFailure("Authentication timeout")
	})
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.isAuthenticated(c) {
		log.Warn("auth response from authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		c.sendAuthFailure("Invalid token format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), AUTH_HANDSHAKE_TIMEOUT)
	defer cancel()

	principal, err := c.Manager.sessions.Resolve(ctx, token)
	if err != nil {
		log.Info("websocket token rejected", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	c.Manager.authenticate(c, principal)
	log.Info("client authenticated", "clientID", c.ID, "principal", principal.String())

	c.enqueue(systemMessage(string(events.AUTH_SUCCESS), "authenticated", map[string]any{
		"kind": principal.Kind,
		"id":   principal.ID.String(),
	}))
}

func (c *Client) sendAuthFailure(reason string) {
	c.enqueue(systemMessage(
		string(events.AUTH_FAILURE),
		"authentication_failed",
		map[string]any{"reason": reason},
	))

	if c.Connection == nil {
		return
	}
	time.AfterFunc(100*time.Millisecond, func() {
		_ = c.Connection.Close()
	})
}
