package ipc

import (
	"io"
	"log/slog"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection serves one client. Each connection hosts exactly one battle,
// so handlers run one at a time in arrival order.
type Connection struct {
	conn     io.ReadWriteCloser
	handlers map[string]Handler
	Battle   string

	stats Stats
}

// Stats counts the traffic of one battle connection.
type Stats struct {
	Requests int
	Rejected int
}

func NewConnection(conn io.ReadWriteCloser, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
	}
}

// Stats returns the request counters. Read it after ReadLoop returns.
func (c *Connection) Stats() Stats {
	return c.stats
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(c.conn, env)
}

// ReadLoop blocks until the connection closes or errors. It owns the conn
// lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			slog.Info("battle connection closed", "battle", c.Battle,
				"requests", c.stats.Requests, "rejected", c.stats.Rejected, "error", err)
			return
		}
		c.stats.Requests++

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.stats.Rejected++
			slog.Warn("no handler for message type", "battle", c.Battle, "type", env.Type)
			if err := c.Send(TypeError, ErrorMessage{Code: "bad_request", Message: "unknown message type " + env.Type}); err != nil {
				return
			}
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.stats.Rejected++
			slog.Error("handler error", "battle", c.Battle, "type", env.Type, "error", err)
			continue
		}
		if resp == nil {
			continue
		}
		if resp.Type == TypeError {
			c.stats.Rejected++
		}
		if err := WriteEnvelope(c.conn, *resp); err != nil {
			slog.Error("failed to send response", "battle", c.Battle, "type", resp.Type, "error", err)
			return
		}
		slog.Debug("battle request handled", "battle", c.Battle, "request", env.Type,
			"response", resp.Type, "seq", c.stats.Requests)
	}
}
