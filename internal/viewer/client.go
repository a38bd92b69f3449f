package viewer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Conn is the part of a websocket connection a client uses.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
	SetReadLimit(n int64)
}

type Client struct {
	hub     *Hub
	conn    Conn
	session *Session

	send       chan []byte
	registered chan struct{}
	done       chan struct{}
	doneOnce   sync.Once

	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string
}

type ClientConfig struct {
	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string
}

// NewClient creates a client whose session is built by newSession. The
// session's messages go to this client and its presence to the hub.
func NewClient(hub *Hub, conn Conn, cfg ClientConfig, newSession func(emit func(*Message), onPresence func(PresencePayload)) *Session) *Client {
	c := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		registered:  make(chan struct{}),
		done:        make(chan struct{}),
		UserID:      cfg.UserID,
		DisplayName: cfg.DisplayName,
		ProjectID:   cfg.ProjectID,
		ClientID:    cfg.ClientID,
	}
	c.session = newSession(c.Send, func(p PresencePayload) {
		p.DisplayName = c.DisplayName
		hub.UpdatePresence(c, &p)
	})
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// ReadPump feeds client messages to the session until the connection ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.ProjectID = c.ProjectID

		c.session.Handle(ctx, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the write pump. It never blocks; messages to a slow or
// closed client are dropped.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID, "type", msg.Type)
	}
}

func (c *Client) close() {
	c.doneOnce.Do(func() { close(c.done) })
}
