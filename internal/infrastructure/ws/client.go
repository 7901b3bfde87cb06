package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 64
)

// Client is one websocket subscribed to a single document's events.
type Client struct {
	conn       *connWrapper
	Send       chan *Message
	ID         string
	DocumentID string

	// history is written before anything queued on Send. seen holds its
	// entries so live events already covered by it are not repeated.
	history *Message
	seen    map[domain.AuditEntry]int
}

func NewClient(conn *websocket.Conn, documentID string) *Client {
	return &Client{
		conn:       newConnWrapper(conn, writeWait),
		Send:       make(chan *Message, sendBuffer),
		ID:         uuid.NewString(),
		DocumentID: documentID,
	}
}

// Prime sets the history sent ahead of live events. Call it after Register
// and before WritePump; events queued in between that are already part of
// history are skipped.
func (c *Client) Prime(entries []domain.AuditEntry) {
	c.history = NewHistoryMessage(c.DocumentID, entries)
	c.seen = make(map[domain.AuditEntry]int, len(entries))
	for _, e := range entries {
		c.seen[e]++
	}
}

// covered reports whether msg repeats an entry already sent as history.
// Matching stops at the first live event history does not hold.
func (c *Client) covered(msg *Message) bool {
	if len(c.seen) == 0 {
		return false
	}
	event, ok := msg.Data.(domain.DocumentEvent)
	if ok && c.seen[event.Entry] > 0 {
		c.seen[event.Entry]--
		return true
	}
	c.seen = nil
	return false
}

// ReadPump drains the connection so control frames are handled. The feed is
// read-only; anything the peer sends is discarded.
func (c *Client) ReadPump(hub *Hub, logger logging.Logger) {
	defer func() {
		hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(512)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn(logging.Websocket, logging.ExternalService, "ws read error", map[logging.ExtraKey]any{
					logging.ClientID:     c.ID,
					logging.DocumentID:   c.DocumentID,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}
	}
}

// WritePump forwards queued messages until Send is closed by the hub.
func (c *Client) WritePump(logger logging.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	if c.history != nil {
		if err := c.conn.WriteJSON(c.history); err != nil {
			logger.Warn(logging.Websocket, logging.Publish, "ws write error", map[logging.ExtraKey]any{
				logging.ClientID:     c.ID,
				logging.DocumentID:   c.DocumentID,
				logging.ErrorMessage: err.Error(),
			})
			return
		}
	}

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if c.covered(msg) {
				continue
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Warn(logging.Websocket, logging.Publish, "ws write error", map[logging.ExtraKey]any{
					logging.ClientID:     c.ID,
					logging.DocumentID:   c.DocumentID,
					logging.ErrorMessage: err.Error(),
				})
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return
			}
		}
	}
}
