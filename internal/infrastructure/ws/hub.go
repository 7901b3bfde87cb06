package ws

import (
	"context"
	"errors"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
)

var ErrHubStopped = errors.New("websocket hub stopped")

// Hub owns every subscription. Register, unregister and broadcast are all
// funneled through Run so subscriber maps are single-goroutine.
type Hub struct {
	feeds      *feeds
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	count      chan countRequest
	done       chan struct{}
	logger     logging.Logger
}

type countRequest struct {
	documentID string
	reply      chan int
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		feeds:      newFeeds(logger),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

var _ domain.DocumentEventPublisher = (*Hub)(nil)

// Run blocks until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.feeds.closeAll()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cl := <-h.register:
			h.feeds.add(cl)
		case cl := <-h.unregister:
			h.feeds.remove(cl)
		case msg := <-h.broadcast:
			h.feeds.broadcast(msg)
		case req := <-h.count:
			req.reply <- h.feeds.count(req.documentID)
		}
	}
}

// Register returns once the hub has taken the client; events published after
// that reach it.
func (h *Hub) Register(cl *Client) error {
	select {
	case h.register <- cl:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(cl *Client) {
	select {
	case h.unregister <- cl:
	case <-h.done:
	}
}

func (h *Hub) Publish(ctx context.Context, event domain.DocumentEvent) error {
	select {
	case h.broadcast <- NewEventMessage(event):
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribers reports how many clients follow documentID.
func (h *Hub) Subscribers(documentID string) int {
	req := countRequest{documentID: documentID, reply: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}
