package ws

import (
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
)

// feeds tracks subscribers per document id. It is only touched from the
// hub goroutine, so it needs no lock.
type feeds struct {
	subscribers map[string]map[string]*Client // documentID -> clientID -> client
	logger      logging.Logger
}

func newFeeds(logger logging.Logger) *feeds {
	return &feeds{
		subscribers: make(map[string]map[string]*Client),
		logger:      logger,
	}
}

func (f *feeds) add(cl *Client) {
	clients, ok := f.subscribers[cl.DocumentID]
	if !ok {
		clients = make(map[string]*Client)
		f.subscribers[cl.DocumentID] = clients
	}
	clients[cl.ID] = cl
}

func (f *feeds) remove(cl *Client) {
	clients, ok := f.subscribers[cl.DocumentID]
	if !ok {
		return
	}
	if _, ok := clients[cl.ID]; !ok {
		return
	}

	delete(clients, cl.ID)
	close(cl.Send)
	if len(clients) == 0 {
		delete(f.subscribers, cl.DocumentID)
	}
}

func (f *feeds) broadcast(msg *Message) {
	for _, cl := range f.subscribers[msg.DocumentID] {
		select {
		case cl.Send <- msg:
		default:
			f.logger.Warn(logging.Websocket, logging.Publish, "client buffer full, dropping message", map[logging.ExtraKey]any{
				logging.DocumentID: msg.DocumentID,
				logging.ClientID:   cl.ID,
			})
		}
	}
}

func (f *feeds) count(documentID string) int {
	return len(f.subscribers[documentID])
}

func (f *feeds) closeAll() {
	for id, clients := range f.subscribers {
		for _, cl := range clients {
			close(cl.Send)
		}
		delete(f.subscribers, id)
	}
}
