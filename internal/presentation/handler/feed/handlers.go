package feed

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	documentUseCase "github.com/hilthontt/doctrack/internal/application/usecases/document"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/ws"
	"github.com/hilthontt/doctrack/internal/presentation/utils"
)

type Handler struct {
	documents documentUseCase.DocumentUseCase
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	logger    logging.Logger
}

func NewHandler(documents documentUseCase.DocumentUseCase, hub *ws.Hub, logger logging.Logger) *Handler {
	return &Handler{
		documents: documents,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// SubscribeHandler streams a document's history followed by its live
// events. Unknown documents are rejected before the upgrade.
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.documents.Get(r.Context(), id); err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Websocket, logging.ExternalService, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.DocumentID:   id,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	// registered before history is read so no event falls between the two
	client := ws.NewClient(conn, id)
	if err := h.hub.Register(client); err != nil {
		_ = conn.Close()
		return
	}

	history, err := h.documents.History(r.Context(), id)
	if err != nil {
		h.logger.Error(logging.Storage, logging.TableRead, "failed to read history", map[logging.ExtraKey]any{
			logging.DocumentID:   id,
			logging.ErrorMessage: err.Error(),
		})
		h.hub.Unregister(client)
		_ = conn.Close()
		return
	}
	client.Prime(history)

	go client.WritePump(h.logger)
	go client.ReadPump(h.hub, h.logger)
}
