// Package ws carries the persistent, bidirectional board connections.
// One lightweight task runs per connection; suspension happens only at
// store access and socket writes, never inside the room registry.
package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
	"github.com/inkboard/inkboard/internal/realtime"
	"github.com/inkboard/inkboard/internal/server/middleware"
)

// Inbound message rate per connection. Drawing updates are frequent, so
// the ceiling is generous; it exists to stop a runaway client.
const (
	messagesPerSecond = 25
	messageBurst      = 50
)

// Hub accepts board websocket connections and drives their read/write
// loops against the mutation pipeline and broadcast bus.
type Hub struct {
	bus    *realtime.Bus
	boards *board.Service
}

func NewHub(bus *realtime.Bus, boards *board.Service) *Hub {
	return &Hub{bus: bus, boards: boards}
}

// ServeBoard handles one client's live connection to a board. The actor
// must hold read access before the handshake completes; refused
// connections never upgrade and exchange no messages.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	boardID, err := uuid.Parse(chi.URLParam(r, "boardID"))
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	if _, err := h.boards.Authorize(r.Context(), boardID, userID, access.ClassRead); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "board not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUnauthenticated):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			log.Error().Err(err).Msg("websocket authorize")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	session := realtime.NewSession(userID)

	h.bus.Join(boardID, session)
	defer h.bus.Leave(boardID, session)
	defer session.Close()

	// Writer loop: the session outbox is the only place this connection
	// is written to, so broadcasts and error frames never interleave.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-session.Done():
				return
			case payload := <-session.Outbox():
				if writeErr := conn.Write(ctx, websocket.MessageText, payload); writeErr != nil {
					log.Debug().Err(writeErr).Msg("websocket write")
					session.Close()
					return
				}
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(messagesPerSecond), messageBurst)

	for {
		_, data, readErr := conn.Read(ctx)
		if readErr != nil {
			if websocket.CloseStatus(readErr) == websocket.StatusNormalClosure || errors.Is(readErr, context.Canceled) {
				return
			}
			log.Debug().Err(readErr).Str("board_id", boardID.String()).Msg("websocket read")
			return
		}

		if !limiter.Allow() {
			session.Send(newErrorFrame("rate_limited", "too many messages"))
			continue
		}

		h.handleMessage(ctx, boardID, userID, session, data)
	}
}

// handleMessage dispatches one inbound frame through the mutation
// pipeline. Failures are reported on the origin session only; the
// connection stays up.
func (h *Hub) handleMessage(ctx context.Context, boardID, userID uuid.UUID, session *realtime.Session, data []byte) {
	msg, err := decodeClientMessage(data)
	if err != nil {
		session.Send(newErrorFrame(errKind(err), "malformed message"))
		return
	}

	switch m := msg.(type) {
	case createElementMessage:
		_, err = h.boards.CreateElement(ctx, boardID, userID, m.Params, session.ID)
	case updateElementMessage:
		_, err = h.boards.UpdateElement(ctx, boardID, userID, m.ElementID, m.Patch, session.ID)
	case deleteElementMessage:
		err = h.boards.DeleteElement(ctx, boardID, userID, m.ElementID, session.ID)
	}

	if err != nil {
		session.Send(newErrorFrame(errKind(err), errMessage(err)))
	}
}

func errKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	default:
		return "internal"
	}
}

func errMessage(err error) string {
	switch errKind(err) {
	case "unauthorized":
		return "write access required"
	case "unauthenticated":
		return "authentication required"
	case "not_found":
		return "not found"
	case "validation_error":
		return "invalid element fields"
	default:
		return "internal error"
	}
}
