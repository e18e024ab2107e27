package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrParticipantAlreadyConnected = errors.New("participant already connected")
	ErrParticipantNotFound         = errors.New("participant not found")
)

// Hub tracks the connected participants of one session and fans frames out
// to them. Broadcast frames never go back to their sender: the session
// protocol's echo path is the sole mechanism for local application of a
// peer's own messages.
type Hub struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn
	order []string // participant ids in join order
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Add(participantId string, conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[participantId]; ok {
		return ErrParticipantAlreadyConnected
	}

	h.conns[participantId] = conn
	h.order = append(h.order, participantId)
	return nil
}

func (h *Hub) Remove(participantId string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.remove(participantId)
}

// remove expects h.mu held.
func (h *Hub) remove(participantId string) error {
	conn, ok := h.conns[participantId]
	if !ok {
		return ErrParticipantNotFound
	}
	conn.Close()

	delete(h.conns, participantId)
	for index, id := range h.order {
		if id == participantId {
			h.order = append(h.order[:index], h.order[index+1:]...)
			break
		}
	}

	return nil
}

// Participants returns the connected participant ids in join order.
func (h *Hub) Participants() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	participants := make([]string, len(h.order))
	copy(participants, h.order)
	return participants
}

// Welcome tells a participant the id it is registered under.
func (h *Hub) Welcome(ctx context.Context, participantId string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[participantId]
	if !ok {
		return ErrParticipantNotFound
	}

	return conn.WriteJSON(&Frame{Type: FrameWelcome, Payload: participantId})
}

// Broadcast fans a raw session message out to every connection except the
// sender. Connections that fail to take the write are dropped.
func (h *Hub) Broadcast(ctx context.Context, senderId string, raw string) {
	frame := Frame{Type: FrameBroadcast, Payload: raw}

	h.mu.Lock()
	var failed []string
	for participantId, conn := range h.conns {
		if participantId == senderId {
			continue
		}

		if err := conn.WriteJSON(&frame); err != nil {
			h.logger.InfoContext(ctx, "failed to write broadcast frame", "participant_id", participantId, "error", err)
			failed = append(failed, participantId)
		}
	}
	for _, participantId := range failed {
		h.remove(participantId)
	}
	h.mu.Unlock()

	if len(failed) > 0 {
		h.SendRoster(ctx)
	}
}

// SendRoster pushes the current participant list to every connection.
func (h *Hub) SendRoster(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	participants := make([]string, len(h.order))
	copy(participants, h.order)
	frame := Frame{Type: FrameRoster, Payload: participants}

	for participantId, conn := range h.conns {
		if err := conn.WriteJSON(&frame); err != nil {
			h.logger.InfoContext(ctx, "failed to write roster frame", "participant_id", participantId, "error", err)
		}
	}
}
