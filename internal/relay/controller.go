package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type controller struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewController(hub *Hub, logger *slog.Logger) *controller {
	return &controller{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (c *controller) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (c *controller) handleWs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participantId := r.URL.Query().Get("participant_id")
	if participantId == "" {
		participantId = uuid.NewString()
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(ctx, "failed to upgrade connection", "error", err)
		return
	}

	if err := c.hub.Add(participantId, conn); err != nil {
		c.logger.InfoContext(ctx, "failed to add participant", "participant_id", participantId, "error", err)
		conn.WriteJSON(map[string]string{"error": err.Error()})
		conn.Close()
		return
	}

	if err := c.hub.Welcome(ctx, participantId); err != nil {
		c.logger.InfoContext(ctx, "failed to welcome participant", "participant_id", participantId, "error", err)
		c.hub.Remove(participantId)
		return
	}
	c.hub.SendRoster(ctx)

	c.logger.InfoContext(ctx, "participant connected", "participant_id", participantId)
	c.serveConn(context.WithoutCancel(ctx), participantId, conn)
}

// serveConn pumps frames from one connection until it drops, then removes
// the participant and pushes the shrunk roster.
func (c *controller) serveConn(ctx context.Context, participantId string, conn *websocket.Conn) {
	defer func() {
		c.hub.Remove(participantId)
		c.hub.SendRoster(ctx)
		c.logger.InfoContext(ctx, "participant disconnected", "participant_id", participantId)
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case FrameBroadcast:
			var raw string
			if err := json.Unmarshal(frame.Payload, &raw); err != nil {
				c.logger.DebugContext(ctx, "dropping malformed broadcast frame", "participant_id", participantId, "error", err)
				continue
			}

			c.hub.Broadcast(ctx, participantId, raw)
		default:
			c.logger.DebugContext(ctx, "dropping unknown frame", "participant_id", participantId, "type", frame.Type)
		}
	}
}
