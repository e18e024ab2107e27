// Package wsbroadcast adapts a single websocket connection to a relay into
// the broadcast channel and participant roster consumed by the session
// engine.
package wsbroadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame mirrors the relay's wire envelope.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	frameWelcome   = "welcome"
	frameRoster    = "roster"
	frameBroadcast = "broadcast"
)

type Client struct {
	conn    *websocket.Conn
	localId string
	logger  *slog.Logger

	writeMu sync.Mutex

	mu           sync.Mutex
	participants []string
	onReceive    []func(raw string)
	onRoster     []func(participants []string)

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the relay and completes the welcome handshake. An empty
// participantId asks the relay to assign one. The read loop starts as soon
// as Dial returns, so callbacks should be registered right after
// connecting; EnabledParticipants always reflects the latest roster frame.
func Dial(ctx context.Context, relayURL string, participantId string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay url: %w", err)
	}
	u.Path = "/ws"
	if participantId != "" {
		u.RawQuery = url.Values{"participant_id": {participantId}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}

	// The welcome frame always comes first and carries the registered id.
	var welcome frame
	if err := conn.ReadJSON(&welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read welcome frame: %w", err)
	}
	if welcome.Type != frameWelcome {
		conn.Close()
		return nil, fmt.Errorf("unexpected first frame %q", welcome.Type)
	}

	var localId string
	if err := json.Unmarshal(welcome.Payload, &localId); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to decode welcome frame: %w", err)
	}

	c := Client{
		conn:    conn,
		localId: localId,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go c.readLoop()

	return &c, nil
}

func (c *Client) LocalId() string {
	return c.localId
}

func (c *Client) EnabledParticipants() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	participants := make([]string, len(c.participants))
	copy(participants, c.participants)
	return participants
}

// Send transmits one raw session message to all other peers.
func (c *Client) Send(raw string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(&frame{
		Type:    frameBroadcast,
		Payload: mustMarshal(raw),
	})
}

func (c *Client) OnReceive(fn func(raw string)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onReceive = append(c.onReceive, fn)
}

func (c *Client) OnParticipantsChanged(fn func(participants []string)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onRoster = append(c.onRoster, fn)
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})

	return nil
}

// Done is closed when the connection to the relay is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Info("relay connection lost", "error", err)
			}
			return
		}

		switch f.Type {
		case frameBroadcast:
			var raw string
			if err := json.Unmarshal(f.Payload, &raw); err != nil {
				c.logger.Debug("dropping malformed broadcast frame", "error", err)
				continue
			}

			for _, fn := range c.receiveCallbacks() {
				fn(raw)
			}
		case frameRoster:
			var participants []string
			if err := json.Unmarshal(f.Payload, &participants); err != nil {
				c.logger.Debug("dropping malformed roster frame", "error", err)
				continue
			}

			c.mu.Lock()
			c.participants = participants
			callbacks := make([]func([]string), len(c.onRoster))
			copy(callbacks, c.onRoster)
			c.mu.Unlock()

			for _, fn := range callbacks {
				fn(participants)
			}
		default:
			c.logger.Debug("dropping unknown frame", "type", f.Type)
		}
	}
}

func (c *Client) receiveCallbacks() []func(string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	callbacks := make([]func(string), len(c.onReceive))
	copy(callbacks, c.onReceive)
	return callbacks
}

func mustMarshal(v any) json.RawMessage {
	encoded, err := json.Marshal(v)
	if err != nil {
		// v is always a string here
		panic(err)
	}

	return encoded
}
