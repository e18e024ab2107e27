package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// StateStore is the shared key/value store visible to every participant.
// No transactions, no compare-and-swap; convergence relies on every writer
// applying the same deterministic rules, not on mutual exclusion.
type StateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Sender is the outbound half of the broadcast channel.
type Sender interface {
	Send(raw string) error
}

// Handler receives the decoded payload of one dispatched message.
type Handler func(ctx context.Context, payload json.RawMessage)

// Bus routes session messages: outbound through the broadcast channel,
// inbound to local subscribers, with a fixed set of message types also
// persisted to the shared state store so late joiners can catch up.
//
// Receive is serialized: the effects of one message complete before the
// next is dispatched. Handlers must not call Receive (use Send, which only
// touches the channel).
type Bus struct {
	store     StateStore
	sender    Sender
	persisted map[string]struct{}
	logger    *slog.Logger

	mu       sync.Mutex
	handlers map[string][]Handler
}

// DefaultPersistedTypes are the session-state fields kept in the shared
// store in addition to being dispatched.
var DefaultPersistedTypes = []string{MsgAdmin, MsgPlaylist, MsgPlayback}

func NewBus(store StateStore, sender Sender, logger *slog.Logger) *Bus {
	persisted := make(map[string]struct{}, len(DefaultPersistedTypes))
	for _, msgType := range DefaultPersistedTypes {
		persisted[msgType] = struct{}{}
	}

	return &Bus{
		store:     store,
		sender:    sender,
		persisted: persisted,
		logger:    logger,
		handlers:  make(map[string][]Handler),
	}
}

// Subscribe registers a handler for a message type. Handlers for one type
// run in registration order.
func (b *Bus) Subscribe(msgType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[msgType] = append(b.handlers[msgType], handler)
}

// Send encodes and transmits a message to the other peers. The message is
// not applied locally.
func (b *Bus) Send(ctx context.Context, msgType string, args ...any) error {
	raw, err := Encode(msgType, args...)
	if err != nil {
		return err
	}

	if err := b.sender.Send(raw); err != nil {
		return fmt.Errorf("failed to send %q message: %w", msgType, err)
	}

	return nil
}

// SendEcho transmits a message and immediately applies it locally through
// Receive. Because the broadcast channel never delivers a sender's own
// messages back, this is the only path by which a local action takes local
// effect, and it takes effect exactly once.
func (b *Bus) SendEcho(ctx context.Context, msgType string, args ...any) error {
	raw, err := Encode(msgType, args...)
	if err != nil {
		return err
	}

	if err := b.sender.Send(raw); err != nil {
		return fmt.Errorf("failed to send %q message: %w", msgType, err)
	}

	b.Receive(ctx, raw)
	return nil
}

// Receive decodes a raw broadcast string, persists the payload when the
// type is one of the persisted session-state fields, and dispatches it to
// local subscribers. Malformed input is dropped silently.
func (b *Bus) Receive(ctx context.Context, raw string) {
	msgType, payload, ok := Decode(raw)
	if !ok {
		b.logger.DebugContext(ctx, "dropping malformed message", "raw", raw)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.persisted[msgType]; ok {
		if err := b.store.Set(ctx, msgType, string(payload)); err != nil {
			b.logger.InfoContext(ctx, "failed to persist message payload", "type", msgType, "error", err)
		}
	}

	for _, handler := range b.handlers[msgType] {
		handler(ctx, payload)
	}
}

// State reads a persisted value from the shared store into dst. Returns
// false when the key is absent.
func (b *Bus) State(ctx context.Context, key string, dst any) (bool, error) {
	value, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read state %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("failed to decode state %q: %w", key, err)
	}

	return true, nil
}

// SetState serializes and writes a value to the shared store.
func (b *Bus) SetState(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}

	if err := b.store.Set(ctx, key, string(encoded)); err != nil {
		return fmt.Errorf("failed to write state %q: %w", key, err)
	}

	return nil
}
