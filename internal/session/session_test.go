package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures outbound raw messages without delivering them.
type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, raw)
	return nil
}

func (s *recordingSender) sentMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make([]string, len(s.sent))
	copy(sent, s.sent)
	return sent
}

// fakeNetwork delivers every sent message to every peer except the sender,
// matching the relay's fan-out contract.
type fakeNetwork struct {
	mu    sync.Mutex
	peers map[string]*fakeChannel
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{peers: make(map[string]*fakeChannel)}
}

func (n *fakeNetwork) join(participantId string) *fakeChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	channel := &fakeChannel{network: n, participantId: participantId}
	n.peers[participantId] = channel
	return channel
}

func (n *fakeNetwork) leave(participantId string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.peers, participantId)
}

func (n *fakeNetwork) deliver(senderId string, raw string) {
	n.mu.Lock()
	receivers := make([]*fakeChannel, 0, len(n.peers))
	for participantId, channel := range n.peers {
		if participantId != senderId {
			receivers = append(receivers, channel)
		}
	}
	n.mu.Unlock()

	for _, channel := range receivers {
		channel.receive(raw)
	}
}

type fakeChannel struct {
	network       *fakeNetwork
	participantId string

	mu        sync.Mutex
	onReceive []func(string)
}

func (c *fakeChannel) Send(raw string) error {
	c.network.deliver(c.participantId, raw)
	return nil
}

func (c *fakeChannel) OnReceive(fn func(raw string)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onReceive = append(c.onReceive, fn)
}

func (c *fakeChannel) receive(raw string) {
	c.mu.Lock()
	callbacks := make([]func(string), len(c.onReceive))
	copy(callbacks, c.onReceive)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(raw)
	}
}

// attachBus routes a channel's inbound messages into a bus, the way the
// engine wires its own channel.
func attachBus(channel *fakeChannel, bus *Bus) {
	channel.OnReceive(func(raw string) {
		bus.Receive(context.Background(), raw)
	})
}

type fakeRoster struct {
	mu           sync.Mutex
	localId      string
	participants []string
	callbacks    []func([]string)
}

func (r *fakeRoster) LocalId() string {
	return r.localId
}

func (r *fakeRoster) EnabledParticipants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	participants := make([]string, len(r.participants))
	copy(participants, r.participants)
	return participants
}

func (r *fakeRoster) OnParticipantsChanged(fn func(participants []string)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks = append(r.callbacks, fn)
}

func (r *fakeRoster) setParticipants(participants []string) {
	r.mu.Lock()
	r.participants = participants
	callbacks := make([]func([]string), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(participants)
	}
}

type fakePlayer struct {
	mu      sync.Mutex
	actions []string
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.actions = append(p.actions, "play")
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.actions = append(p.actions, "pause")
}

func (p *fakePlayer) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	actions := make([]string, len(p.actions))
	copy(actions, p.actions)
	return actions
}

type fakeRenderer struct {
	mu        sync.Mutex
	shown     []Notification
	dismissed []Notification
}

func (r *fakeRenderer) Show(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shown = append(r.shown, n)
}

func (r *fakeRenderer) Dismiss(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dismissed = append(r.dismissed, n)
}

func (r *fakeRenderer) shownNotifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	shown := make([]Notification, len(r.shown))
	copy(shown, r.shown)
	return shown
}

func (r *fakeRenderer) dismissedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.dismissed)
}
