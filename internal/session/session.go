package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/syncwatch/server/internal/domain"
)

// BroadcastChannel is the send-to-all primitive supplied by the hosting
// platform. Delivery is at-least-once and unordered. The channel must not
// deliver a peer's own messages back to it; SendEcho covers local effects.
type BroadcastChannel interface {
	Sender
	OnReceive(func(raw string))
}

// ParticipantRoster extends the read-only Roster with change notification.
type ParticipantRoster interface {
	Roster
	OnParticipantsChanged(func(participants []string))
}

type Config struct {
	// ElectionRetryDelay is the fixed delay after startup before the
	// election is re-run, covering the race where the roster callback
	// fires before all peers have registered their arrival timestamps.
	ElectionRetryDelay time.Duration
	NotifyFlushWindow  time.Duration
	NotifyDisplayFor   time.Duration
}

const (
	defaultElectionRetryDelay = 2 * time.Second
	defaultNotifyFlushWindow  = 50 * time.Millisecond
	defaultNotifyDisplayFor   = 5 * time.Second
)

type Deps struct {
	Store    StateStore
	Channel  BroadcastChannel
	Roster   ParticipantRoster
	Player   PlayerControl
	Renderer Renderer
	Playlist *domain.Playlist
	Logger   *slog.Logger
}

func (d *Deps) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("state store is required")
	case d.Channel == nil:
		return errors.New("broadcast channel is required")
	case d.Roster == nil:
		return errors.New("participant roster is required")
	case d.Player == nil:
		return errors.New("player control is required")
	case d.Renderer == nil:
		return errors.New("notification renderer is required")
	case d.Playlist == nil:
		return errors.New("playlist is required")
	}

	return nil
}

// Engine assembles the session synchronization machinery for one peer and
// owns the shared session state access: components read it through the bus,
// never through ambient globals.
type Engine struct {
	bus           *Bus
	election      *Election
	playback      *Playback
	notifications *NotificationQueue
	cfg           Config
	logger        *slog.Logger

	mu         sync.Mutex
	retryTimer *time.Timer
	started    bool
}

// NewEngine wires the components. Missing dependencies fail here, at
// construction, not at first use.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	if cfg.ElectionRetryDelay <= 0 {
		cfg.ElectionRetryDelay = defaultElectionRetryDelay
	}
	if cfg.NotifyFlushWindow <= 0 {
		cfg.NotifyFlushWindow = defaultNotifyFlushWindow
	}
	if cfg.NotifyDisplayFor <= 0 {
		cfg.NotifyDisplayFor = defaultNotifyDisplayFor
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := NewBus(deps.Store, deps.Channel, logger)
	election := NewElection(bus, deps.Roster, logger)
	notifications := NewNotificationQueue(deps.Renderer, cfg.NotifyFlushWindow, cfg.NotifyDisplayFor)
	playback := NewPlayback(bus, election, deps.Playlist, deps.Player, notifications, logger)

	e := Engine{
		bus:           bus,
		election:      election,
		playback:      playback,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
	}

	deps.Channel.OnReceive(func(raw string) {
		e.bus.Receive(context.Background(), raw)
	})
	deps.Roster.OnParticipantsChanged(func(participants []string) {
		e.logger.DebugContext(context.Background(), "participants changed", "participants", participants)
		if err := e.election.Run(context.Background()); err != nil {
			e.logger.InfoContext(context.Background(), "failed to run election", "error", err)
		}
	})

	return &e, nil
}

// Start registers the local arrival, runs the initial election and arms
// the one-shot retry.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return errors.New("engine already started")
	}
	e.started = true

	if err := e.election.RegisterArrival(ctx); err != nil {
		return err
	}

	if err := e.election.Run(ctx); err != nil && !errors.Is(err, ErrNoParticipants) {
		e.logger.InfoContext(ctx, "failed to run startup election", "error", err)
	}

	e.retryTimer = time.AfterFunc(e.cfg.ElectionRetryDelay, func() {
		if err := e.election.Run(context.Background()); err != nil {
			e.logger.Info("failed to run election retry", "error", err)
		}
	})

	return nil
}

// Stop cancels the engine's timers. The broadcast channel and the store
// belong to the caller.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
	e.notifications.Stop()
	e.started = false
}

func (e *Engine) Bus() *Bus {
	return e.bus
}

func (e *Engine) Playback() *Playback {
	return e.playback
}

func (e *Engine) Notifications() *NotificationQueue {
	return e.notifications
}

func (e *Engine) IsAdmin(ctx context.Context) bool {
	return e.election.IsAdmin(ctx)
}
