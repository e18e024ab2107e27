package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/syncwatch/server/internal/domain"
)

var ErrPermissionDenied = errors.New("permission denied")

// PlaybackState is the shared play/pause flag.
type PlaybackState string

const (
	PlaybackPlay  PlaybackState = "play"
	PlaybackPause PlaybackState = "pause"
)

// PlayerControl drives the local video element.
type PlayerControl interface {
	Play()
	Pause()
}

// Playback is the session state machine: the pair (current playlist index,
// play/pause flag). Local mutations are gated behind admin status and
// broadcast without echo; the local effect is applied directly, so a peer
// never double-applies its own message. Remote messages are applied as
// authoritative, last one wins.
type Playback struct {
	bus           *Bus
	election      *Election
	playlist      *domain.Playlist
	player        PlayerControl
	notifications *NotificationQueue
	logger        *slog.Logger
}

func NewPlayback(bus *Bus, election *Election, playlist *domain.Playlist, player PlayerControl, notifications *NotificationQueue, logger *slog.Logger) *Playback {
	p := Playback{
		bus:           bus,
		election:      election,
		playlist:      playlist,
		player:        player,
		notifications: notifications,
		logger:        logger,
	}

	bus.Subscribe(MsgPlaylist, p.onPlaylist)
	bus.Subscribe(MsgPlayback, p.onPlayback)
	bus.Subscribe(MsgMessage, p.onMessage)

	return &p
}

func (p *Playback) Playlist() *domain.Playlist {
	return p.playlist
}

// SelectVideo moves the shared playlist position. Admin only.
func (p *Playback) SelectVideo(ctx context.Context, index int) error {
	if !p.election.IsAdmin(ctx) {
		return ErrPermissionDenied
	}

	p.playlist.SetCurrentIndex(index)
	return p.bus.Send(ctx, MsgPlaylist, index)
}

// Play starts local playback and broadcasts the state change. Admin only.
func (p *Playback) Play(ctx context.Context) error {
	if !p.election.IsAdmin(ctx) {
		return ErrPermissionDenied
	}

	p.player.Play()
	return p.bus.Send(ctx, MsgPlayback, PlaybackPlay)
}

// Pause pauses local playback and broadcasts the state change. Admin only.
func (p *Playback) Pause(ctx context.Context) error {
	if !p.election.IsAdmin(ctx) {
		return ErrPermissionDenied
	}

	p.player.Pause()
	return p.bus.Send(ctx, MsgPlayback, PlaybackPause)
}

// Announce broadcasts a free-text notification to all peers, echoed so the
// sender sees it too.
func (p *Playback) Announce(ctx context.Context, text string) error {
	return p.bus.SendEcho(ctx, MsgMessage, text)
}

// onPlaylist applies a remote playlist position unconditionally: the
// sender was admin when it sent, and a stale position self-corrects on the
// next message of this type.
func (p *Playback) onPlaylist(ctx context.Context, payload json.RawMessage) {
	var index int
	if err := json.Unmarshal(payload, &index); err != nil {
		p.logger.DebugContext(ctx, "dropping playlist message", "error", err)
		return
	}

	p.playlist.SetCurrentIndex(index)
}

// onPlayback applies a remote play/pause to the local video element. The
// admin originated the action directly and ignores it here.
func (p *Playback) onPlayback(ctx context.Context, payload json.RawMessage) {
	if p.election.IsAdmin(ctx) {
		return
	}

	var state PlaybackState
	if err := json.Unmarshal(payload, &state); err != nil {
		p.logger.DebugContext(ctx, "dropping playback message", "error", err)
		return
	}

	switch state {
	case PlaybackPlay:
		p.player.Play()
	case PlaybackPause:
		p.player.Pause()
	default:
		p.logger.DebugContext(ctx, "dropping playback message", "state", state)
	}
}

func (p *Playback) onMessage(ctx context.Context, payload json.RawMessage) {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		p.logger.DebugContext(ctx, "dropping notification message", "error", err)
		return
	}

	p.notifications.Push(text, SeverityInfo)
}
