package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/exp/slices"
)

var ErrNoParticipants = errors.New("no enabled participants")

// Roster is the read side of the participant roster supplied by the
// hosting platform.
type Roster interface {
	LocalId() string
	EnabledParticipants() []string
}

// Election computes the session admin: the participant with the earliest
// recorded arrival timestamp among the currently enabled participants.
// Every peer runs the same computation over the same shared store, so all
// converged peers agree on a single winner without coordination.
type Election struct {
	bus    *Bus
	roster Roster
	now    func() time.Time
	logger *slog.Logger
}

func NewElection(bus *Bus, roster Roster, logger *slog.Logger) *Election {
	return &Election{
		bus:    bus,
		roster: roster,
		now:    time.Now,
		logger: logger,
	}
}

type arrival struct {
	participantId string
	timestamp     int64
}

// RegisterArrival records the local arrival timestamp in the shared store
// under the local participant id. Called once at startup; overwriting a
// previous value is acceptable since timestamps are only compared.
func (e *Election) RegisterArrival(ctx context.Context) error {
	return e.bus.SetState(ctx, e.roster.LocalId(), e.now().UnixMilli())
}

// Oldest returns the id of the enabled participant with the earliest
// recorded arrival. Participants with no recorded timestamp count as
// arriving "now", which is strictly later than any persisted value, so an
// unregistered late joiner can never displace a recorded arrival. Ties are
// broken by the smaller id; the rule only needs to be deterministic.
func (e *Election) Oldest(ctx context.Context) (string, error) {
	participants := e.roster.EnabledParticipants()
	if len(participants) == 0 {
		return "", ErrNoParticipants
	}

	fallback := e.now().UnixMilli()
	arrivals := make([]arrival, 0, len(participants))
	for _, participantId := range participants {
		timestamp := fallback
		if _, err := e.bus.State(ctx, participantId, &timestamp); err != nil {
			return "", err
		}

		arrivals = append(arrivals, arrival{participantId: participantId, timestamp: timestamp})
	}

	slices.SortFunc(arrivals, func(a, b arrival) int {
		if a.timestamp != b.timestamp {
			if a.timestamp < b.timestamp {
				return -1
			}
			return 1
		}
		if a.participantId < b.participantId {
			return -1
		}
		if a.participantId > b.participantId {
			return 1
		}
		return 0
	})

	return arrivals[0].participantId, nil
}

// Run recomputes the admin and, when the local participant wins, broadcasts
// an echoed admin message: peers learn the new admin and the local admin
// pointer updates immediately through the echo path. Losing peers do
// nothing; they converge on the winner's broadcast.
func (e *Election) Run(ctx context.Context) error {
	oldest, err := e.Oldest(ctx)
	if err != nil {
		return err
	}

	if oldest != e.roster.LocalId() {
		e.logger.DebugContext(ctx, "election lost", "oldest", oldest)
		return nil
	}

	e.logger.DebugContext(ctx, "election won, claiming admin", "participant_id", oldest)
	return e.bus.SendEcho(ctx, MsgAdmin, oldest)
}

// IsAdmin reports whether the local participant is the currently stored
// admin. Every locally-initiated session-state mutation is gated on it.
func (e *Election) IsAdmin(ctx context.Context) bool {
	return e.IsAdminId(ctx, e.roster.LocalId())
}

// IsAdminId reports whether the given participant is the currently stored
// admin.
func (e *Election) IsAdminId(ctx context.Context, participantId string) bool {
	var admin string
	ok, err := e.bus.State(ctx, MsgAdmin, &admin)
	if err != nil {
		e.logger.InfoContext(ctx, "failed to read admin state", "error", err)
		return false
	}

	return ok && admin == participantId
}
