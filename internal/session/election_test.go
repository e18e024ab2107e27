package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncwatch/server/internal/repository/state/inmemory"
)

func fixedClock(millis int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(millis)
	}
}

func TestElectionOldestIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRepo()

	arrivals := map[string]int64{
		"alpha":   3000,
		"bravo":   1000,
		"charlie": 2000,
	}

	// every peer computes the same winner from the same recorded arrivals
	for _, localId := range []string{"alpha", "bravo", "charlie"} {
		bus := NewBus(store, &recordingSender{}, testLogger())
		roster := &fakeRoster{localId: localId, participants: []string{"alpha", "bravo", "charlie"}}
		election := NewElection(bus, roster, testLogger())
		election.now = fixedClock(arrivals[localId])

		require.NoError(t, election.RegisterArrival(ctx))
	}

	for _, localId := range []string{"alpha", "bravo", "charlie"} {
		bus := NewBus(store, &recordingSender{}, testLogger())
		roster := &fakeRoster{localId: localId, participants: []string{"alpha", "bravo", "charlie"}}
		election := NewElection(bus, roster, testLogger())
		election.now = fixedClock(9000)

		oldest, err := election.Oldest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bravo", oldest)
	}
}

func TestElectionUnregisteredParticipantFallsBackToNow(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRepo()

	bus := NewBus(store, &recordingSender{}, testLogger())
	roster := &fakeRoster{localId: "alpha", participants: []string{"alpha", "ghost"}}
	election := NewElection(bus, roster, testLogger())

	election.now = fixedClock(1000)
	require.NoError(t, election.RegisterArrival(ctx))

	// ghost never registered; its fallback "now" is later than any
	// recorded arrival, so it can never win
	election.now = fixedClock(5000)
	oldest, err := election.Oldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", oldest)
}

func TestElectionTieBreaksDeterministically(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRepo()

	for _, localId := range []string{"bravo", "alpha"} {
		bus := NewBus(store, &recordingSender{}, testLogger())
		roster := &fakeRoster{localId: localId, participants: []string{"alpha", "bravo"}}
		election := NewElection(bus, roster, testLogger())
		election.now = fixedClock(1000)

		require.NoError(t, election.RegisterArrival(ctx))
	}

	bus := NewBus(store, &recordingSender{}, testLogger())
	roster := &fakeRoster{localId: "bravo", participants: []string{"alpha", "bravo"}}
	election := NewElection(bus, roster, testLogger())
	election.now = fixedClock(2000)

	oldest, err := election.Oldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", oldest)
}

func TestElectionEmptyRoster(t *testing.T) {
	bus := NewBus(inmemory.NewRepo(), &recordingSender{}, testLogger())
	election := NewElection(bus, &fakeRoster{localId: "alpha"}, testLogger())

	_, err := election.Oldest(context.Background())
	require.ErrorIs(t, err, ErrNoParticipants)
}

type electionPeer struct {
	bus      *Bus
	roster   *fakeRoster
	election *Election
}

// TestElectionConvergence replays the three-participant scenario: arrivals
// T1<T2<T3 converge on the first participant; when it leaves, the
// remaining two re-converge on the second.
func TestElectionConvergence(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRepo()
	network := newFakeNetwork()

	participants := []string{"p1", "p2", "p3"}
	arrivals := map[string]int64{"p1": 1000, "p2": 2000, "p3": 3000}

	peers := make(map[string]*electionPeer, len(participants))
	for _, participantId := range participants {
		roster := &fakeRoster{localId: participantId, participants: participants}
		channel := network.join(participantId)
		bus := NewBus(store, channel, testLogger())
		attachBus(channel, bus)

		election := NewElection(bus, roster, testLogger())
		election.now = fixedClock(arrivals[participantId])
		require.NoError(t, election.RegisterArrival(ctx))

		peers[participantId] = &electionPeer{bus: bus, roster: roster, election: election}
	}

	// roster settled; every peer runs the election
	for _, participantId := range participants {
		peer := peers[participantId]
		peer.election.now = fixedClock(9000)
		require.NoError(t, peer.election.Run(ctx))
	}

	for _, participantId := range participants {
		peer := peers[participantId]
		assert.True(t, peer.election.IsAdminId(ctx, "p1"), "peer %s must see p1 as admin", participantId)
		assert.Equal(t, participantId == "p1", peer.election.IsAdmin(ctx))
	}

	// p1 leaves; survivors re-run on the roster change
	network.leave("p1")
	delete(peers, "p1")
	for _, peer := range peers {
		peer.roster.setParticipants([]string{"p2", "p3"})
		require.NoError(t, peer.election.Run(ctx))
	}

	for participantId, peer := range peers {
		assert.True(t, peer.election.IsAdminId(ctx, "p2"), "peer %s must see p2 as admin", participantId)
		assert.Equal(t, participantId == "p2", peer.election.IsAdmin(ctx))
	}
}
