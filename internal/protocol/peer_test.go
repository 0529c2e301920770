package protocol

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectralgames/fading-tictactoe-backend/internal/apperror"
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
	"github.com/spectralgames/fading-tictactoe-backend/internal/session"
)

// fakeChannel records sends instead of delivering them, so tests can assert
// on outgoing traffic and pump messages between peers explicitly.
type fakeChannel struct {
	open bool
	sent []Message
}

func (that *fakeChannel) Send(message Message) error {
	that.sent = append(that.sent, message)
	return nil
}

func (that *fakeChannel) IsOpen() bool {
	return that.open
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthority(size int) (*Peer, *fakeChannel) {
	channel := &fakeChannel{open: true}
	peer := NewPeer(testLogger(), RoleAuthority, entity.PlayerOne, session.New(size), channel)
	return peer, channel
}

func newFollower(size int) (*Peer, *fakeChannel) {
	channel := &fakeChannel{open: true}
	peer := NewPeer(testLogger(), RoleFollower, entity.PlayerTwo, session.New(size), channel)
	return peer, channel
}

func TestPeer_AuthorityLocalInput(t *testing.T) {
	t.Run("Applies the move and broadcasts the committed snapshot", func(t *testing.T) {
		// Given: an authority peer
		peer, channel := newAuthority(3)

		// When: the local user clicks cell 4
		require.NoError(t, peer.HandleLocalInput(4))

		// Then: the state mutated and exactly one snapshot went out
		require.Len(t, channel.sent, 1)
		assert.Equal(t, TypeState, channel.sent[0].Type)

		snapshot := channel.sent[0].Payload
		require.NotNil(t, snapshot)
		assert.Equal(t, entity.PlayerOne, snapshot.Board[4].Owner)
		assert.Equal(t, entity.PlayerTwo, snapshot.Turn)
	})

	t.Run("Occupied cell returns an error and sends nothing", func(t *testing.T) {
		// Given: an authority with cell 0 occupied
		peer, channel := newAuthority(3)
		require.NoError(t, peer.HandleLocalInput(0))
		channel.sent = nil

		// When: the user clicks the same cell again
		err := peer.HandleLocalInput(0)

		// Then: the engine rejection surfaces and no broadcast happens
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Empty(t, channel.sent)
	})

	t.Run("Closed channel skips the broadcast but still applies", func(t *testing.T) {
		// Given: an authority whose channel is not open
		peer, channel := newAuthority(3)
		channel.open = false

		// When: the local user clicks
		require.NoError(t, peer.HandleLocalInput(0))

		// Then: the move applied, nothing was queued or retried
		assert.Equal(t, entity.PlayerOne, peer.Snapshot().Board[0].Owner)
		assert.Empty(t, channel.sent)
	})
}

func TestPeer_FollowerLocalInput(t *testing.T) {
	t.Run("Proposes an attempt and never mutates locally", func(t *testing.T) {
		// Given: a follower peer
		peer, channel := newFollower(3)
		before := peer.Snapshot()

		// When: the local user clicks cell 7
		require.NoError(t, peer.HandleLocalInput(7))

		// Then: an attempt is sent and the local state is untouched
		require.Len(t, channel.sent, 1)
		assert.Equal(t, TypeAttempt, channel.sent[0].Type)
		require.NotNil(t, channel.sent[0].Index)
		assert.Equal(t, 7, *channel.sent[0].Index)

		assert.Equal(t, before, peer.Snapshot())
	})

	t.Run("Closed channel drops the attempt silently", func(t *testing.T) {
		peer, channel := newFollower(3)
		channel.open = false

		require.NoError(t, peer.HandleLocalInput(0))

		assert.Empty(t, channel.sent)
	})
}

func TestPeer_AuthorityHandlesAttempt(t *testing.T) {
	t.Run("Valid attempt applies as the follower and broadcasts", func(t *testing.T) {
		// Given: an authority that already moved, so it is the follower's turn
		peer, channel := newAuthority(3)
		require.NoError(t, peer.HandleLocalInput(0))
		channel.sent = nil

		// When: the follower proposes cell 4
		peer.HandleMessage(NewAttempt(4))

		// Then: the move applied for player two and a snapshot went out
		state := peer.Snapshot()
		assert.Equal(t, entity.PlayerTwo, state.Board[4].Owner)
		assert.Equal(t, entity.PlayerOne, state.Turn)

		require.Len(t, channel.sent, 1)
		assert.Equal(t, TypeState, channel.sent[0].Type)
	})

	t.Run("Attempt out of turn is a silent no-op", func(t *testing.T) {
		// Given: a fresh game, authority's turn
		peer, channel := newAuthority(3)
		before, err := json.Marshal(peer.Snapshot())
		require.NoError(t, err)

		// When: the follower proposes cell 5 anyway
		peer.HandleMessage(NewAttempt(5))

		// Then: the state is byte-for-byte unchanged and nothing was sent
		after, err := json.Marshal(peer.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Empty(t, channel.sent)
	})

	t.Run("Attempt after the game finished is discarded", func(t *testing.T) {
		// Given: a finished game
		peer, channel := newAuthority(3)
		state := peer.Snapshot()
		state.Win = &entity.WinResult{Winner: entity.PlayerOne, Line: []int{0, 1, 2}}
		state.Turn = entity.PlayerTwo
		peer.session.Hydrate(state)

		// When: the follower still proposes a move
		peer.HandleMessage(NewAttempt(5))

		// Then: no mutation, no broadcast
		assert.True(t, peer.Snapshot().Board[5].IsEmpty())
		assert.Empty(t, channel.sent)
	})

	t.Run("Attempt on an occupied or out-of-range cell is discarded", func(t *testing.T) {
		peer, channel := newAuthority(3)
		require.NoError(t, peer.HandleLocalInput(4))
		channel.sent = nil

		peer.HandleMessage(NewAttempt(4))
		peer.HandleMessage(NewAttempt(9))
		peer.HandleMessage(NewAttempt(-1))
		peer.HandleMessage(Message{Type: TypeAttempt})

		assert.Empty(t, channel.sent)
	})
}

func TestPeer_SyncRequest(t *testing.T) {
	// Given: an authority mid-game
	peer, channel := newAuthority(3)
	require.NoError(t, peer.HandleLocalInput(8))
	channel.sent = nil

	// When: the follower asks for the current snapshot
	peer.HandleMessage(NewSyncRequest())

	// Then: the full current state is broadcast
	require.Len(t, channel.sent, 1)
	assert.Equal(t, TypeState, channel.sent[0].Type)
	assert.Equal(t, entity.PlayerOne, channel.sent[0].Payload.Board[8].Owner)
}

func TestPeer_FollowerHandlesState(t *testing.T) {
	t.Run("Hydrates unconditionally, adopting a new board size", func(t *testing.T) {
		// Given: a 3x3 follower
		peer, _ := newFollower(3)

		// When: a 4x4 snapshot arrives
		snapshot := entity.NewGameState(4)
		snapshot.PlacePiece(15, entity.PlayerOne)
		peer.HandleMessage(NewStateSync(snapshot))

		// Then: the local state is the snapshot, wholesale
		state := peer.Snapshot()
		assert.Equal(t, 4, state.Size)
		assert.Equal(t, entity.PlayerOne, state.Board[15].Owner)
	})

	t.Run("Last snapshot wins", func(t *testing.T) {
		peer, _ := newFollower(3)

		first := entity.NewGameState(3)
		first.PlacePiece(0, entity.PlayerOne)
		second := entity.NewGameState(3)
		second.PlacePiece(8, entity.PlayerTwo)

		peer.HandleMessage(NewStateSync(first))
		peer.HandleMessage(NewStateSync(second))

		state := peer.Snapshot()
		assert.True(t, state.Board[0].IsEmpty())
		assert.Equal(t, entity.PlayerTwo, state.Board[8].Owner)
	})

	t.Run("State without a payload is ignored", func(t *testing.T) {
		peer, _ := newFollower(3)
		before := peer.Snapshot()

		peer.HandleMessage(Message{Type: TypeState})

		assert.Equal(t, before, peer.Snapshot())
	})
}

func TestPeer_IgnoresMismatchedMessages(t *testing.T) {
	t.Run("Follower ignores attempts and sync requests", func(t *testing.T) {
		peer, channel := newFollower(3)
		before := peer.Snapshot()

		peer.HandleMessage(NewAttempt(0))
		peer.HandleMessage(NewSyncRequest())

		assert.Equal(t, before, peer.Snapshot())
		assert.Empty(t, channel.sent)
	})

	t.Run("Authority ignores incoming state", func(t *testing.T) {
		peer, channel := newAuthority(3)
		before := peer.Snapshot()

		foreign := entity.NewGameState(4)
		peer.HandleMessage(NewStateSync(foreign))

		assert.Equal(t, before, peer.Snapshot())
		assert.Empty(t, channel.sent)
	})

	t.Run("Unrecognized types are ignored", func(t *testing.T) {
		peer, channel := newAuthority(3)
		before := peer.Snapshot()

		peer.HandleMessage(Message{Type: "gossip"})

		assert.Equal(t, before, peer.Snapshot())
		assert.Empty(t, channel.sent)
	})
}

func TestPeer_Reset(t *testing.T) {
	t.Run("Authority reset broadcasts the fresh state", func(t *testing.T) {
		// Given: an authority mid-game
		peer, channel := newAuthority(3)
		require.NoError(t, peer.HandleLocalInput(0))
		channel.sent = nil

		// When: resetting to 4x4
		require.NoError(t, peer.Reset(4))

		// Then: the broadcast carries the empty 4x4 state
		require.Len(t, channel.sent, 1)
		assert.Equal(t, TypeState, channel.sent[0].Type)
		assert.Equal(t, entity.NewGameState(4), channel.sent[0].Payload)
	})

	t.Run("Follower may not reset", func(t *testing.T) {
		peer, channel := newFollower(3)

		require.ErrorIs(t, peer.Reset(4), apperror.ErrNotAuthority)
		assert.Empty(t, channel.sent)
	})

	t.Run("Local game resets without a channel", func(t *testing.T) {
		peer := NewPeer(testLogger(), RoleLocal, entity.NoPlayer, session.New(3), nil)
		require.NoError(t, peer.HandleLocalInput(0))

		require.NoError(t, peer.Reset(3))

		assert.Equal(t, entity.NewGameState(3), peer.Snapshot())
	})
}

func TestPeer_LocalHotSeat(t *testing.T) {
	// Given: a local game with no channel
	peer := NewPeer(testLogger(), RoleLocal, entity.NoPlayer, session.New(3), nil)

	// When: two clicks land
	require.NoError(t, peer.HandleLocalInput(0))
	require.NoError(t, peer.HandleLocalInput(4))

	// Then: the clicks alternate between the players
	state := peer.Snapshot()
	assert.Equal(t, entity.PlayerOne, state.Board[0].Owner)
	assert.Equal(t, entity.PlayerTwo, state.Board[4].Owner)
}

// Drives a full match between two wired peers, pumping each side's outbox
// to the other in order, and checks both views converge move by move.
func TestPeer_TwoPeerConvergence(t *testing.T) {
	authority, authorityOut := newAuthority(3)
	follower, followerOut := newFollower(3)

	pump := func() {
		for len(authorityOut.sent) > 0 || len(followerOut.sent) > 0 {
			for _, message := range authorityOut.sent {
				follower.HandleMessage(message)
			}
			authorityOut.sent = nil

			for _, message := range followerOut.sent {
				authority.HandleMessage(message)
			}
			followerOut.sent = nil
		}
	}

	// initial handshake: the follower asks for the current state
	follower.HandleMessage(NewSyncRequest()) // ignored by role
	require.NoError(t, follower.HandleLocalInput(0))
	pump()
	// the attempt above was out of turn and silently dropped
	assert.True(t, follower.Snapshot().Board[0].IsEmpty())

	moves := []struct {
		peer  *Peer
		index int
	}{
		{authority, 0},
		{follower, 3},
		{authority, 4},
		{follower, 5},
		{authority, 8},
	}

	for _, move := range moves {
		require.NoError(t, move.peer.HandleLocalInput(move.index))
		pump()

		require.Equal(t, authority.Snapshot(), follower.Snapshot())
	}

	// the authority completed the main diagonal
	final := follower.Snapshot()
	require.NotNil(t, final.Win)
	assert.Equal(t, entity.PlayerOne, final.Win.Winner)
	assert.Equal(t, []int{0, 4, 8}, final.Win.Line)
}
