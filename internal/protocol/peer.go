// Package protocol implements the host-authoritative synchronization between
// two peers. The authority applies moves and is the sole sender of state
// snapshots; the follower proposes moves and only ever updates its state by
// full replacement. The transport is abstracted behind Channel and is
// assumed to deliver in order; snapshots carry no sequence numbers, so a
// reordering transport could let a stale snapshot overwrite a newer one.
package protocol

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spectralgames/fading-tictactoe-backend/internal/apperror"
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
	"github.com/spectralgames/fading-tictactoe-backend/internal/session"
)

// Channel is the ordered, bidirectional message pipe between the two peers.
// Send is fire-and-forget; a send against a channel that is not open is
// skipped, never queued or retried.
type Channel interface {
	Send(message Message) error
	IsOpen() bool
}

// Peer wires one role onto one session. All entry points serialize on a
// mutex, so a mutation triggered by a received message fully completes
// before any subsequent read and a broadcast always observes committed state.
type Peer struct {
	mu sync.Mutex

	logger  *slog.Logger
	role    Role
	seat    entity.PlayerID
	session *session.Session
	channel Channel
}

func NewPeer(logger *slog.Logger, role Role, seat entity.PlayerID, gameSession *session.Session, channel Channel) *Peer {
	return &Peer{
		logger:  logger.With("component", "peer", "role", role.String()),
		role:    role,
		seat:    seat,
		session: gameSession,
		channel: channel,
	}
}

func (that *Peer) Role() Role {
	return that.role
}

// Snapshot returns a copy of the current state for rendering.
func (that *Peer) Snapshot() *entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session.Snapshot()
}

// HandleLocalInput reacts to a click translated to a board index. The
// authority and a local game apply it directly; a follower never mutates
// its own state and instead proposes the move to the authority.
func (that *Peer) HandleLocalInput(index int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.role {
	case RoleFollower:
		that.send(NewAttempt(index))
		return nil
	case RoleAuthority:
		if err := that.session.Apply(index, that.seat); err != nil {
			return fmt.Errorf("failed to apply local move: %w", err)
		}

		that.broadcastState()

		return nil
	default:
		// hot-seat: whoever's turn it is owns the click
		if err := that.session.Apply(index, that.session.State().Turn); err != nil {
			return fmt.Errorf("failed to apply local move: %w", err)
		}

		return nil
	}
}

// HandleMessage dispatches one incoming message according to role.
// Unrecognized types, and messages a role does not consume, are ignored.
func (that *Peer) HandleMessage(message Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case that.role == RoleAuthority && message.Type == TypeAttempt:
		that.handleAttempt(message)
	case that.role == RoleAuthority && message.Type == TypeSyncRequest:
		that.broadcastState()
	case that.role == RoleFollower && message.Type == TypeState:
		if message.Payload != nil {
			that.session.Hydrate(message.Payload)
		}
	}
}

// handleAttempt validates a follower's proposal. A proposal that fails any
// check is silently discarded: no rejection reply, no state broadcast. The
// follower infers rejection from the absence of a matching snapshot.
func (that *Peer) handleAttempt(message Message) {
	log := that.logger.With("method", "handleAttempt")

	if message.Index == nil {
		return
	}
	index := *message.Index

	state := that.session.State()
	if state.IsFinished() || state.Turn != that.seat.Opponent() {
		log.Debug("discarding attempt", "index", index)
		return
	}
	if !state.InBounds(index) || !state.Board[index].IsEmpty() {
		log.Debug("discarding attempt", "index", index)
		return
	}

	if err := that.session.Apply(index, that.seat.Opponent()); err != nil {
		log.Error("failed to apply validated attempt", "error", err)
		return
	}

	that.broadcastState()
}

// Reset starts a fresh game on the given board size. Only the authority (or
// a local game) may do this; the follower's board size follows whatever the
// next snapshot carries.
func (that *Peer) Reset(size int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.role == RoleFollower {
		return apperror.ErrNotAuthority
	}

	that.session.Reset(size)

	if that.role == RoleAuthority {
		that.broadcastState()
	}

	return nil
}

func (that *Peer) broadcastState() {
	that.send(NewStateSync(that.session.Snapshot()))
}

func (that *Peer) send(message Message) {
	if that.channel == nil || !that.channel.IsOpen() {
		return
	}

	if err := that.channel.Send(message); err != nil {
		that.logger.Error("failed to send message", "type", message.Type, "error", err)
	}
}
