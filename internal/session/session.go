// Package session owns one peer's canonical game state. The session never
// decides whether a move is legal to accept from the network; that is the
// protocol's job. It is the single source of truth read by rendering.
package session

import (
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
	"github.com/spectralgames/fading-tictactoe-backend/internal/fading"
)

type Session struct {
	state *entity.GameState
}

func New(size int) *Session {
	return &Session{state: entity.NewGameState(size)}
}

// State returns the live canonical state for reads. Mutation goes through
// Apply, Hydrate or Reset only.
func (that *Session) State() *entity.GameState {
	return that.state
}

// Snapshot returns a deep, self-contained copy suitable for transmission.
func (that *Session) Snapshot() *entity.GameState {
	return that.state.Clone()
}

// Hydrate replaces the entire local state with the given snapshot. No
// merging, no conflict resolution; the last snapshot applied wins. The
// snapshot is copied, so the caller keeps ownership of its value.
func (that *Session) Hydrate(snapshot *entity.GameState) {
	that.state = snapshot.Clone()
}

// Reset reinitializes to the empty state for the given board size.
func (that *Session) Reset(size int) {
	that.state.Reset(size)
}

// Apply runs one move transition through the engine.
func (that *Session) Apply(index int, player entity.PlayerID) error {
	return fading.ApplyMove(that.state, index, player)
}
