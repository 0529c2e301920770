// Package fading holds the pure game rules: move application with the
// vanishing-piece eviction, label cycling and win detection. Nothing here
// performs I/O; callers own the state and decide when to persist or send it.
package fading

import (
	"fmt"

	"github.com/spectralgames/fading-tictactoe-backend/internal/apperror"
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
)

// ApplyMove places a piece for the player at the given board index.
//
// When the player already has Size live pieces, their oldest piece is
// displaced by the newest one. The new piece takes the player's next label,
// cycling through 1..Size. After placement the board is scanned for a win;
// on a win the turn is frozen, otherwise it passes to the opponent.
//
// Once validation passes the move cannot fail; an error always means the
// state was left untouched.
func ApplyMove(state *entity.GameState, index int, player entity.PlayerID) error {
	if err := validateMove(state, index, player); err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	if state.QueueLen(player) >= state.Size {
		state.EvictOldest(player)
	}

	state.PlacePiece(index, player)

	if win := CheckWin(state.Board, state.Size); win != nil {
		state.Win = win
		return nil
	}

	state.ToggleTurn()

	return nil
}

func validateMove(state *entity.GameState, index int, player entity.PlayerID) error {
	if !player.Valid() {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPlayer, player)
	}

	if state.IsFinished() {
		return apperror.ErrGameFinished
	}

	if !state.InBounds(index) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidCell, index)
	}

	if !state.Board[index].IsEmpty() {
		return apperror.ErrCellOccupied
	}

	return nil
}
