package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrInvalidPlayer = errors.New("invalid player id")
	ErrNotAuthority  = errors.New("only the authority peer may do this")
	ErrRoomFull      = errors.New("room already has two participants")
	ErrRoomNotFound  = errors.New("room not found")
)
