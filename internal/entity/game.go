package entity

// MinBoardSize is the smallest playable grid; Reset raises smaller sizes
// to it. Every rule below works for any n >= MinBoardSize.
const MinBoardSize = 3

type PlayerID int

const (
	NoPlayer  PlayerID = 0
	PlayerOne PlayerID = 1
	PlayerTwo PlayerID = 2
)

func (that PlayerID) Valid() bool {
	return that == PlayerOne || that == PlayerTwo
}

func (that PlayerID) Opponent() PlayerID {
	if that == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Cell is one board square. Owner == NoPlayer means the square is empty;
// Label is the cosmetic 1..n number printed on the piece.
type Cell struct {
	Owner PlayerID `json:"owner"`
	Label int      `json:"label,omitempty"`
}

func (that Cell) IsEmpty() bool {
	return that.Owner == NoPlayer
}

// WinResult names the winner and the completed line, in enumeration order.
type WinResult struct {
	Winner PlayerID `json:"winner"`
	Line   []int    `json:"line"`
}

// GameState is the complete state of one match. It is the unit of
// synchronization: a snapshot of it fully reconstructs a peer's view.
//
// Queues and LabelCounters are indexed by PlayerID-1. Each queue holds the
// board indices of that player's live pieces, oldest first, and never grows
// past Size: placing a piece at capacity evicts the oldest one.
type GameState struct {
	Size          int        `json:"size"`
	Board         []Cell     `json:"board"`
	Turn          PlayerID   `json:"turn"`
	Queues        [2][]int   `json:"queues"`
	LabelCounters [2]int     `json:"label_counters"`
	Win           *WinResult `json:"win,omitempty"`
}

func NewGameState(size int) *GameState {
	state := &GameState{}
	state.Reset(size)

	return state
}

// Reset reinitializes to the empty state for the given board size:
// player one to move, label counters back to 1, no winner.
func (that *GameState) Reset(size int) {
	if size < MinBoardSize {
		size = MinBoardSize
	}

	that.Size = size
	that.Board = make([]Cell, size*size)
	that.Turn = PlayerOne
	that.Queues = [2][]int{make([]int, 0, size), make([]int, 0, size)}
	that.LabelCounters = [2]int{1, 1}
	that.Win = nil
}

// Clone returns a deep, self-contained copy suitable for transmission.
func (that *GameState) Clone() *GameState {
	cloned := &GameState{
		Size:          that.Size,
		Board:         make([]Cell, len(that.Board)),
		Turn:          that.Turn,
		LabelCounters: that.LabelCounters,
	}
	copy(cloned.Board, that.Board)

	for i := range that.Queues {
		queue := make([]int, len(that.Queues[i]))
		copy(queue, that.Queues[i])
		cloned.Queues[i] = queue
	}

	if that.Win != nil {
		line := make([]int, len(that.Win.Line))
		copy(line, that.Win.Line)
		cloned.Win = &WinResult{Winner: that.Win.Winner, Line: line}
	}

	return cloned
}

func (that *GameState) InBounds(index int) bool {
	return index >= 0 && index < len(that.Board)
}

func (that *GameState) IsFinished() bool {
	return that.Win != nil
}

func (that *GameState) QueueLen(player PlayerID) int {
	return len(that.Queues[player-1])
}

// EvictOldest removes the player's oldest live piece from the board and from
// their queue, returning the freed index.
func (that *GameState) EvictOldest(player PlayerID) int {
	queue := that.Queues[player-1]
	oldest := queue[0]

	that.Queues[player-1] = queue[1:]
	that.Board[oldest] = Cell{}

	return oldest
}

// PlacePiece puts a new piece for the player at index, consuming the next
// label and cycling the counter through 1..Size. Returns the assigned label.
func (that *GameState) PlacePiece(index int, player PlayerID) int {
	label := that.LabelCounters[player-1]
	if label >= that.Size {
		that.LabelCounters[player-1] = 1
	} else {
		that.LabelCounters[player-1] = label + 1
	}

	that.Board[index] = Cell{Owner: player, Label: label}
	that.Queues[player-1] = append(that.Queues[player-1], index)

	return label
}

func (that *GameState) ToggleTurn() {
	that.Turn = that.Turn.Opponent()
}

// RowCol converts a flat board index to grid coordinates.
func RowCol(index, size int) (int, int) {
	return index / size, index % size
}

// Index converts grid coordinates to a flat board index.
func Index(row, col, size int) int {
	return row*size + col
}
