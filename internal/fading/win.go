package fading

import "github.com/spectralgames/fading-tictactoe-backend/internal/entity"

// CheckWin scans the board for a full line owned by a single player and
// returns the first one found, or nil.
//
// Lines are tried in a fixed order: row 0, column 0, row 1, column 1, ...,
// then the main diagonal, then the anti-diagonal, 2n+2 candidates total. The
// order only decides which line gets reported; after a single move at most
// one distinct winner can exist. Labels never matter here.
func CheckWin(board []entity.Cell, size int) *entity.WinResult {
	for i := 0; i < size; i++ {
		if win := scanLine(board, rowLine(i, size)); win != nil {
			return win
		}
		if win := scanLine(board, colLine(i, size)); win != nil {
			return win
		}
	}

	if win := scanLine(board, mainDiagonal(size)); win != nil {
		return win
	}

	return scanLine(board, antiDiagonal(size))
}

// scanLine reports a win if every cell on the line is occupied by one owner.
func scanLine(board []entity.Cell, line []int) *entity.WinResult {
	owner := board[line[0]].Owner
	if owner == entity.NoPlayer {
		return nil
	}

	for _, index := range line[1:] {
		if board[index].Owner != owner {
			return nil
		}
	}

	return &entity.WinResult{Winner: owner, Line: line}
}

func rowLine(row, size int) []int {
	line := make([]int, size)
	for col := 0; col < size; col++ {
		line[col] = entity.Index(row, col, size)
	}
	return line
}

func colLine(col, size int) []int {
	line := make([]int, size)
	for row := 0; row < size; row++ {
		line[row] = entity.Index(row, col, size)
	}
	return line
}

func mainDiagonal(size int) []int {
	line := make([]int, size)
	for i := 0; i < size; i++ {
		line[i] = entity.Index(i, i, size)
	}
	return line
}

func antiDiagonal(size int) []int {
	line := make([]int, size)
	for i := 0; i < size; i++ {
		line[i] = entity.Index(i, size-1-i, size)
	}
	return line
}
