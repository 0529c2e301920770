package entity

import "time"

// MatchResult is the durable record of a finished match.
type MatchResult struct {
	RoomToken  string    `json:"room_token"`
	Winner     PlayerID  `json:"winner"`
	BoardSize  int       `json:"board_size"`
	Line       []int     `json:"line"`
	FinishedAt time.Time `json:"finished_at"`
}
