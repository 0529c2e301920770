package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.MatchResult) error
	ListByRoomToken(ctx context.Context, token string) ([]*entity.MatchResult, error)
}

type dbResult struct {
	connection *sql.DB
}

func NewResultRepository(connection *sql.DB) ResultRepository {
	return &dbResult{
		connection: connection,
	}
}

func (that *dbResult) Save(ctx context.Context, result *entity.MatchResult) error {
	lineJSON, err := json.Marshal(result.Line)
	if err != nil {
		return fmt.Errorf("failed to marshal line: %w", err)
	}

	query := `INSERT INTO match_results (room_token, winner, board_size, line, finished_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = that.connection.ExecContext(ctx, query,
		result.RoomToken, int(result.Winner), result.BoardSize, string(lineJSON), result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}

	return nil
}

func (that *dbResult) ListByRoomToken(ctx context.Context, token string) ([]*entity.MatchResult, error) {
	query := `SELECT room_token, winner, board_size, line, finished_at
		FROM match_results WHERE room_token = ? ORDER BY finished_at`

	rows, err := that.connection.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	var results []*entity.MatchResult

	for rows.Next() {
		var result entity.MatchResult
		var winner int
		var lineJSON string

		if err = rows.Scan(&result.RoomToken, &winner, &result.BoardSize, &lineJSON, &result.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}

		result.Winner = entity.PlayerID(winner)
		if err = json.Unmarshal([]byte(lineJSON), &result.Line); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}

		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match results: %w", err)
	}

	return results, nil
}
