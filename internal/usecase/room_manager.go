package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spectralgames/fading-tictactoe-backend/internal/apperror"
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
	"github.com/spectralgames/fading-tictactoe-backend/internal/pkg"
	"github.com/spectralgames/fading-tictactoe-backend/internal/protocol"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByToken(ctx context.Context, token string) (*entity.Room, error)
	DeleteByToken(ctx context.Context, token string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.MatchResult) error
}

// RoomManager pairs participants into rooms and keeps the relay's
// bookkeeping: who sits where, the last snapshot that passed through, and
// the durable record of finished matches.
type RoomManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	roomRepo   roomRepo
	resultRepo resultRepo
}

func NewRoomManager(logger *slog.Logger, playerRepo playerRepo, roomRepo roomRepo, resultRepo resultRepo) *RoomManager {
	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		playerRepo: playerRepo,
		roomRepo:   roomRepo,
		resultRepo: resultRepo,
	}
}

// GetOrCreatePlayer returns the stored participant, or registers a fresh one
// when the id is empty or unknown.
func (that *RoomManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *RoomManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateNewSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// JoinRoom puts the player into the room derived from name+passphrase.
// The joiner takes the lowest free seat, so the first participant sits at
// seat one and becomes the authority; a third participant is rejected.
// Rejoining the same room is idempotent.
func (that *RoomManager) JoinRoom(ctx context.Context, name, passphrase, playerID string) (*entity.Room, *entity.Player, error) {
	token := pkg.DeriveRoomToken(name, passphrase)

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	room, err := that.roomRepo.GetByToken(ctx, token)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		room = &entity.Room{Token: token}
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to get room by token: %w", err)
	}

	if room.HasPlayer(player.ID) {
		return room, player, nil
	}

	if room.IsFull() {
		return nil, nil, fmt.Errorf("%w: token %s", apperror.ErrRoomFull, token)
	}

	seat, err := that.freeSeat(ctx, room)
	if err != nil {
		return nil, nil, err
	}

	player.RoomToken = token
	player.Seat = seat

	room.Players = append(room.Players, player.ID)

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("player joined room", "playerID", player.ID, "token", token, "seat", player.Seat)

	return room, player, nil
}

// freeSeat picks the lowest seat no current occupant holds. A room whose
// seat-one participant left hands seat one, and authority, to the next joiner.
func (that *RoomManager) freeSeat(ctx context.Context, room *entity.Room) (entity.PlayerID, error) {
	taken := make(map[entity.PlayerID]bool, len(room.Players))
	for _, id := range room.Players {
		occupant, err := that.playerRepo.GetByID(ctx, id)
		if err != nil {
			return entity.NoPlayer, fmt.Errorf("failed to get player by id: %w", err)
		}
		taken[occupant.Seat] = true
	}

	if !taken[entity.PlayerOne] {
		return entity.PlayerOne, nil
	}

	return entity.PlayerTwo, nil
}

// LeaveRoom detaches the player; the room is dropped once empty.
func (that *RoomManager) LeaveRoom(ctx context.Context, playerID string) (*entity.Room, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if !player.InRoom() {
		return nil, apperror.ErrRoomNotFound
	}

	room, err := that.roomRepo.GetByToken(ctx, player.RoomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get room by token: %w", err)
	}

	remaining := make([]string, 0, len(room.Players))
	for _, id := range room.Players {
		if id != player.ID {
			remaining = append(remaining, id)
		}
	}
	room.Players = remaining

	player.RoomToken = ""
	player.Seat = entity.NoPlayer
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if len(room.Players) == 0 {
		if err = that.roomRepo.DeleteByToken(ctx, room.Token); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		return room, nil
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

// GetRoomByPlayerID resolves the room the player currently occupies.
func (that *RoomManager) GetRoomByPlayerID(ctx context.Context, playerID string) (*entity.Room, *entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if !player.InRoom() {
		return nil, nil, apperror.ErrRoomNotFound
	}

	room, err := that.roomRepo.GetByToken(ctx, player.RoomToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get room by token: %w", err)
	}

	return room, player, nil
}

// RecordRelayedState inspects a message passing through the relay. State
// snapshots are cached on the room, and a snapshot carrying a winner is
// written to the results store. Non-state messages are forwarded untouched.
func (that *RoomManager) RecordRelayedState(ctx context.Context, token string, message protocol.Message) error {
	if message.Type != protocol.TypeState || message.Payload == nil {
		return nil
	}

	room, err := that.roomRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to get room by token: %w", err)
	}

	finished := message.Payload.IsFinished() && (room.Snapshot == nil || !room.Snapshot.IsFinished())

	room.Snapshot = message.Payload
	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}

	if !finished {
		return nil
	}

	result := &entity.MatchResult{
		RoomToken:  token,
		Winner:     message.Payload.Win.Winner,
		BoardSize:  message.Payload.Size,
		Line:       message.Payload.Win.Line,
		FinishedAt: time.Now().UTC(),
	}

	if err = that.resultRepo.Save(ctx, result); err != nil {
		return fmt.Errorf("failed to save match result: %w", err)
	}

	that.logger.Info("match finished", "token", token, "winner", result.Winner)

	return nil
}
