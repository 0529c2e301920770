package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spectralgames/fading-tictactoe-backend/internal/apperror"
	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
	"github.com/spectralgames/fading-tictactoe-backend/internal/protocol"
)

// actionRelay carries one opaque peer-to-peer protocol message; the server
// forwards it to the other room participant in arrival order.
const actionRelay = "game:message"

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.rooms.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)

		return that.sendErrorResponse(bufrw, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, bufrw)

	payloadResp := Payload{
		Player: player,
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleJoinRoom")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "player is required")
	}

	if payloadReq.Room == nil || payloadReq.Room.Name == "" {
		log.Error("room is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "room name is required")
	}

	that.registerConnection(payloadReq.Player.ID, bufrw)

	room, player, err := that.rooms.JoinRoom(ctx, payloadReq.Room.Name, payloadReq.Room.Passphrase, payloadReq.Player.ID)
	if errors.Is(err, apperror.ErrRoomFull) {
		return that.sendErrorResponse(bufrw, msg.Action, "room already has two participants")
	}

	if err != nil {
		log.Error("failed to join room", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to join room")
	}

	log = log.With("token", room.Token)

	payloadResp := Payload{
		Player: player,
		Room:   roomReply(room, player),
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	that.notifyOpponent(room, player.ID, msg.Action)

	log.Info("player joined room", "playerID", player.ID, "role", payloadResp.Room.Role)

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleLeaveRoom")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("player is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "player is required")
	}

	room, err := that.rooms.LeaveRoom(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave room", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to leave room")
	}

	that.notifyOpponent(room, payloadReq.Player.ID, msg.Action)

	log.Info("player left room", "playerID", payloadReq.Player.ID, "token", room.Token)

	return nil
}

// handleRelay forwards one peer protocol message to the other participant.
// A missing opponent connection is not an error: sends are fire-and-forget
// and the authority re-syncs the follower on its next sync request.
func (that *Server) handleRelay(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleRelay")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || len(payloadReq.Data) == 0 {
		log.Error("player or data is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "player and data are required")
	}

	room, player, err := that.rooms.GetRoomByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to find room", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "not in a room")
	}

	if peerMessage, decodeErr := protocol.Decode(payloadReq.Data); decodeErr == nil {
		if err = that.rooms.RecordRelayedState(ctx, room.Token, peerMessage); err != nil {
			log.Error("failed to record relayed state", "error", err)
		}
	}

	opponentID, ok := room.Opponent(player.ID)
	if !ok {
		log.Info("no opponent in room yet", "token", room.Token)
		return nil
	}

	conn, ok := that.connectionFor(opponentID)
	if !ok {
		log.Info("opponent connection not found", "playerID", opponentID)
		return nil
	}

	payloadResp := Payload{
		Data: payloadReq.Data,
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		log.Error("failed to forward message", "error", err)
	}

	return nil
}

// notifyOpponent tells the other room participant about a membership change.
func (that *Server) notifyOpponent(room *entity.Room, playerID, action string) {
	log := that.logger.With("method", "notifyOpponent")

	opponentID, ok := room.Opponent(playerID)
	if !ok {
		return
	}

	conn, ok := that.connectionFor(opponentID)
	if !ok {
		log.Info("opponent connection not found", "playerID", opponentID)
		return
	}

	payload := Payload{
		Room: &RoomPayload{
			Token:     room.Token,
			Occupants: len(room.Players),
		},
	}

	if err := that.sendMessage(conn, action, payload); err != nil {
		log.Error("failed to notify opponent", "error", err)
	}
}

func roomReply(room *entity.Room, player *entity.Player) *RoomPayload {
	role := protocol.RoleFollower
	if player.IsAuthority() {
		role = protocol.RoleAuthority
	}

	return &RoomPayload{
		Token:     room.Token,
		Role:      role.String(),
		Occupants: len(room.Players),
	}
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(bufrw, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
