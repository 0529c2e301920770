package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/spectralgames/fading-tictactoe-backend/internal/entity"
)

// Message types carried between the two peers. Anything else is ignored.
const (
	TypeAttempt     = "attempt"
	TypeState       = "state"
	TypeSyncRequest = "sync_request"
)

// Message is the tagged union exchanged over the channel: an "attempt"
// carries Index, a "state" carries Payload, a "sync_request" carries nothing.
type Message struct {
	Type    string            `json:"type"`
	Index   *int              `json:"index,omitempty"`
	Payload *entity.GameState `json:"payload,omitempty"`
}

func NewAttempt(index int) Message {
	return Message{Type: TypeAttempt, Index: &index}
}

func NewStateSync(snapshot *entity.GameState) Message {
	return Message{Type: TypeState, Payload: snapshot}
}

func NewSyncRequest() Message {
	return Message{Type: TypeSyncRequest}
}

func Decode(raw []byte) (Message, error) {
	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return message, nil
}

func (that Message) Encode() ([]byte, error) {
	raw, err := json.Marshal(that)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return raw, nil
}
