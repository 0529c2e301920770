package pkg

import (
	"crypto/rand"
	"crypto/sha1" //nolint: gosec // RFC 6455 requires SHA-1 for the handshake
	"crypto/sha256"
	"encoding/base64"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const roomTokenLength = 16

// GenerateAcceptKey - generates key for WebSocket handshake.
func GenerateAcceptKey(key string) string {
	h := sha1.New() //nolint: gosec // see import comment

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-session-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// DeriveRoomToken - derives the rendezvous token for a room from its name
// and passphrase. Deterministic and one-way; both participants compute the
// same token without ever sending the passphrase over the wire.
func DeriveRoomToken(name, passphrase string) string {
	h := sha256.Sum256([]byte(name + ":" + passphrase))

	return base64.RawURLEncoding.EncodeToString(h[:])[:roomTokenLength]
}
