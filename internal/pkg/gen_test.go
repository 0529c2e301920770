package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRoomToken(t *testing.T) {
	t.Run("Deterministic for the same name and passphrase", func(t *testing.T) {
		assert.Equal(t, DeriveRoomToken("attic", "hunter2"), DeriveRoomToken("attic", "hunter2"))
	})

	t.Run("Fixed length", func(t *testing.T) {
		assert.Len(t, DeriveRoomToken("attic", "hunter2"), roomTokenLength)
		assert.Len(t, DeriveRoomToken("", ""), roomTokenLength)
	})

	t.Run("Differs when either input differs", func(t *testing.T) {
		token := DeriveRoomToken("attic", "hunter2")

		assert.NotEqual(t, token, DeriveRoomToken("attic", "hunter3"))
		assert.NotEqual(t, token, DeriveRoomToken("cellar", "hunter2"))
	})
}

func TestGenerateNewSessionID(t *testing.T) {
	// two draws must not collide
	assert.NotEqual(t, GenerateNewSessionID(), GenerateNewSessionID())
}

func TestGenerateAcceptKey(t *testing.T) {
	// known-answer pair from RFC 6455 section 1.3
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", GenerateAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}
