package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode(DefaultRoomCodeLength)
		require.NoError(t, err)
		assert.Len(t, code, DefaultRoomCodeLength)
		assert.True(t, ValidRoomCode(code), "generated invalid code %q", code)
		seen[code] = true
	}

	// 36^4 codes; a handful of collisions in 100 draws would be suspicious
	assert.Greater(t, len(seen), 90)
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB1Z", NormalizeRoomCode(" ab1z "))
	assert.Equal(t, "AB1Z", NormalizeRoomCode("AB1Z"))
}

func TestValidRoomCode(t *testing.T) {
	assert.True(t, ValidRoomCode("AB12"))
	assert.False(t, ValidRoomCode(""))
	assert.False(t, ValidRoomCode("ab12"))
	assert.False(t, ValidRoomCode("AB-2"))
}
