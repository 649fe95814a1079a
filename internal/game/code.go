package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// RoomCodeChars are the characters room codes are drawn from
const RoomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultRoomCodeLength matches the short codes players type on their phones
const DefaultRoomCodeLength = 4

// GenerateRoomCode creates a random room code of length n
func GenerateRoomCode(n int) (string, error) {
	code := make([]byte, n)
	max := big.NewInt(int64(len(RoomCodeChars)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		code[i] = RoomCodeChars[idx.Int64()]
	}
	return string(code), nil
}

// NormalizeRoomCode cleans up a typed code so "ab1z " finds room AB1Z
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRoomCode reports whether code could have come from GenerateRoomCode
func ValidRoomCode(code string) bool {
	if code == "" {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeChars, c) {
			return false
		}
	}
	return true
}
