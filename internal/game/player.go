package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Player represents a player in the room
type Player struct {
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player
func NewPlayer(name string, isHost bool, now time.Time) Player {
	return Player{
		Name:     name,
		IsHost:   isHost,
		JoinedAt: now,
	}
}

// ValidateName checks a self-asserted display name against the room rules.
// Names are case-sensitive and may not collide with the skip sentinel.
func ValidateName(name string, rules Rules) error {
	if strings.TrimSpace(name) != name || name == "" {
		return fmt.Errorf("%w: name must be non-empty without surrounding spaces", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(name); n > rules.MaxNameLength {
		return fmt.Errorf("%w: name is %d characters, maximum is %d", ErrInvalidName, n, rules.MaxNameLength)
	}
	if name == Skip {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, Skip)
	}
	return nil
}
