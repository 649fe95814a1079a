package game

import "time"

// Hard limits of the room document. Deployments may tighten them but never
// raise them.
const (
	PlayerLimit     = 5
	NameLengthLimit = 15
)

// Rules are the per-deployment game settings
type Rules struct {
	MinPlayers    int
	MaxPlayers    int
	TurnDuration  time.Duration
	MaxNameLength int

	// ReshuffleOnReplay draws a new turn order when an inconclusive vote sends
	// the room back to playing. When false the round keeps its original order.
	ReshuffleOnReplay bool
}

// DefaultRules returns the standard 3-5 player rules with 30 second turns
func DefaultRules() Rules {
	return Rules{
		MinPlayers:        3,
		MaxPlayers:        PlayerLimit,
		TurnDuration:      30 * time.Second,
		MaxNameLength:     NameLengthLimit,
		ReshuffleOnReplay: true,
	}
}

// Rand is the randomness a round draws from. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// shuffled returns a Fisher-Yates shuffled copy of names
func shuffled(names []string, rng Rand) []string {
	out := make([]string, len(names))
	copy(out, names)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
