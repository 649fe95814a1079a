package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// lastRand always picks the last index, so shuffles keep their input order
// and the imposter is the last player to have joined
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

// firstRand always picks index zero
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func testWords(t *testing.T) *WordService {
	t.Helper()
	ws, err := NewWordService([]byte(`
words:
  - word: Pizza
    hint: Italian
  - word: Beach
    hint: Sand
`))
	require.NoError(t, err)
	return ws
}

// lobbyWith builds a lobby hosted by the first name
func lobbyWith(t *testing.T, names ...string) *Room {
	t.Helper()
	r := NewRoom("AB12", names[0], testNow)
	for _, n := range names[1:] {
		require.NoError(t, AddPlayer(&r, n, DefaultRules(), testNow))
	}
	return &r
}

// startedWith builds a playing room with turn order equal to join order
func startedWith(t *testing.T, names ...string) *Room {
	t.Helper()
	r := lobbyWith(t, names...)
	require.NoError(t, Start(r, names[0], testWords(t), lastRand{}, testNow, DefaultRules()))
	return r
}

// votingWith plays every turn so the room is collecting votes
func votingWith(t *testing.T, names ...string) *Room {
	t.Helper()
	r := startedWith(t, names...)
	for _, n := range r.TurnOrder {
		require.NoError(t, AdvanceTurn(r, Advance{By: n, From: r.Turn()}, testNow, DefaultRules()))
	}
	require.Equal(t, StatusVoting, r.Status)
	return r
}
