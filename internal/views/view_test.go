package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imposter/internal/game"
	"imposter/internal/testhelpers"
)

func TestRedactLobby(t *testing.T) {
	rules := game.DefaultRules()
	room := testhelpers.Room("AB12", game.StatusLobby, "Ana", "Bo", "Cy")

	t.Run("host can start with enough players", func(t *testing.T) {
		v := Redact(room, "Ana", rules, testhelpers.Now)
		assert.True(t, v.IsMember)
		assert.True(t, v.IsHost)
		assert.True(t, v.CanStart)
		require.Len(t, v.Players, 3)
		assert.True(t, v.Players[0].IsYou)
		assert.True(t, v.Players[0].IsHost)
	})

	t.Run("guests cannot start", func(t *testing.T) {
		v := Redact(room, "Bo", rules, testhelpers.Now)
		assert.True(t, v.IsMember)
		assert.False(t, v.IsHost)
		assert.False(t, v.CanStart)
	})

	t.Run("host needs the minimum", func(t *testing.T) {
		small := testhelpers.Room("AB12", game.StatusLobby, "Ana", "Bo")
		v := Redact(small, "Ana", rules, testhelpers.Now)
		assert.False(t, v.CanStart)
	})

	t.Run("unknown viewer is a spectator", func(t *testing.T) {
		v := Redact(room, "Zed", rules, testhelpers.Now)
		assert.False(t, v.IsMember)
		assert.Empty(t, v.You)
		for _, p := range v.Players {
			assert.False(t, p.IsYou)
		}
	})
}

func TestRedactSecrets(t *testing.T) {
	rules := game.DefaultRules()
	room := testhelpers.Room("AB12", game.StatusPlaying, "Ana", "Bo", "Cy")

	tests := []struct {
		viewer     string
		word, hint string
		imposter   bool
	}{
		{"Ana", "Pizza", "", false},
		{"Bo", "Pizza", "", false},
		{"Cy", "", "Italian", true},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run("viewer "+tt.viewer, func(t *testing.T) {
			v := Redact(room, tt.viewer, rules, testhelpers.Now)
			assert.Equal(t, tt.word, v.Word)
			assert.Equal(t, tt.hint, v.Hint)
			assert.Equal(t, tt.imposter, v.IsImposter)
			assert.Empty(t, v.ImposterName)
		})
	}
}

func TestRedactTurn(t *testing.T) {
	rules := game.DefaultRules()
	room := testhelpers.Room("AB12", game.StatusPlaying, "Ana", "Bo", "Cy")
	room.CurrentTurnIndex = 1

	v := Redact(room, "Bo", rules, testhelpers.Now.Add(10*time.Second+time.Millisecond))
	assert.Equal(t, "Bo", v.ActivePlayer)
	assert.True(t, v.IsYourTurn)
	assert.Equal(t, game.TurnRef{Game: 1, Round: 1, Index: 1}, v.Turn)
	assert.Equal(t, 20, v.SecondsLeft, "partial seconds round up")
	require.NotNil(t, v.TurnDeadline)
	assert.Equal(t, room.TurnDeadline, *v.TurnDeadline)

	v = Redact(room, "Ana", rules, testhelpers.Now.Add(time.Minute))
	assert.False(t, v.IsYourTurn)
	assert.Zero(t, v.SecondsLeft)
}

func TestRedactVotes(t *testing.T) {
	rules := game.DefaultRules()
	room := testhelpers.Room("AB12", game.StatusVoting, "Ana", "Bo", "Cy")
	room.Votes = map[string]string{"Ana": "Cy", "Bo": game.Skip}

	v := Redact(room, "Ana", rules, testhelpers.Now)
	assert.Equal(t, 2, v.VotesCast)
	assert.Equal(t, "Cy", v.YourVote)
	assert.Nil(t, v.Tally)

	byName := map[string]PlayerView{}
	for _, p := range v.Players {
		byName[p.Name] = p
	}
	assert.Equal(t, "Cy", byName["Ana"].Vote, "own vote is visible")
	assert.True(t, byName["Bo"].HasVoted)
	assert.Empty(t, byName["Bo"].Vote, "other votes stay hidden")
	assert.False(t, byName["Cy"].HasVoted)
}

func TestRedactFinished(t *testing.T) {
	rules := game.DefaultRules()
	room := testhelpers.Finished("AB12", "Cy", "Ana", "Bo", "Cy")

	v := Redact(room, "", rules, testhelpers.Now)
	assert.Equal(t, "Cy", v.ImposterName)
	assert.Equal(t, "Pizza", v.Word)
	assert.Equal(t, "Italian", v.Hint)
	assert.Equal(t, game.OutcomeGroupWins, v.Outcome)
	require.NotNil(t, v.Tally)
	assert.Equal(t, 2, v.Tally.Counts["Cy"])
	for _, p := range v.Players {
		assert.NotEmpty(t, p.Vote)
	}
}

func TestViewJSONOmitsSecrets(t *testing.T) {
	room := testhelpers.Room("AB12", game.StatusPlaying, "Ana", "Bo", "Cy")

	data, err := json.Marshal(Redact(room, "Cy", game.DefaultRules(), testhelpers.Now))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Pizza")
	assert.Contains(t, string(data), `"hint":"Italian"`)

	data, err = json.Marshal(Redact(room, "Ana", game.DefaultRules(), testhelpers.Now))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Italian")
	assert.NotContains(t, string(data), "imposterName")
}

func TestViewJSONDeadlineOnlyWhilePlaying(t *testing.T) {
	for _, status := range []game.Status{game.StatusLobby, game.StatusVoting, game.StatusFinished} {
		room := testhelpers.Room("AB12", status, "Ana", "Bo", "Cy")
		data, err := json.Marshal(Redact(room, "Ana", game.DefaultRules(), testhelpers.Now))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "turnDeadline", status)
	}

	room := testhelpers.Room("AB12", game.StatusPlaying, "Ana", "Bo", "Cy")
	data, err := json.Marshal(Redact(room, "Ana", game.DefaultRules(), testhelpers.Now))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"turnDeadline":"2025-06-01T20:00:30Z"`)
}
