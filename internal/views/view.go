package views

import (
	"time"

	"imposter/internal/game"
)

// PlayerView is one seat as a particular viewer sees it
type PlayerView struct {
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	IsYou    bool   `json:"isYou"`
	HasVoted bool   `json:"hasVoted"`
	Vote     string `json:"vote,omitempty"`
}

// View is a room redacted for one viewer. The imposter never sees the word,
// nobody else sees the hint, and who the imposter was and who voted for whom
// stay hidden until the round is finished.
type View struct {
	Code     string      `json:"code"`
	Status   game.Status `json:"status"`
	You      string      `json:"you,omitempty"`
	IsMember bool        `json:"isMember"`
	IsHost   bool        `json:"isHost"`

	Players    []PlayerView `json:"players"`
	MinPlayers int          `json:"minPlayers"`
	MaxPlayers int          `json:"maxPlayers"`
	CanStart   bool         `json:"canStart"`

	IsImposter   bool   `json:"isImposter"`
	Word         string `json:"word,omitempty"`
	Hint         string `json:"hint,omitempty"`
	ImposterName string `json:"imposterName,omitempty"`

	Round        int          `json:"round"`
	Turn         game.TurnRef `json:"turn"`
	TurnOrder    []string     `json:"turnOrder,omitempty"`
	ActivePlayer string       `json:"activePlayer,omitempty"`
	IsYourTurn   bool         `json:"isYourTurn"`
	TurnDeadline *time.Time   `json:"turnDeadline,omitempty"`
	SecondsLeft  int          `json:"secondsLeft"`

	VotesCast int          `json:"votesCast"`
	YourVote  string       `json:"yourVote,omitempty"`
	Tally     *game.Tally  `json:"tally,omitempty"`
	VotedOut  string       `json:"votedOut,omitempty"`
	Outcome   game.Outcome `json:"outcome"`

	Version int64 `json:"version"`
}

// Redact builds what viewer is allowed to see of room at now. An empty or
// unknown viewer gets the spectator view.
func Redact(room game.Room, viewer string, rules game.Rules, now time.Time) View {
	v := View{
		Code:       room.Code,
		Status:     room.Status,
		MinPlayers: rules.MinPlayers,
		MaxPlayers: rules.MaxPlayers,
		Round:      room.Round,
		Turn:       room.Turn(),
		TurnOrder:  room.TurnOrder,
		VotesCast:  len(room.Votes),
		VotedOut:   room.VotedOut,
		Outcome:    room.Outcome(),
		Version:    room.Version,
	}
	if room.HasPlayer(viewer) {
		v.You = viewer
		v.IsMember = true
		v.IsHost = room.IsHost(viewer)
	}

	finished := room.Status == game.StatusFinished
	for _, p := range room.Players {
		pv := PlayerView{
			Name:   p.Name,
			IsHost: p.IsHost,
			IsYou:  v.IsMember && p.Name == viewer,
		}
		vote, voted := room.Votes[p.Name]
		pv.HasVoted = voted
		if finished || pv.IsYou {
			pv.Vote = vote
		}
		v.Players = append(v.Players, pv)
	}
	v.CanStart = v.IsHost && room.Status == game.StatusLobby && len(room.Players) >= rules.MinPlayers

	if room.Status != game.StatusLobby && v.IsMember {
		v.IsImposter = room.ImposterName == viewer
		if v.IsImposter {
			v.Hint = room.Hint
		} else {
			v.Word = room.Word
		}
	}
	if v.IsMember {
		v.YourVote = room.Votes[viewer]
	}

	if room.Status == game.StatusPlaying {
		v.ActivePlayer = room.ActivePlayer()
		v.IsYourTurn = v.IsMember && v.ActivePlayer == viewer
		deadline := room.TurnDeadline
		v.TurnDeadline = &deadline
		if left := room.TurnDeadline.Sub(now); left > 0 {
			v.SecondsLeft = int((left + time.Second - 1) / time.Second)
		}
	}

	if finished {
		v.ImposterName = room.ImposterName
		v.Word = room.Word
		v.Hint = room.Hint
		t := game.CountVotes(room.Votes)
		v.Tally = &t
	}
	return v
}
