package game

import (
	"maps"
	"slices"
	"time"
)

// Status represents the current phase of a room
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusVoting   Status = "voting"
	StatusFinished Status = "finished"
)

// Skip is the vote target meaning "eject nobody"
const Skip = "SKIP"

// Outcome is derived from a finished room, never stored
type Outcome string

const (
	OutcomePending     Outcome = "pending"
	OutcomeGroupWins   Outcome = "group"
	OutcomeImposterWin Outcome = "imposter"
)

// TurnRef identifies one turn: which game in the room, the round being played
// and the index into the turn order
type TurnRef struct {
	Game  int `json:"game"`
	Round int `json:"round"`
	Index int `json:"index"`
}

// Before reports whether t was played earlier than o
func (t TurnRef) Before(o TurnRef) bool {
	if t.Game != o.Game {
		return t.Game < o.Game
	}
	if t.Round != o.Round {
		return t.Round < o.Round
	}
	return t.Index < o.Index
}

// Room is the shared session document. It is created once and mutated in place
// for its whole life; every mutation goes through a transition in this package.
type Room struct {
	Code    string   `json:"code"`
	Status  Status   `json:"status"`
	Players []Player `json:"players"`

	// Round fields, produced at lobby -> playing and wiped at finished -> lobby
	Word             string            `json:"word,omitempty"`
	Hint             string            `json:"hint,omitempty"`
	ImposterName     string            `json:"imposterName,omitempty"`
	TurnOrder        []string          `json:"turnOrder,omitempty"`
	CurrentTurnIndex int               `json:"currentTurnIndex"`
	TurnDeadline     time.Time         `json:"turnDeadline"`
	Round            int               `json:"round"`
	Votes            map[string]string `json:"votes"`
	VotedOut         string            `json:"votedOut,omitempty"`

	// Game counts the games started in this room and survives return to lobby
	Game int `json:"game"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is bumped by the store on every successful write
	Version int64 `json:"version"`
}

// NewRoom creates a lobby room whose only player is the host
func NewRoom(code, hostName string, now time.Time) Room {
	return Room{
		Code:   code,
		Status: StatusLobby,
		Players: []Player{
			NewPlayer(hostName, true, now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the room
func (r Room) Clone() Room {
	c := r
	c.Players = slices.Clone(r.Players)
	c.TurnOrder = slices.Clone(r.TurnOrder)
	if r.Votes != nil {
		c.Votes = maps.Clone(r.Votes)
	}
	return c
}

// GetPlayer retrieves a player by name
func (r Room) GetPlayer(name string) (Player, bool) {
	for _, p := range r.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// HasPlayer reports whether name is currently in the room
func (r Room) HasPlayer(name string) bool {
	_, ok := r.GetPlayer(name)
	return ok
}

// Host returns the room creator
func (r Room) Host() (Player, bool) {
	for _, p := range r.Players {
		if p.IsHost {
			return p, true
		}
	}
	return Player{}, false
}

// IsHost reports whether name belongs to the host
func (r Room) IsHost(name string) bool {
	p, ok := r.GetPlayer(name)
	return ok && p.IsHost
}

// PlayerNames returns the player names in join order
func (r Room) PlayerNames() []string {
	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
	}
	return names
}

// ActivePlayer returns whose turn it is, or "" outside of play
func (r Room) ActivePlayer() string {
	if r.Status != StatusPlaying {
		return ""
	}
	if r.CurrentTurnIndex < 0 || r.CurrentTurnIndex >= len(r.TurnOrder) {
		return ""
	}
	return r.TurnOrder[r.CurrentTurnIndex]
}

// Turn returns the turn currently being played
func (r Room) Turn() TurnRef {
	return TurnRef{Game: r.Game, Round: r.Round, Index: r.CurrentTurnIndex}
}

// DeadlinePassed reports whether the active turn has expired at now
func (r Room) DeadlinePassed(now time.Time) bool {
	return r.Status == StatusPlaying && !r.TurnDeadline.IsZero() && !now.Before(r.TurnDeadline)
}

// QuorumReached reports whether every player has voted
func (r Room) QuorumReached() bool {
	return r.Status == StatusVoting && len(r.Players) > 0 && len(r.Votes) == len(r.Players)
}

// Outcome derives who won from the stored (imposter, votedOut) pair
func (r Room) Outcome() Outcome {
	if r.Status != StatusFinished || r.VotedOut == "" {
		return OutcomePending
	}
	if r.VotedOut == r.ImposterName {
		return OutcomeGroupWins
	}
	return OutcomeImposterWin
}
