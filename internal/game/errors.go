package game

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNameTaken          = errors.New("a player with that name already exists in the room")
	ErrNotHost            = errors.New("only the host can do that")
	ErrInvalidPhase       = errors.New("action not allowed in the current phase")
	ErrPreconditionFailed = errors.New("room changed before the update was applied")
	ErrCreationConflict   = errors.New("room code already in use")

	ErrInvalidName      = errors.New("invalid player name")
	ErrNotInRoom        = errors.New("player is not in this room")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNoWords          = errors.New("word list is empty")

	// Stale-view refinements, still reported as a lost race
	ErrNotYourTurn      = fmt.Errorf("%w: not your turn", ErrPreconditionFailed)
	ErrTurnNotExpired   = fmt.Errorf("%w: turn has not expired", ErrPreconditionFailed)
	ErrQuorumNotReached = fmt.Errorf("%w: not every player has voted", ErrPreconditionFailed)
)

// kinds is ordered most specific first
var kinds = []struct {
	err  error
	name string
}{
	{ErrNotYourTurn, "NotYourTurn"},
	{ErrTurnNotExpired, "TurnNotExpired"},
	{ErrQuorumNotReached, "QuorumNotReached"},
	{ErrRoomNotFound, "RoomNotFound"},
	{ErrRoomFull, "RoomFull"},
	{ErrNameTaken, "NameTaken"},
	{ErrNotHost, "NotHost"},
	{ErrInvalidPhase, "InvalidPhase"},
	{ErrPreconditionFailed, "PreconditionFailed"},
	{ErrCreationConflict, "CreationConflict"},
	{ErrInvalidName, "InvalidName"},
	{ErrNotInRoom, "NotInRoom"},
	{ErrInvalidTarget, "InvalidTarget"},
	{ErrNotEnoughPlayers, "NotEnoughPlayers"},
	{ErrNoWords, "NoWords"},
}

// Kind returns the public name of a domain error, or "Internal"
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
