package game

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Every transition checks all of its preconditions against the room it is
// handed before touching a single field. Stores call these inside their atomic
// section, so the room is the current document and never a client's stale copy.

// AddPlayer appends a new non-host player
func AddPlayer(r *Room, name string, rules Rules, now time.Time) error {
	if err := ValidateName(name, rules); err != nil {
		return err
	}
	if r.HasPlayer(name) {
		return ErrNameTaken
	}
	if r.Status != StatusLobby {
		return fmt.Errorf("%w: cannot join while %s", ErrInvalidPhase, r.Status)
	}
	if len(r.Players) >= rules.MaxPlayers {
		return ErrRoomFull
	}

	r.Players = append(r.Players, NewPlayer(name, false, now))
	return nil
}

// RemovePlayer kicks target on behalf of the host
func RemovePlayer(r *Room, acting, target string) error {
	if !r.IsHost(acting) {
		return ErrNotHost
	}
	if r.Status != StatusLobby {
		return fmt.Errorf("%w: cannot kick while %s", ErrInvalidPhase, r.Status)
	}
	p, ok := r.GetPlayer(target)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInRoom, target)
	}
	if p.IsHost {
		return fmt.Errorf("%w: the host cannot be kicked", ErrInvalidTarget)
	}

	r.Players = slices.DeleteFunc(r.Players, func(p Player) bool { return p.Name == target })
	return nil
}

// Start moves a lobby into its first round
func Start(r *Room, acting string, words *WordService, rng Rand, now time.Time, rules Rules) error {
	if !r.IsHost(acting) {
		return ErrNotHost
	}
	if r.Status != StatusLobby {
		return fmt.Errorf("%w: game already %s", ErrInvalidPhase, r.Status)
	}
	if len(r.Players) < rules.MinPlayers {
		return fmt.Errorf("%w: need at least %d players, have %d", ErrNotEnoughPlayers, rules.MinPlayers, len(r.Players))
	}
	if words == nil || words.Len() == 0 {
		return ErrNoWords
	}

	word := words.Pick(rng)
	names := r.PlayerNames()

	r.Word = word.Word
	r.Hint = word.Hint
	r.ImposterName = names[rng.IntN(len(names))]
	r.TurnOrder = shuffled(names, rng)
	r.CurrentTurnIndex = 0
	r.Game++
	r.Round = 1
	r.Votes = map[string]string{}
	r.VotedOut = ""
	r.TurnDeadline = now.Add(rules.TurnDuration)
	r.Status = StatusPlaying
	return nil
}

// Advance is a request to move past the turn identified by From. An explicit
// finish comes from the active player; a timeout may come from any player once
// the stored deadline has passed. Both are the same operation.
type Advance struct {
	By      string
	Timeout bool
	From    TurnRef
}

// AdvanceTurn moves to the next turn, or into voting after the last one.
// Advancing a turn the room has already moved past fails with
// ErrPreconditionFailed, including after the last turn sent it to voting.
func AdvanceTurn(r *Room, adv Advance, now time.Time, rules Rules) error {
	switch r.Status {
	case StatusPlaying:
	case StatusVoting, StatusFinished:
		if !r.Turn().Before(adv.From) {
			return fmt.Errorf("%w: turn %d/%d/%d already advanced, room is %s",
				ErrPreconditionFailed, adv.From.Game, adv.From.Round, adv.From.Index, r.Status)
		}
		return fmt.Errorf("%w: no turn to advance while %s", ErrInvalidPhase, r.Status)
	default:
		return fmt.Errorf("%w: no turn to advance while %s", ErrInvalidPhase, r.Status)
	}
	if !r.HasPlayer(adv.By) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, adv.By)
	}
	if r.Turn() != adv.From {
		return fmt.Errorf("%w: turn %d/%d/%d already advanced, now %d/%d/%d",
			ErrPreconditionFailed, adv.From.Game, adv.From.Round, adv.From.Index, r.Game, r.Round, r.CurrentTurnIndex)
	}
	if adv.Timeout {
		if !r.DeadlinePassed(now) {
			return ErrTurnNotExpired
		}
	} else if r.ActivePlayer() != adv.By {
		return ErrNotYourTurn
	}

	next := r.CurrentTurnIndex + 1
	if next < len(r.TurnOrder) {
		r.CurrentTurnIndex = next
		r.TurnDeadline = now.Add(rules.TurnDuration)
		return nil
	}

	r.Status = StatusVoting
	r.Votes = map[string]string{}
	r.TurnDeadline = time.Time{}
	return nil
}

// CastVote records voter's choice, overwriting only their own previous vote
func CastVote(r *Room, voter, target string) error {
	if r.Status != StatusVoting {
		return fmt.Errorf("%w: voting is not open", ErrInvalidPhase)
	}
	if !r.HasPlayer(voter) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, voter)
	}
	if target == voter {
		return fmt.Errorf("%w: cannot vote for yourself", ErrInvalidTarget)
	}
	if target != Skip && !r.HasPlayer(target) {
		return fmt.Errorf("%w: %s is not in the room", ErrInvalidTarget, target)
	}

	if r.Votes == nil {
		r.Votes = map[string]string{}
	}
	r.Votes[voter] = target
	return nil
}

// Resolve tallies a complete vote. observed is the vote set the caller saw
// reach quorum; if the stored votes differ, or the room already left voting,
// another actor got there first and the call fails with ErrPreconditionFailed.
func Resolve(r *Room, by string, observed map[string]string, rng Rand, now time.Time, rules Rules) (Tally, error) {
	if r.Status != StatusVoting {
		return Tally{}, fmt.Errorf("%w: room is %s", ErrPreconditionFailed, r.Status)
	}
	if !r.HasPlayer(by) {
		return Tally{}, fmt.Errorf("%w: %s", ErrNotInRoom, by)
	}
	if !r.QuorumReached() {
		return Tally{}, ErrQuorumNotReached
	}
	if !maps.Equal(r.Votes, observed) {
		return Tally{}, fmt.Errorf("%w: votes changed", ErrPreconditionFailed)
	}

	t := CountVotes(r.Votes)
	if !t.Conclusive() {
		r.Status = StatusPlaying
		r.Round++
		if rules.ReshuffleOnReplay {
			r.TurnOrder = shuffled(r.TurnOrder, rng)
		}
		r.CurrentTurnIndex = 0
		r.TurnDeadline = now.Add(rules.TurnDuration)
		r.Votes = map[string]string{}
		return t, nil
	}

	r.Status = StatusFinished
	r.VotedOut = t.Candidate
	r.TurnDeadline = time.Time{}
	return t, nil
}

// ReturnToLobby wipes the round so the host can start another
func ReturnToLobby(r *Room, acting string) error {
	if !r.IsHost(acting) {
		return ErrNotHost
	}
	if r.Status != StatusFinished {
		return fmt.Errorf("%w: game is %s", ErrInvalidPhase, r.Status)
	}

	r.Word = ""
	r.Hint = ""
	r.ImposterName = ""
	r.TurnOrder = nil
	r.CurrentTurnIndex = 0
	r.TurnDeadline = time.Time{}
	r.Round = 0
	r.Votes = nil
	r.VotedOut = ""
	r.Status = StatusLobby
	return nil
}
