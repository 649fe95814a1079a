package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAreDistinct(t *testing.T) {
	errs := []error{
		ErrRoomNotFound, ErrRoomFull, ErrNameTaken, ErrNotHost, ErrInvalidPhase,
		ErrPreconditionFailed, ErrCreationConflict, ErrInvalidName, ErrNotInRoom,
		ErrInvalidTarget, ErrNotEnoughPlayers, ErrNoWords,
	}

	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestStaleViewErrorsArePreconditionFailures(t *testing.T) {
	for _, err := range []error{ErrNotYourTurn, ErrTurnNotExpired, ErrQuorumNotReached} {
		if !errors.Is(err, ErrPreconditionFailed) {
			t.Errorf("%v should wrap ErrPreconditionFailed", err)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRoomNotFound, "RoomNotFound"},
		{fmt.Errorf("join AB12: %w", ErrRoomFull), "RoomFull"},
		{ErrNameTaken, "NameTaken"},
		{ErrNotHost, "NotHost"},
		{fmt.Errorf("%w: voting is not open", ErrInvalidPhase), "InvalidPhase"},
		{ErrPreconditionFailed, "PreconditionFailed"},
		{ErrNotYourTurn, "NotYourTurn"},
		{ErrQuorumNotReached, "QuorumNotReached"},
		{ErrCreationConflict, "CreationConflict"},
		{errors.New("boom"), "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
