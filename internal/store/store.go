package store

import (
	"context"
	"errors"
	"time"

	"imposter/internal/game"
)

var (
	// ErrNotFound is returned when no document exists for a code
	ErrNotFound = game.ErrRoomNotFound

	// ErrAlreadyExists is returned by Create when the code is taken
	ErrAlreadyExists = errors.New("room already exists")
)

// Mutation edits the current stored room. It runs inside the store's atomic
// section and may run more than once if the store retries; returning an error
// aborts the write and the error is passed back to the caller unchanged.
type Mutation func(room *game.Room) error

// SessionStore holds one document per room and is the only serialization point
// between clients.
type SessionStore interface {
	Get(ctx context.Context, code string) (game.Room, error)
	Create(ctx context.Context, room game.Room) error
	Update(ctx context.Context, code string, mutate Mutation) (game.Room, error)

	// Subscribe delivers the current document immediately and then the result
	// of every successful write. The channel is closed when ctx is done.
	// Delivery is latest-wins: a slow reader may miss intermediate versions
	// but always receives the newest.
	Subscribe(ctx context.Context, code string) (<-chan game.Room, error)

	Ping(ctx context.Context) error
}

// Purger is implemented by stores that cannot expire idle rooms on their own
type Purger interface {
	PurgeIdle(ctx context.Context, before time.Time) (int, error)
}

// Offer delivers v on a latest-wins channel, replacing whatever is still
// buffered. ch must have capacity one and a single sender.
func Offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
