package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"imposter/internal/game"
	"imposter/internal/store"
)

// retryDelay is how long an arbiter waits before re-checking a deadline that
// its clock said had passed but the store's did not
const retryDelay = 100 * time.Millisecond

// Snapshot is one room update as seen by an attached player
type Snapshot struct {
	Room game.Room

	// Removed is set on the final snapshot when the viewer was a player and
	// no longer is
	Removed bool
}

// Attach streams room updates for name. While name is a player the stream
// also drives the room forward: it resolves the vote once every player has
// voted and times out turns whose deadline has passed. Every attached player
// does this, and the store lets exactly one attempt win, so the room keeps
// moving as long as anyone is connected.
//
// A name that is not in the room attaches as a spectator. The channel is
// closed when ctx is done or the viewer is removed from the room.
func (c *Coordinator) Attach(ctx context.Context, code, name string) (<-chan Snapshot, error) {
	code = game.NormalizeRoomCode(code)

	ctx, cancel := context.WithCancel(ctx)
	rooms, err := c.store.Subscribe(ctx, code)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Snapshot, 1)
	a := &arbiter{
		c:      c,
		code:   code,
		name:   name,
		logger: c.logger.With(zap.String("room", code), zap.String("player", name)),
	}

	go func() {
		defer cancel()
		defer close(out)
		defer a.stop()

		member := false
		for {
			select {
			case <-ctx.Done():
				return
			case room, ok := <-rooms:
				if !ok {
					return
				}

				present := room.HasPlayer(name)
				if member && !present {
					a.logger.Info("Player removed from room")
					store.Offer(out, Snapshot{Room: room, Removed: true})
					return
				}
				member = present

				store.Offer(out, Snapshot{Room: room})
				if member {
					a.observe(ctx, room)
				}
			}
		}
	}()

	return out, nil
}

// arbiter attempts the transitions any player may trigger
type arbiter struct {
	c      *Coordinator
	code   string
	name   string
	logger *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	armedFor game.TurnRef
	resolved int64
}

func (a *arbiter) observe(ctx context.Context, room game.Room) {
	switch room.Status {
	case game.StatusPlaying:
		a.arm(ctx, room.Turn(), room.TurnDeadline)
	case game.StatusVoting:
		a.disarm()
		if room.QuorumReached() && a.resolved != room.Version {
			a.resolved = room.Version
			a.resolve(ctx, maps.Clone(room.Votes))
		}
	default:
		a.disarm()
	}
}

func (a *arbiter) resolve(ctx context.Context, votes map[string]string) {
	tally, err := a.c.ResolveVotes(ctx, a.code, a.name, votes)
	switch {
	case err == nil:
		a.logger.Info("Resolved vote",
			zap.String("candidate", tally.Candidate),
			zap.Int("count", tally.MaxCount),
			zap.Bool("tie", tally.Tie))
	case errors.Is(err, game.ErrPreconditionFailed):
		a.logger.Debug("Vote already resolved elsewhere", zap.Error(err))
	case ctx.Err() != nil:
	default:
		a.logger.Warn("Failed to resolve vote", zap.Error(err))
	}
}

// arm schedules a timeout for turn. Re-arming for the turn already armed is a no-op.
func (a *arbiter) arm(ctx context.Context, turn game.TurnRef, deadline time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil && a.armedFor == turn {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}

	wait := max(deadline.Sub(a.c.now()), 0)
	a.armedFor = turn
	a.timer = time.AfterFunc(wait, func() { a.timeout(ctx, turn, deadline) })
}

func (a *arbiter) timeout(ctx context.Context, turn game.TurnRef, deadline time.Time) {
	if ctx.Err() != nil {
		return
	}

	err := a.c.TimeoutTurn(ctx, a.code, a.name, turn)
	switch {
	case err == nil:
		a.logger.Info("Turn timed out", zap.Int("round", turn.Round), zap.Int("index", turn.Index))
	case errors.Is(err, game.ErrTurnNotExpired):
		a.mu.Lock()
		if a.armedFor == turn {
			a.timer = time.AfterFunc(retryDelay, func() { a.timeout(ctx, turn, deadline) })
		}
		a.mu.Unlock()
	case errors.Is(err, game.ErrPreconditionFailed):
		a.logger.Debug("Turn already advanced elsewhere", zap.Error(err))
	case ctx.Err() != nil:
	default:
		a.logger.Warn("Failed to time out turn", zap.Error(err))
	}
}

func (a *arbiter) disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.armedFor = game.TurnRef{}
}

func (a *arbiter) stop() {
	a.disarm()
}
