package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"imposter/internal/game"
	"imposter/internal/store"
)

// JoinOutcome tells a joining player whether they were added or already present
type JoinOutcome string

const (
	Joined   JoinOutcome = "joined"
	Rejoined JoinOutcome = "rejoined"
)

const defaultCreateAttempts = 10

// Coordinator is the only way rooms change. Every method is a single
// conditional store update, so concurrent callers never interleave a read
// and a write of the same room.
type Coordinator struct {
	store          store.SessionStore
	words          *game.WordService
	rules          game.Rules
	logger         *zap.Logger
	now            func() time.Time
	rng            game.Rand
	newCode        func() (string, error)
	createAttempts int
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRules overrides the default game rules
func WithRules(rules game.Rules) Option {
	return func(c *Coordinator) { c.rules = rules }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithRand replaces the random source used to deal rounds. rng need not be
// safe for concurrent use.
func WithRand(rng game.Rand) Option {
	return func(c *Coordinator) { c.rng = &lockedRand{r: rng} }
}

// WithCodeLength sets the length of generated room codes
func WithCodeLength(n int) Option {
	return func(c *Coordinator) {
		c.newCode = func() (string, error) { return game.GenerateRoomCode(n) }
	}
}

// WithCodeGenerator replaces room code generation entirely
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(c *Coordinator) { c.newCode = gen }
}

// WithCreateAttempts bounds how many codes CreateRoom tries before giving up
func WithCreateAttempts(n int) Option {
	return func(c *Coordinator) { c.createAttempts = n }
}

// NewCoordinator creates a coordinator over s
func NewCoordinator(s store.SessionStore, words *game.WordService, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  s,
		words:  words,
		rules:  game.DefaultRules(),
		logger: zap.NewNop(),
		now:    time.Now,
		rng:    globalRand{},
		newCode: func() (string, error) {
			return game.GenerateRoomCode(game.DefaultRoomCodeLength)
		},
		createAttempts: defaultCreateAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the rules rooms are played with
func (c *Coordinator) Rules() game.Rules {
	return c.rules
}

// Now returns the coordinator's current time
func (c *Coordinator) Now() time.Time {
	return c.now()
}

// CreateRoom opens a lobby with hostName as its only player and returns its code
func (c *Coordinator) CreateRoom(ctx context.Context, hostName string) (string, error) {
	if err := game.ValidateName(hostName, c.rules); err != nil {
		return "", err
	}

	for attempt := 0; attempt < c.createAttempts; attempt++ {
		code, err := c.newCode()
		if err != nil {
			return "", err
		}

		err = c.store.Create(ctx, game.NewRoom(code, hostName, c.now()))
		if errors.Is(err, store.ErrAlreadyExists) {
			c.logger.Debug("Room code collision", zap.String("room", code), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create room: %w", err)
		}

		c.logger.Info("Room created", zap.String("room", code), zap.String("host", hostName))
		return code, nil
	}

	return "", fmt.Errorf("%w after %d attempts", game.ErrCreationConflict, c.createAttempts)
}

// JoinRoom adds name to a lobby. A name already in the room is a reconnect
// and writes nothing.
func (c *Coordinator) JoinRoom(ctx context.Context, code, name string) (JoinOutcome, error) {
	code = game.NormalizeRoomCode(code)

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if room.HasPlayer(name) {
		c.logger.Debug("Player rejoined", zap.String("room", code), zap.String("player", name))
		return Rejoined, nil
	}

	_, err = c.update(ctx, "join", code, name, func(r *game.Room) error {
		return game.AddPlayer(r, name, c.rules, c.now())
	})
	if err != nil {
		return "", err
	}
	return Joined, nil
}

// KickPlayer removes target from the lobby on the host's behalf
func (c *Coordinator) KickPlayer(ctx context.Context, code, acting, target string) error {
	_, err := c.update(ctx, "kick", code, acting, func(r *game.Room) error {
		return game.RemovePlayer(r, acting, target)
	})
	return err
}

// StartGame deals the first round
func (c *Coordinator) StartGame(ctx context.Context, code, acting string) error {
	_, err := c.update(ctx, "start", code, acting, func(r *game.Room) error {
		return game.Start(r, acting, c.words, c.rng, c.now(), c.rules)
	})
	return err
}

// AdvanceTurn ends acting's own turn. from is the turn the caller is looking at.
func (c *Coordinator) AdvanceTurn(ctx context.Context, code, acting string, from game.TurnRef) error {
	_, err := c.update(ctx, "advance", code, acting, func(r *game.Room) error {
		return game.AdvanceTurn(r, game.Advance{By: acting, From: from}, c.now(), c.rules)
	})
	return err
}

// TimeoutTurn ends the turn from once its deadline has passed. Any player
// in the room may call it.
func (c *Coordinator) TimeoutTurn(ctx context.Context, code, acting string, from game.TurnRef) error {
	_, err := c.update(ctx, "timeout", code, acting, func(r *game.Room) error {
		return game.AdvanceTurn(r, game.Advance{By: acting, Timeout: true, From: from}, c.now(), c.rules)
	})
	return err
}

// CastVote records voter's vote
func (c *Coordinator) CastVote(ctx context.Context, code, voter, target string) error {
	_, err := c.update(ctx, "vote", code, voter, func(r *game.Room) error {
		return game.CastVote(r, voter, target)
	})
	return err
}

// ResolveVotes tallies the vote set observed at quorum. Only one of any number
// of concurrent callers with the same observation succeeds.
func (c *Coordinator) ResolveVotes(ctx context.Context, code, acting string, observed map[string]string) (game.Tally, error) {
	var tally game.Tally
	_, err := c.update(ctx, "resolve", code, acting, func(r *game.Room) error {
		t, err := game.Resolve(r, acting, observed, c.rng, c.now(), c.rules)
		tally = t
		return err
	})
	if err != nil {
		return game.Tally{}, err
	}
	return tally, nil
}

// ReturnToLobby clears a finished round
func (c *Coordinator) ReturnToLobby(ctx context.Context, code, acting string) error {
	_, err := c.update(ctx, "lobby", code, acting, func(r *game.Room) error {
		return game.ReturnToLobby(r, acting)
	})
	return err
}

// Snapshot returns the current room
func (c *Coordinator) Snapshot(ctx context.Context, code string) (game.Room, error) {
	return c.store.Get(ctx, game.NormalizeRoomCode(code))
}

// CurrentState streams the room until ctx is cancelled. Call it again to
// resume after the stream ends.
func (c *Coordinator) CurrentState(ctx context.Context, code string) (<-chan game.Room, error) {
	return c.store.Subscribe(ctx, game.NormalizeRoomCode(code))
}

// Ping checks the backing store
func (c *Coordinator) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Coordinator) update(ctx context.Context, op, code, player string, mutate store.Mutation) (game.Room, error) {
	code = game.NormalizeRoomCode(code)

	room, err := c.store.Update(ctx, code, mutate)
	if err != nil {
		c.logger.Debug("Room update rejected",
			zap.String("op", op),
			zap.String("room", code),
			zap.String("player", player),
			zap.Error(err))
		return game.Room{}, fmt.Errorf("%s %s: %w", op, code, err)
	}

	c.logger.Info("Room updated",
		zap.String("op", op),
		zap.String("room", code),
		zap.String("player", player),
		zap.String("status", string(room.Status)),
		zap.Int("round", room.Round),
		zap.Int64("version", room.Version))
	return room, nil
}

// globalRand draws from math/rand/v2's goroutine-safe top-level source
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type lockedRand struct {
	mu sync.Mutex
	r  game.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
