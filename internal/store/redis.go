package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"imposter/internal/game"
)

// RedisOptions configures where and for how long room documents live
type RedisOptions struct {
	Prefix string
	// TTL is refreshed on every write so only idle rooms expire
	TTL time.Duration
	// MaxRetries bounds how often an update is re-run after losing a WATCH race
	MaxRetries int
}

// RedisStore keeps each room as a JSON document and fans writes out over
// Redis pub/sub so every server process sees every update
type RedisStore struct {
	rdb    *redis.Client
	opts   RedisOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", zap.String("addr", addr), zap.Error(err))
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))
	return rdb, nil
}

// NewRedisStore wraps a connected client
func NewRedisStore(rdb *redis.Client, opts RedisOptions, logger *zap.Logger) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = "imposter"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	return &RedisStore{
		rdb:    rdb,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RedisStore) key(code string) string {
	return s.opts.Prefix + ":room:" + code
}

func (s *RedisStore) channel(code string) string {
	return s.key(code) + ":updates"
}

// Get retrieves a room by code
func (s *RedisStore) Get(ctx context.Context, code string) (game.Room, error) {
	return s.get(ctx, s.rdb, code)
}

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, code string) (game.Room, error) {
	data, err := c.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Room{}, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return game.Room{}, fmt.Errorf("get room %s: %w", code, err)
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return game.Room{}, fmt.Errorf("decode room %s: %w", code, err)
	}
	return room, nil
}

// Create stores a new room with SETNX
func (s *RedisStore) Create(ctx context.Context, room game.Room) error {
	room.Version = 1
	room.UpdatedAt = s.now()

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}

	ok, err := s.rdb.SetNX(ctx, s.key(room.Code), data, s.opts.TTL).Result()
	if err != nil {
		return fmt.Errorf("create room %s: %w", room.Code, err)
	}
	if !ok {
		return fmt.Errorf("room %s: %w", room.Code, ErrAlreadyExists)
	}
	return nil
}

// Update runs mutate inside a WATCH/MULTI transaction. The write and its
// pub/sub notification commit together; if another writer touches the key
// first the transaction is re-run against the fresh document.
func (s *RedisStore) Update(ctx context.Context, code string, mutate Mutation) (game.Room, error) {
	key := s.key(code)

	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		var updated game.Room

		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := s.get(ctx, tx, code)
			if err != nil {
				return err
			}

			next := current.Clone()
			if err := mutate(&next); err != nil {
				return err
			}
			next.Code = current.Code
			next.Version = current.Version + 1
			next.UpdatedAt = s.now()

			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("encode room %s: %w", code, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.opts.TTL)
				pipe.Publish(ctx, s.channel(code), data)
				return nil
			})
			if err != nil {
				return err
			}

			updated = next
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("Room changed during update, retrying",
				zap.String("room", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return game.Room{}, err
		}
		return updated, nil
	}

	return game.Room{}, fmt.Errorf("%w: room %s kept changing", game.ErrPreconditionFailed, code)
}

// Subscribe listens on the room's update channel. The subscription is
// confirmed before the current document is read so no write can fall between.
func (s *RedisStore) Subscribe(ctx context.Context, code string) (<-chan game.Room, error) {
	pubsub := s.rdb.Subscribe(ctx, s.channel(code))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", code, err)
	}

	current, err := s.Get(ctx, code)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan game.Room, 1)
	out <- current

	go s.forward(ctx, code, pubsub, out, current.Version)
	return out, nil
}

func (s *RedisStore) forward(ctx context.Context, code string, pubsub *redis.PubSub, out chan game.Room, last int64) {
	defer close(out)
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var room game.Room
			if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
				s.logger.Warn("Dropping undecodable room update",
					zap.String("room", code),
					zap.Error(err))
				continue
			}
			// pub/sub can redeliver after a reconnect
			if room.Version <= last {
				continue
			}
			last = room.Version
			Offer(out, room)
		}
	}
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
