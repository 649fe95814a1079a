package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"imposter"
	"imposter/internal/config"
	"imposter/internal/game"
	"imposter/internal/handlers"
	"imposter/internal/janitor"
	"imposter/internal/session"
	"imposter/internal/store"
)

// App is the assembled server: the router plus whatever the store needs
// shut down
type App struct {
	Handler http.Handler
	Store   store.SessionStore

	closers []func()
}

// Close releases background workers and connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// SetupServer wires the store, coordinator and handlers for cfg
func SetupServer(ctx context.Context, cfg *config.ServerConfig, logger *zap.Logger) (*App, error) {
	app := &App{}

	s, err := openStore(ctx, cfg, logger, app)
	if err != nil {
		return nil, err
	}
	app.Store = s

	words, err := game.LoadWordService(cfg.Game.WordsFile, imposter.WordsYAML)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	logger.Info("Loaded word list", zap.Int("words", words.Len()))

	coord := session.NewCoordinator(s, words,
		session.WithRules(cfg.Rules()),
		session.WithLogger(logger),
		session.WithCodeLength(cfg.Server.RoomCodeLength),
	)

	h := handlers.New(coord, cfg, logger)
	app.Handler = handlers.SetupRouter(h, cfg, nil)
	return app, nil
}

// openStore picks the room store backend. Memory rooms are purged by a
// janitor; redis rooms expire through their TTL.
func openStore(ctx context.Context, cfg *config.ServerConfig, logger *zap.Logger, app *App) (store.SessionStore, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { closeRedis(rdb, logger) })
		return store.NewRedisStore(rdb, store.RedisOptions{
			Prefix: cfg.Store.Redis.Prefix,
			TTL:    cfg.Server.RoomTimeout,
		}, logger), nil

	case config.BackendMemory:
		s := store.NewMemoryStore()
		j := janitor.New(s, cfg.Server.RoomTimeout, logger)
		if err := j.Start(cfg.Server.JanitorSchedule); err != nil {
			return nil, err
		}
		app.closers = append(app.closers, j.Stop)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func closeRedis(rdb *redis.Client, logger *zap.Logger) {
	if err := rdb.Close(); err != nil {
		logger.Warn("Failed to close redis client", zap.Error(err))
	}
}
