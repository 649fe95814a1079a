package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"imposter/internal/config"
	localMiddleware "imposter/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !opts.DisableRequestLogger {
		r.Use(localMiddleware.RequestLogger(h.logger))
	}
	r.Use(middleware.Recoverer)

	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	if !opts.DisableRateLimiting {
		rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// Streams stay open for the whole game and bound themselves with StreamTimeout
	r.Get("/rooms/{code}/events", ValidateStreamRequest(h.StreamRoom))
	r.Get("/rooms/{code}/ws", ValidateStreamRequest(h.RoomSocket))

	r.Group(func(r chi.Router) {
		if cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		}

		r.Get("/", h.Home)
		r.Get("/play/{code}", h.PlayPage)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms/{code}", h.GetRoom)
		r.Post("/rooms/{code}/join", h.JoinRoom)
		r.Post("/rooms/{code}/start", h.StartGame)
		r.Post("/rooms/{code}/turn", h.AdvanceTurn)
		r.Post("/rooms/{code}/votes", h.CastVote)
		r.Post("/rooms/{code}/resolve", h.ResolveVotes)
		r.Post("/rooms/{code}/kick", h.KickPlayer)
		r.Post("/rooms/{code}/lobby", h.ReturnToLobby)
		r.Get("/rooms/{code}/qr", h.JoinQR)

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/health/ready", h.Ready)
	})

	return r
}

// Ready reports whether the room store is reachable
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Ping(r.Context()); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
