package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"imposter/internal/config"
	"imposter/internal/game"
	"imposter/internal/session"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	coord    *session.Coordinator
	cfg      *config.ServerConfig
	logger   *zap.Logger
	conns    *ConnectionTracker
	upgrader websocket.Upgrader
}

// New creates a new handler
func New(coord *session.Coordinator, cfg *config.ServerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		coord:  coord,
		cfg:    cfg,
		logger: logger,
		conns:  NewConnectionTracker(cfg.Server.MaxStreamsPerRoom, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Connections returns the stream tracker
func (h *Handler) Connections() *ConnectionTracker {
	return h.conns
}

func roomCode(r *http.Request) string {
	return game.NormalizeRoomCode(chi.URLParam(r, "code"))
}

func playerCookie(code string) string {
	return "player_" + code
}

// rememberPlayer stores the name the caller plays code as
func rememberPlayer(w http.ResponseWriter, code, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookie(code),
		Value:    url.QueryEscape(name),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 1 day
	})
}

// playerName returns who the caller plays code as. Browsers carry it in the
// player cookie; other clients may send the X-Player-Name header.
func playerName(r *http.Request, code string) string {
	if c, err := r.Cookie(playerCookie(code)); err == nil {
		if name, err := url.QueryUnescape(c.Value); err == nil {
			return name
		}
	}
	return r.Header.Get("X-Player-Name")
}

// isDatastar reports whether the request came from a datastar action
func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

// decode reads the request body into v. Datastar actions send their signals,
// everything else sends JSON. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if isDatastar(r) {
		return datastar.ReadSignals(r, v)
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
