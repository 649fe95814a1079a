package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"imposter/internal/views"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 10 * time.Second
	writeWait  = 10 * time.Second
)

// Message types sent over the websocket
const (
	MessageRoom    = "room"
	MessageRemoved = "removed"
)

// SocketMessage is one frame of the websocket stream
type SocketMessage struct {
	Type string     `json:"type"`
	Room views.View `json:"room"`
}

// RoomSocket streams the caller's view of the room as JSON frames. It
// arbitrates the room the same way StreamRoom does. Clients only read; actions
// go through the HTTP endpoints.
func (h *Handler) RoomSocket(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	name := playerName(r, code)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	if h.cfg.Server.StreamTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Server.StreamTimeout)
		defer cancel()
	}

	snapshots, release, err := h.attach(ctx, code, name, "websocket")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		h.logger.Debug("Websocket upgrade failed", zap.String("room", code), zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("room", code), zap.String("player", name))

	// Reads only serve control frames; a read error means the client is gone
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return

		case <-readerDone:
			return

		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			msg := SocketMessage{Type: MessageRoom, Room: h.view(snap.Room, name)}
			if snap.Removed {
				msg.Type = MessageRemoved
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("Websocket write failed", zap.Error(err))
				return
			}
			if snap.Removed {
				logger.Info("Removed player leaving websocket")
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "removed from room"), time.Now().Add(writeWait))
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("Websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}
