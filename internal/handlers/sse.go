package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"imposter/internal/game"
	"imposter/internal/session"
	"imposter/internal/views/pages"
)

const (
	heartbeatInterval = 15 * time.Second
	countdownInterval = time.Second
)

// attach opens the room stream for the caller and claims a stream slot
func (h *Handler) attach(ctx context.Context, code, name, transport string) (<-chan session.Snapshot, func(), error) {
	if _, err := h.coord.Snapshot(ctx, code); err != nil {
		return nil, nil, err
	}
	release, err := h.conns.Add(code, name, transport)
	if err != nil {
		return nil, nil, err
	}
	snapshots, err := h.coord.Attach(ctx, code, name)
	if err != nil {
		release()
		return nil, nil, err
	}
	return snapshots, release, nil
}

// StreamRoom streams the caller's view of the room as datastar patches of
// #room. While the caller is a player the stream also arbitrates timeouts and
// vote resolution for the room.
func (h *Handler) StreamRoom(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	name := playerName(r, code)

	ctx := r.Context()
	if h.cfg.Server.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Server.StreamTimeout)
		defer cancel()
	}

	snapshots, release, err := h.attach(ctx, code, name, "sse")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	logger := h.logger.With(zap.String("room", code), zap.String("player", name))
	sse := datastar.NewSSE(w, r)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	countdown := time.NewTicker(countdownInterval)
	defer countdown.Stop()

	var last game.Room
	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if snap.Removed {
				logger.Info("Removed player leaving stream")
				sse.ExecuteScript("window.location.href = '/'")
				return
			}
			last = snap.Room
			if err := h.patchRoom(sse, last, name); err != nil {
				logger.Debug("Stream write failed", zap.Error(err))
				return
			}

		case <-countdown.C:
			if last.Status != game.StatusPlaying {
				continue
			}
			if err := h.patchRoom(sse, last, name); err != nil {
				logger.Debug("Stream write failed", zap.Error(err))
				return
			}

		case <-heartbeat.C:
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				logger.Debug("Keepalive failed, closing stream", zap.Error(err))
				return
			}
		}
	}
}

// patchRoom renders room for name and sends it with the signals the page
// binds to
func (h *Handler) patchRoom(sse *datastar.ServerSentEventGenerator, room game.Room, name string) error {
	v := h.view(room, name)
	if err := sse.MarshalAndPatchSignals(map[string]any{
		"status":      v.Status,
		"secondsLeft": v.SecondsLeft,
		"version":     v.Version,
	}); err != nil {
		return err
	}
	return sse.PatchElements(renderToString(pages.Room(v)), datastar.WithSelector("#room"))
}
