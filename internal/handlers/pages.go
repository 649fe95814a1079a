package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"imposter/internal/game"
	"imposter/internal/views/pages"
)

// Home renders the home page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.Home())
}

// PlayPage renders the page a player keeps open during the game. Unknown
// rooms send the caller back home.
func (h *Handler) PlayPage(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.coord.Snapshot(r.Context(), code); err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.render(w, r, pages.Play(code))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.fail(w, r, err)
	}
}

// renderToString renders a templ component to string
func renderToString(component templ.Component) string {
	buf := &bytes.Buffer{}
	component.Render(context.Background(), buf)
	return buf.String()
}
