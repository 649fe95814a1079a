package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"imposter/internal/game"
	"imposter/internal/session"
	"imposter/internal/views"
	"imposter/internal/views/pages"
)

type nameRequest struct {
	Name string `json:"name"`
}

type turnRequest struct {
	Game    int  `json:"game"`
	Round   int  `json:"round"`
	Index   int  `json:"index"`
	Timeout bool `json:"timeout"`
}

type targetRequest struct {
	Target string `json:"target"`
}

type resolveRequest struct {
	Votes map[string]string `json:"votes"`
}

type joinResponse struct {
	Code    string              `json:"code"`
	Name    string              `json:"name"`
	Outcome session.JoinOutcome `json:"outcome,omitempty"`
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decode(r, v); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

// done acknowledges an action. Datastar callers get their error line cleared;
// the room itself arrives over the stream.
func done(w http.ResponseWriter, r *http.Request) {
	if isDatastar(r) {
		sse := datastar.NewSSE(w, r)
		sse.PatchElements(renderToString(pages.Message("")), datastar.WithSelector("#error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// redirect sends a datastar client to another page
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	sse := datastar.NewSSE(w, r)
	sse.ExecuteScript("window.location.href = " + strconv.Quote(to))
}

// CreateRoom opens a new room hosted by the caller
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !h.read(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)

	code, err := h.coord.CreateRoom(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rememberPlayer(w, code, name)
	if isDatastar(r) {
		redirect(w, r, "/play/"+code)
		return
	}
	writeJSON(w, http.StatusCreated, joinResponse{Code: code, Name: name})
}

// JoinRoom adds the caller to a lobby, or recognises a returning player
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	var req nameRequest
	if !h.read(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)

	outcome, err := h.coord.JoinRoom(r.Context(), code, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rememberPlayer(w, code, name)
	if isDatastar(r) {
		redirect(w, r, "/play/"+code)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{Code: code, Name: name, Outcome: outcome})
}

// GetRoom returns the room as the caller is allowed to see it
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.coord.Snapshot(r.Context(), roomCode(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(room, playerName(r, room.Code)))
}

func (h *Handler) view(room game.Room, viewer string) views.View {
	return views.Redact(room, viewer, h.coord.Rules(), h.coord.Now())
}

// StartGame starts the first round
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if err := h.coord.StartGame(r.Context(), code, playerName(r, code)); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

// AdvanceTurn finishes the turn named in the body, either as the active
// player or as a timeout once its deadline has passed
func (h *Handler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	var req turnRequest
	if !h.read(w, r, &req) {
		return
	}

	from := game.TurnRef{Game: req.Game, Round: req.Round, Index: req.Index}
	name := playerName(r, code)
	var err error
	if req.Timeout {
		err = h.coord.TimeoutTurn(r.Context(), code, name, from)
	} else {
		err = h.coord.AdvanceTurn(r.Context(), code, name, from)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

// CastVote records the caller's vote
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	var req targetRequest
	if !h.read(w, r, &req) {
		return
	}
	if err := h.coord.CastVote(r.Context(), code, playerName(r, code), req.Target); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

// ResolveVotes attempts to tally a complete vote. Without a vote set in the
// body the votes currently stored are used.
func (h *Handler) ResolveVotes(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	var req resolveRequest
	if !h.read(w, r, &req) {
		return
	}

	observed := req.Votes
	if observed == nil {
		room, err := h.coord.Snapshot(r.Context(), code)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		observed = room.Votes
	}

	tally, err := h.coord.ResolveVotes(r.Context(), code, playerName(r, code), observed)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// KickPlayer removes a player from the lobby
func (h *Handler) KickPlayer(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	var req targetRequest
	if !h.read(w, r, &req) {
		return
	}
	if err := h.coord.KickPlayer(r.Context(), code, playerName(r, code), req.Target); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}

// ReturnToLobby takes a finished room back to its lobby
func (h *Handler) ReturnToLobby(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if err := h.coord.ReturnToLobby(r.Context(), code, playerName(r, code)); err != nil {
		h.fail(w, r, err)
		return
	}
	done(w, r)
}
