package handlers

import (
	"errors"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"imposter/internal/game"
	"imposter/internal/views/pages"
)

var errBadRequest = errors.New("malformed request body")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errTooManyStreams):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotHost), errors.Is(err, game.ErrNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInvalidName), errors.Is(err, game.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrNameTaken),
		errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrPreconditionFailed),
		errors.Is(err, game.ErrCreationConflict),
		errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail reports err to the caller. Datastar actions get the message patched
// into #error; everything else gets a JSON body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := game.Kind(err)
	switch {
	case errors.Is(err, errBadRequest):
		kind = "BadRequest"
	case errors.Is(err, errTooManyStreams):
		kind = "TooManyStreams"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		message = "internal error"
	}

	if isDatastar(r) {
		sse := datastar.NewSSE(w, r)
		sse.PatchElements(renderToString(pages.Message(message)), datastar.WithSelector("#error"))
		return
	}
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}
