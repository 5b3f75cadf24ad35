package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tahcohcat/healplay/internal/catalog"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.New().WithError(err).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var nf *catalog.NotFoundError
	var ve *services.ValidationError
	switch {
	case errors.As(err, &nf), errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotStarted),
		errors.Is(err, game.ErrAlreadyStarted),
		errors.Is(err, game.ErrComplete),
		errors.Is(err, game.ErrAlreadyAnswered),
		errors.Is(err, game.ErrNoResponse),
		errors.Is(err, game.ErrNotCurrentRound),
		errors.Is(err, services.ErrInactiveGoodie),
		errors.Is(err, services.ErrInsufficientCoins):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownRound),
		errors.Is(err, game.ErrUnknownChoice),
		errors.Is(err, game.ErrUnknownBin),
		errors.Is(err, game.ErrNotPlaced),
		errors.Is(err, game.ErrEmptyReflection),
		errors.Is(err, game.ErrWrongMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// replaced with msg.
func fail(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logErr(err, msg)
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

func logErr(err error, msg string) {
	logger.New().WithError(err).Error(msg)
}
