package handlers

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/logging"
)

// Games returns the full games log in insertion order.
func (h *Handler) Games(w nethttp.ResponseWriter, r *nethttp.Request) {
	log := h.svc.Games()
	logging.Info(loggerFromContext(r, h.logger), "served games", logging.FieldCount, len(log))
	writeJSON(w, nethttp.StatusOK, log, h.logger)
}

// AddGame records one game and returns the committed record.
func (h *Handler) AddGame(w nethttp.ResponseWriter, r *nethttp.Request) {
	var in games.Input
	dec := json.NewDecoder(nethttp.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, nethttp.StatusBadRequest, "request body must contain a single JSON object", h.logger)
		return
	}

	rec, err := h.svc.ApplyGame(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, nethttp.StatusCreated, rec, h.logger)
	case errors.Is(err, games.ErrInvalidGameRecord):
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
	default:
		writeError(w, r, nethttp.StatusInternalServerError, "failed to record game", h.logger)
	}
}
