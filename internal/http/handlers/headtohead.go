package handlers

import (
	nethttp "net/http"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/headtohead"
)

// HeadToHeadResponse is a head-to-head record with its win rate.
type HeadToHeadResponse struct {
	headtohead.Record
	WinRate float64 `json:"winRate"`
}

// HeadToHead returns player's record against opponent for one game type.
func (h *Handler) HeadToHead(w nethttp.ResponseWriter, r *nethttp.Request) {
	q := r.URL.Query()
	player, opponent := q.Get("player"), q.Get("opponent")
	if player == "" || opponent == "" {
		writeError(w, r, nethttp.StatusBadRequest, "player and opponent are required", h.logger)
		return
	}
	t, err := games.ParseGameType(q.Get("type"))
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "type must be Regular or Playoff", h.logger)
		return
	}

	rec := h.svc.HeadToHead(player, opponent, t)
	writeJSON(w, nethttp.StatusOK, HeadToHeadResponse{Record: rec, WinRate: rec.WinRate()}, h.logger)
}
