package handlers

import (
	"errors"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-stats/internal/report"
)

// PlayerView is a stats row plus a name safe for display.
type PlayerView struct {
	players.PlayerStats
	DisplayName string `json:"displayName"`
}

var displayReplacer = strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")

// DisplayName strips list and quote punctuation that legacy tables left in names.
func DisplayName(name string) string {
	return strings.TrimSpace(displayReplacer.Replace(name))
}

// Players returns every stats row in first-appearance order.
func (h *Handler) Players(w nethttp.ResponseWriter, r *nethttp.Request) {
	rows := h.svc.Players()
	views := make([]PlayerView, 0, len(rows))
	for _, row := range rows {
		views = append(views, PlayerView{PlayerStats: row, DisplayName: DisplayName(row.Player)})
	}
	writeJSON(w, nethttp.StatusOK, views, h.logger)
}

// Player returns a single stats row.
func (h *Handler) Player(w nethttp.ResponseWriter, r *nethttp.Request) {
	st, err := h.svc.Player(playerParam(r))
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, PlayerView{PlayerStats: st, DisplayName: DisplayName(st.Player)}, h.logger)
}

// PlayerReport renders the plain-text report.
func (h *Handler) PlayerReport(w nethttp.ResponseWriter, r *nethttp.Request) {
	text, err := h.svc.PlayerReport(playerParam(r))
	if errors.Is(err, players.ErrPlayerNotFound) {
		writeText(w, nethttp.StatusNotFound, report.NoStatsMessage, h.logger)
		return
	}
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	writeText(w, nethttp.StatusOK, text, h.logger)
}

// PlayerChart returns the chart series.
func (h *Handler) PlayerChart(w nethttp.ResponseWriter, r *nethttp.Request) {
	chart, err := h.svc.PlayerChart(playerParam(r))
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, chart, h.logger)
}

func (h *Handler) writeLookupError(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	if errors.Is(err, players.ErrPlayerNotFound) {
		writeError(w, r, nethttp.StatusNotFound, "player not found", h.logger)
		return
	}
	writeError(w, r, nethttp.StatusInternalServerError, "internal error", h.logger)
}

// playerParam returns the decoded {player} segment. chi matches on RawPath when
// it is set, so only then is the value still escaped.
func playerParam(r *nethttp.Request) string {
	raw := chi.URLParam(r, "player")
	if r.URL.RawPath == "" {
		return raw
	}
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
