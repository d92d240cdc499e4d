package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/versusleague/internal/api/stream"
	apimw "github.com/mcoot/versusleague/internal/middleware"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

// StreamHandler serves the live event stream
type StreamHandler struct {
	league *leaguesvc.Service
	hubs   *stream.HubManager
	logger *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(league *leaguesvc.Service, hubs *stream.HubManager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{league: league, hubs: hubs, logger: logger}
}

// Stream handles GET /api/v1/registry/events/stream?limit=N. The newest
// limit committed events are replayed before live events; limit defaults
// to 0 (no replay).
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var backlog [][]byte
	if r.URL.Query().Get("limit") != "" {
		limit, err := parseLimit(r)
		if err != nil {
			WriteError(w, err)
			return
		}
		events, err := h.league.Events(r.Context(), limit)
		if err != nil {
			WriteError(w, err)
			return
		}
		for _, ev := range events {
			msg, err := stream.FormatEvent(ev)
			if err != nil {
				h.logger.Error("failed to format event for replay", slog.String("tx_id", ev.TxID), slog.Any("error", err))
				continue
			}
			backlog = append(backlog, msg)
		}
	}

	hub := h.hubs.GetOrCreateHub(h.league.Address())
	clientID := apimw.GetRequestID(r.Context())
	if clientID == "" {
		clientID = r.RemoteAddr
	}
	stream.Serve(w, r, hub, clientID, backlog)
}
