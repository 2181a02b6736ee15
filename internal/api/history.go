package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultHistoryWindow is how far back history queries reach when the
// caller does not specify a window.
const defaultHistoryWindow = 24 * time.Hour

// handleVariableHistory returns recorded write and sample points for a
// variable, newest first. Requires InfluxDB to be enabled.
//
// Query parameters:
//   - since: lookback window as a Go duration (e.g. "1h", "30m"), default 24h
//   - limit: maximum points to return
func (s *Server) handleVariableHistory(w http.ResponseWriter, r *http.Request) {
	varID, err := strconv.Atoi(chi.URLParam(r, "varID"))
	if err != nil {
		writeBadRequest(w, "variable id must be an integer")
		return
	}

	window := defaultHistoryWindow
	if v := r.URL.Query().Get("since"); v != "" {
		window, err = time.ParseDuration(v)
		if err != nil || window <= 0 {
			writeBadRequest(w, "since must be a positive duration such as 1h or 30m")
			return
		}
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
	}

	if s.influx == nil {
		writeInternalError(w, "write history not configured")
		return
	}

	since := time.Now().Add(-window)
	points, err := s.influx.VariableHistory(r.Context(), varID, since, limit)
	if err != nil {
		s.logger.Error("history query failed", "var_id", varID, "error", err)
		writeInternalError(w, "failed to query variable history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"var_id": varID,
		"since":  since.UTC().Format(time.RFC3339),
		"points": points,
	})
}
