package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-bridge/internal/audit"
	"github.com/nerrad567/gray-bridge/internal/device"
)

// handleListEntries returns the raw registry entries.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list registry entries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleUpsertEntry creates or replaces one registry entry, keyed by var_id.
// Entries default to enabled; callers opt out explicitly.
func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	entry := device.Entry{Enabled: true}
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := entry.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.repo.Upsert(r.Context(), &entry); err != nil {
		s.logger.Error("registry upsert failed", "var_id", entry.VarID, "error", err)
		writeInternalError(w, "failed to store registry entry")
		return
	}

	s.auditLog("registry_upsert", entry.VarID, "", entry.Name, true)

	writeJSON(w, http.StatusOK, entry)
}

// handleDeleteEntry removes one registry entry.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	varID, err := strconv.Atoi(chi.URLParam(r, "varID"))
	if err != nil {
		writeBadRequest(w, "var_id must be an integer")
		return
	}

	if err := s.repo.Delete(r.Context(), varID); err != nil {
		if errors.Is(err, device.ErrEntryNotFound) {
			writeNotFound(w, "registry entry not found")
			return
		}
		s.logger.Error("registry delete failed", "var_id", varID, "error", err)
		writeInternalError(w, "failed to delete registry entry")
		return
	}

	s.auditLog("registry_delete", varID, "", "", true)

	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": true,
		"var_id":  varID,
	})
}

// handleListRooms returns the distinct room names present in the registry.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.registry.RoomOptions(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list rooms")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// handleListAudit returns the audit trail, newest first.
//
// Query parameters:
//   - action: filter by action name
//   - var_id: filter by variable
//   - limit, offset: paging
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeInternalError(w, "audit trail not configured")
		return
	}

	filter := audit.Filter{
		Action: r.URL.Query().Get("action"),
	}
	if v := r.URL.Query().Get("var_id"); v != "" {
		varID, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "var_id must be an integer")
			return
		}
		filter.VarID = varID
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
