package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// envelope is the uniform response shape of the action endpoint.
// Exactly one of Result/Err is present.
type envelope struct {
	OK     bool           `json:"ok"`
	Result any            `json:"result,omitempty"`
	Err    *envelopeError `json:"error,omitempty"`
}

// envelopeError carries the failure detail. Code always equals the
// HTTP status of the response. Data holds structured context (the
// offending id, the attempted write path) or null.
type envelopeError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    any    `json:"data"`
}

// actionRequest is the wire shape of an inbound action call.
type actionRequest struct {
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args"`
}

// apiError is an action failure with an HTTP status attached. Handlers
// return it to control both the envelope and the response status; any
// other error becomes a 500.
type apiError struct {
	Status  int
	Message string
	Data    any
}

func (e *apiError) Error() string {
	return e.Message
}

// actionHandler executes one action against the server's dependencies.
type actionHandler func(s *Server, ctx context.Context, args json.RawMessage) (any, error)

// actions is the complete set of supported actions. Routing is a
// table lookup so the protocol surface is enumerable in one place.
var actions = map[string]actionHandler{
	"ping":           (*Server).actionPing,
	"list_variables": (*Server).actionListVariables,
	"get_var":        (*Server).actionGetVar,
	"set_var":        (*Server).actionSetVar,
	"list_devices":   (*Server).actionListDevices,
}

// handleHook is the single action endpoint.
//
// Request order is fixed: token check (401), method check (405), body
// parse (400), action lookup (400), then the handler. Every outcome is
// rendered as an envelope; the status code always matches error.code.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeEnvelopeError(w, &apiError{
			Status:  http.StatusUnauthorized,
			Message: "missing or invalid token",
		})
		return
	}

	if r.Method != http.MethodPost {
		writeEnvelopeError(w, &apiError{
			Status:  http.StatusMethodNotAllowed,
			Message: "method not allowed, use POST",
		})
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, &apiError{
			Status:  http.StatusBadRequest,
			Message: "invalid JSON body",
		})
		return
	}

	handler, ok := actions[req.Action]
	if !ok {
		writeEnvelopeError(w, &apiError{
			Status:  http.StatusBadRequest,
			Message: "unknown action",
			Data:    map[string]any{"action": req.Action},
		})
		return
	}

	result, err := handler(s, r.Context(), req.Args)
	if err != nil {
		var apiErr *apiError
		if !errors.As(err, &apiErr) {
			s.logger.Error("action failed",
				"action", req.Action,
				"error", err,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			apiErr = &apiError{
				Status:  http.StatusInternalServerError,
				Message: err.Error(),
			}
		}
		writeEnvelopeError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, envelope{OK: true, Result: result})
}

// writeEnvelopeError renders an action failure as the uniform envelope.
func writeEnvelopeError(w http.ResponseWriter, e *apiError) {
	writeJSON(w, e.Status, envelope{
		OK: false,
		Err: &envelopeError{
			Message: e.Message,
			Code:    e.Status,
			Data:    e.Data,
		},
	})
}

// authorized checks the caller's token against the configured secret.
//
// The token may arrive as "Authorization: Bearer <token>", as a raw
// Authorization header value, or as a ?token= query parameter. An
// empty configured secret denies everything unless anonymous access
// is enabled. Comparison is constant-time.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Bridge.AllowAnonymous {
		return true
	}

	secret := s.cfg.Bridge.AuthToken
	if secret == "" {
		// Fail closed: no secret means no access.
		return false
	}

	presented := bearerToken(r)
	if presented == "" {
		presented = r.URL.Query().Get("token")
	}
	if presented == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}

// bearerToken extracts the token from the Authorization header.
// A bare header value without the Bearer prefix is accepted too.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
