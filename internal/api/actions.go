package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/gray-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge/internal/objectstore"
	"github.com/nerrad567/gray-bridge/internal/variable"
)

// Page bounds for list_variables.
const (
	defaultPageSize = 200
	minPageSize     = 1
	maxPageSize     = 1000
)

// actionPing answers a liveness probe.
func (s *Server) actionPing(_ context.Context, _ json.RawMessage) (any, error) {
	return map[string]any{
		"pong": true,
		"time": time.Now().Unix(),
	}, nil
}

// listVariablesArgs are the arguments of list_variables, pre-filled
// with protocol defaults before decoding.
type listVariablesArgs struct {
	RootID   int    `json:"root_id"`
	Filter   string `json:"filter"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// actionListVariables walks the object tree under root_id, filters the
// flattened records, and returns one page.
func (s *Server) actionListVariables(ctx context.Context, raw json.RawMessage) (any, error) {
	args := listVariablesArgs{Page: 1, PageSize: defaultPageSize}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	// Echo the effective paging values, not the raw ones.
	if args.Page < 1 {
		args.Page = 1
	}
	if args.PageSize < minPageSize {
		args.PageSize = minPageSize
	}
	if args.PageSize > maxPageSize {
		args.PageSize = maxPageSize
	}

	records, err := s.walker.Walk(ctx, args.RootID)
	if err != nil {
		return nil, err
	}

	page := variable.Page(records, args.Filter, args.Page, args.PageSize)

	return map[string]any{
		"root_id":     args.RootID,
		"filter":      args.Filter,
		"page":        args.Page,
		"page_size":   args.PageSize,
		"total":       page.Total,
		"total_pages": page.TotalPages,
		"items":       page.Items,
	}, nil
}

// getVarArgs are the arguments of get_var.
type getVarArgs struct {
	VarID int `json:"var_id"`
}

// varDetail is the get_var result: the flattened record plus the
// variable's timestamps and resolved profile.
type varDetail struct {
	variable.Record
	Changed     int64                    `json:"changed"`
	Updated     int64                    `json:"updated"`
	ProfileInfo *objectstore.ProfileInfo `json:"profile_info"`
}

// actionGetVar returns a single variable record with profile detail.
func (s *Server) actionGetVar(ctx context.Context, raw json.RawMessage) (any, error) {
	var args getVarArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	info, err := s.store.GetVariable(ctx, args.VarID)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, varNotFound(args.VarID)
		}
		return nil, err
	}

	obj, err := s.store.GetObject(ctx, args.VarID)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, varNotFound(args.VarID)
		}
		return nil, err
	}

	rec, err := s.walker.Record(ctx, obj)
	if err != nil {
		return nil, err
	}

	detail := varDetail{
		Record:  rec,
		Changed: info.Changed,
		Updated: info.Updated,
	}

	if info.Profile != "" {
		if profile, perr := s.store.GetProfile(ctx, info.Profile); perr == nil {
			detail.ProfileInfo = &profile
		}
	}

	return detail, nil
}

// setVarArgs are the arguments of set_var.
type setVarArgs struct {
	VarID int `json:"var_id"`
	Value any `json:"value"`
}

// actionSetVar coerces and writes a value, then announces the result
// on the audit, MQTT, and history side channels.
func (s *Server) actionSetVar(ctx context.Context, raw json.RawMessage) (any, error) {
	var args setVarArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	result, err := s.writer.Write(ctx, args.VarID, args.Value)
	if err != nil {
		if errors.Is(err, variable.ErrVariableNotFound) {
			s.auditLog("set_var", args.VarID, "", "variable not found", false)
			return nil, varNotFound(args.VarID)
		}

		var writeErr *variable.WriteError
		if errors.As(err, &writeErr) {
			s.auditLog("set_var", args.VarID, writeErr.Tried, writeErr.Error(), false)
			return nil, &apiError{
				Status:  http.StatusInternalServerError,
				Message: writeErr.Error(),
				Data: map[string]any{
					"var_id": args.VarID,
					"used":   writeErr.Tried,
				},
			}
		}

		s.auditLog("set_var", args.VarID, "", err.Error(), false)
		return nil, err
	}

	s.announceWrite("set_var", result)

	return result, nil
}

// actionListDevices returns the materialized device list.
func (s *Server) actionListDevices(ctx context.Context, _ json.RawMessage) (any, error) {
	devices, err := s.registry.Devices(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{"devices": devices}, nil
}

// announceWrite pushes a successful write onto the side channels.
// All of them are best-effort; a failed announcement never fails the
// request that caused it. action names the entry point ("set_var" for
// the hook, "mqtt_set" for the broker channel).
func (s *Server) announceWrite(action string, result variable.WriteResult) {
	s.auditLog(action, result.VarID, result.Used, "", true)

	if s.mqtt != nil {
		payload, err := json.Marshal(map[string]any{
			"var_id": result.VarID,
			"value":  result.Value,
			"used":   result.Used,
			"ts":     time.Now().Unix(),
		})
		if err == nil {
			topic := mqtt.Topics{}.VariableState(result.VarID)
			if perr := s.mqtt.PublishRetained(topic, payload); perr != nil {
				s.logger.Warn("state announce failed",
					"var_id", result.VarID,
					"error", perr,
				)
			}
		}
	}

	if s.influx != nil {
		s.influx.RecordWrite(result.VarID, result.Used, result.Value)
	}
}

// decodeArgs unmarshals the args object, tolerating a missing one.
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &apiError{
			Status:  http.StatusBadRequest,
			Message: "invalid args",
		}
	}
	return nil
}

// varNotFound builds the 404 failure for an unresolved variable id.
func varNotFound(varID int) *apiError {
	return &apiError{
		Status:  http.StatusNotFound,
		Message: "variable not found",
		Data:    map[string]any{"var_id": varID},
	}
}
