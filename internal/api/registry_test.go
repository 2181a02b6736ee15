package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-bridge/internal/audit"
	"github.com/nerrad567/gray-bridge/internal/device"
)

// doJSON sends an authenticated request to the registry REST routes.
func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)

	rr := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rr, req)
	return rr
}

func TestHealthNoAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without a token", rr.Code)
	}
}

func TestRegistryRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	rr := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestUpsertListDeleteEntry(t *testing.T) {
	srv, _ := newTestServer(t)

	entry := device.Entry{
		VarID:   12345,
		Kind:    "light",
		Floor:   "Ground Floor",
		Room:    "Kitchen",
		Name:    "Spots",
		Enabled: true,
	}

	rr := doJSON(t, srv, http.MethodPut, "/api/v1/devices", entry)
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/v1/devices", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}

	var listed struct {
		Entries []device.Entry `json:"entries"`
		Count   int            `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if listed.Count != 1 || len(listed.Entries) != 1 {
		t.Fatalf("count = %d, want 1", listed.Count)
	}
	if listed.Entries[0].Room != "Kitchen" {
		t.Errorf("room = %q, want %q", listed.Entries[0].Room, "Kitchen")
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/v1/devices/12345", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/v1/devices/12345", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rr.Code)
	}
}

func TestUpsertEntryValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPut, "/api/v1/devices", device.Entry{VarID: 0})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for var_id 0", rr.Code)
	}
}

func TestDeleteEntryBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodDelete, "/api/v1/devices/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for non-numeric id", rr.Code)
	}
}

func TestListRooms(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	for _, e := range []device.Entry{
		{VarID: 1, Room: "Kitchen", Enabled: true},
		{VarID: 2, Room: "Bedroom", Enabled: true},
		{VarID: 3, Room: "Kitchen", Enabled: true},
	} {
		entry := e
		if err := srv.repo.Upsert(ctx, &entry); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/rooms", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Rooms []string `json:"rooms"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding rooms: %v", err)
	}

	want := []string{"Bedroom", "Kitchen"}
	if len(resp.Rooms) != len(want) {
		t.Fatalf("rooms = %v, want %v", resp.Rooms, want)
	}
	for i := range want {
		if resp.Rooms[i] != want[i] {
			t.Errorf("rooms[%d] = %q, want %q", i, resp.Rooms[i], want[i])
		}
	}
}

func TestListAudit(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	logs := []audit.AuditLog{
		{Action: "set_var", VarID: 100, Used: "request_action", Success: true},
		{Action: "set_var", VarID: 200, Used: "set_value", Success: true},
		{Action: "registry_delete", VarID: 100, Success: true},
	}
	for i := range logs {
		if err := srv.auditRepo.Create(ctx, &logs[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/audit?var_id=100", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var result audit.ListResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding audit list: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/v1/audit?action=registry_delete", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding audit list: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
}

func TestUpsertEntryEnabledDefaultsTrue(t *testing.T) {
	srv, _ := newTestServer(t)

	// No "enabled" field in the body.
	rr := doJSON(t, srv, http.MethodPut, "/api/v1/devices", map[string]any{
		"var_id": 100,
		"kind":   "light",
		"room":   "Kitchen",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, want 200", rr.Code)
	}

	var stored device.Entry
	if err := json.Unmarshal(rr.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decoding entry: %v", err)
	}
	if !stored.Enabled {
		t.Error("enabled = false after omitting the field, want default true")
	}

	// An explicit false still sticks.
	rr = doJSON(t, srv, http.MethodPut, "/api/v1/devices", map[string]any{
		"var_id":  100,
		"kind":    "light",
		"room":    "Kitchen",
		"enabled": false,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, want 200", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decoding entry: %v", err)
	}
	if stored.Enabled {
		t.Error("enabled = true after explicit false")
	}
}

func TestVariableHistoryNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/history/100", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when InfluxDB is off", rr.Code)
	}
}

func TestVariableHistoryBadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/v1/history/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for non-numeric variable id", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/v1/history/100?since=yesterday", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for malformed since duration", rr.Code)
	}
}
