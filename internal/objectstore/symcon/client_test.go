package symcon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
)

// fakeHost is a minimal JSON-RPC responder keyed by method name.
func fakeHost(t *testing.T, handlers map[string]func(params []any) (any, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
			ID     uint64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding rpc request: %v", err)
			return
		}

		handler, ok := handlers[req.Method]
		if !ok {
			t.Errorf("unexpected rpc method %q", req.Method)
			return
		}

		result, rpcErr := handler(req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = map[string]any{"code": rpcErr.Code, "message": rpcErr.Message}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encoding rpc response: %v", err)
		}
	}))
}

func newTestClient(url string) *Client {
	return New(Config{URL: url, Username: "api@local", Password: "pw", Timeout: 5 * time.Second})
}

func TestClient_GetObject(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"IPS_ObjectExists": func([]any) (any, *RPCError) { return true, nil },
		"IPS_GetObject": func([]any) (any, *RPCError) {
			return map[string]any{
				"ObjectID":         12345,
				"ParentID":         100,
				"ObjectType":       2,
				"ObjectName":       "Brightness",
				"ObjectIdent":      "BRIGHTNESS",
				"ObjectIsDisabled": false,
			}, nil
		},
	})
	defer srv.Close()

	obj, err := newTestClient(srv.URL).GetObject(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if obj.ID != 12345 || obj.ParentID != 100 {
		t.Errorf("got object %+v", obj)
	}
	if obj.Kind != objectstore.KindVariable {
		t.Errorf("Kind = %v, want KindVariable", obj.Kind)
	}
	if obj.Ident != "BRIGHTNESS" {
		t.Errorf("Ident = %q, want BRIGHTNESS", obj.Ident)
	}
}

func TestClient_GetObject_NotFound(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"IPS_ObjectExists": func([]any) (any, *RPCError) { return false, nil },
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetObject(context.Background(), 99999)
	if !errors.Is(err, objectstore.ErrNotFound) {
		t.Errorf("GetObject(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestClient_GetVariable_StandardProfileWins(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"IPS_VariableExists": func([]any) (any, *RPCError) { return true, nil },
		"IPS_GetVariable": func([]any) (any, *RPCError) {
			return map[string]any{
				"VariableType":          1,
				"VariableProfile":       "~Intensity.100",
				"VariableCustomProfile": "MyDimmer",
				"VariableChanged":       1700000000,
				"VariableUpdated":       1700000100,
			}, nil
		},
	})
	defer srv.Close()

	info, err := newTestClient(srv.URL).GetVariable(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetVariable() error = %v", err)
	}
	if info.Profile != "~Intensity.100" {
		t.Errorf("Profile = %q, want standard profile to win", info.Profile)
	}
	if info.Type != 1 {
		t.Errorf("Type = %d, want 1", info.Type)
	}
	if info.Changed != 1700000000 || info.Updated != 1700000100 {
		t.Errorf("timestamps = %d/%d", info.Changed, info.Updated)
	}
}

func TestClient_GetVariable_CustomProfileFallback(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"IPS_VariableExists": func([]any) (any, *RPCError) { return true, nil },
		"IPS_GetVariable": func([]any) (any, *RPCError) {
			return map[string]any{
				"VariableType":          1,
				"VariableProfile":       "",
				"VariableCustomProfile": "MyDimmer",
				"VariableChanged":       1700000000,
				"VariableUpdated":       1700000100,
			}, nil
		},
	})
	defer srv.Close()

	info, err := newTestClient(srv.URL).GetVariable(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetVariable() error = %v", err)
	}
	if info.Profile != "MyDimmer" {
		t.Errorf("Profile = %q, want custom profile when no standard profile is set", info.Profile)
	}
}

func TestClient_SetValueAndRequestAction(t *testing.T) {
	var setParams, actionParams []any
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"SetValue": func(params []any) (any, *RPCError) {
			setParams = params
			return true, nil
		},
		"IPS_RequestAction": func(params []any) (any, *RPCError) {
			actionParams = params
			return true, nil
		},
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx := context.Background()

	if err := client.SetValue(ctx, 42, 21.5); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if len(setParams) != 2 || setParams[0] != float64(42) {
		t.Errorf("SetValue params = %v", setParams)
	}

	if err := client.RequestAction(ctx, 100, "STATE", true); err != nil {
		t.Fatalf("RequestAction() error = %v", err)
	}
	if len(actionParams) != 3 || actionParams[1] != "STATE" {
		t.Errorf("RequestAction params = %v", actionParams)
	}
}

func TestClient_RPCError(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"SetValue": func([]any) (any, *RPCError) {
			return nil, &RPCError{Code: -32603, Message: "instance rejected the value"}
		},
	})
	defer srv.Close()

	err := newTestClient(srv.URL).SetValue(context.Background(), 42, "x")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("SetValue() error = %v, want *RPCError", err)
	}
	if rpcErr.Code != -32603 {
		t.Errorf("Code = %d, want -32603", rpcErr.Code)
	}
}

func TestClient_BasicAuthSent(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"jsonrpc":"2.0","result":true,"id":1}`)); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).SetValue(context.Background(), 1, true); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if !gotOK || gotUser != "api@local" || gotPass != "pw" {
		t.Errorf("basic auth = %q/%q (ok=%v)", gotUser, gotPass, gotOK)
	}
}

func TestClient_GetProfile(t *testing.T) {
	srv := fakeHost(t, map[string]func([]any) (any, *RPCError){
		"IPS_VariableProfileExists": func([]any) (any, *RPCError) { return true, nil },
		"IPS_GetVariableProfile": func([]any) (any, *RPCError) {
			return map[string]any{
				"ProfileName": "~Intensity.100",
				"Suffix":      " %",
				"MinValue":    0,
				"MaxValue":    100,
				"StepSize":    1,
				"Associations": []map[string]any{
					{"Value": 0, "Name": "Off"},
				},
			}, nil
		},
	})
	defer srv.Close()

	p, err := newTestClient(srv.URL).GetProfile(context.Background(), "~Intensity.100")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.MaxValue != 100 || p.Suffix != " %" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Associations) != 1 || p.Associations[0].Name != "Off" {
		t.Errorf("associations = %+v", p.Associations)
	}
}
