package symcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
)

// defaultTimeout applies when Config.Timeout is zero.
const defaultTimeout = 10 * time.Second

// Config contains host connection settings.
type Config struct {
	// URL is the JSON-RPC endpoint, e.g. "http://host:3777/api/".
	URL string

	// Username and Password are sent as HTTP basic auth. The host
	// accepts the licence email plus remote-access password.
	Username string
	Password string

	// Timeout bounds each RPC round trip.
	Timeout time.Duration
}

// Client talks to an IP-Symcon host over its JSON-RPC API.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	nextID atomic.Uint64
}

var _ objectstore.Store = (*Client)(nil)

// New creates a Client. It does not contact the host; the first RPC
// does.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Ping verifies the host is reachable and credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	var kernelRunlevel int
	if err := c.call(ctx, "IPS_GetKernelRunlevel", nil, &kernelRunlevel); err != nil {
		return fmt.Errorf("pinging host: %w", err)
	}
	return nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs a single JSON-RPC round trip, decoding the result into
// result when it is non-nil.
func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("encoding rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Username != "" || c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: unexpected status %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return &RPCError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}

type rpcObject struct {
	ObjectID         int    `json:"ObjectID"`
	ParentID         int    `json:"ParentID"`
	ObjectType       int    `json:"ObjectType"`
	ObjectName       string `json:"ObjectName"`
	ObjectIdent      string `json:"ObjectIdent"`
	ObjectIsDisabled bool   `json:"ObjectIsDisabled"`
}

// GetObject implements objectstore.Store.
func (c *Client) GetObject(ctx context.Context, id int) (objectstore.Object, error) {
	var exists bool
	if err := c.call(ctx, "IPS_ObjectExists", []any{id}, &exists); err != nil {
		return objectstore.Object{}, err
	}
	if !exists {
		return objectstore.Object{}, fmt.Errorf("object %d: %w", id, objectstore.ErrNotFound)
	}

	var obj rpcObject
	if err := c.call(ctx, "IPS_GetObject", []any{id}, &obj); err != nil {
		return objectstore.Object{}, err
	}
	return objectstore.Object{
		ID:       obj.ObjectID,
		ParentID: obj.ParentID,
		Kind:     objectstore.ObjectKind(obj.ObjectType),
		Name:     obj.ObjectName,
		Ident:    obj.ObjectIdent,
		Disabled: obj.ObjectIsDisabled,
	}, nil
}

// ChildrenOf implements objectstore.Store.
func (c *Client) ChildrenOf(ctx context.Context, id int) ([]int, error) {
	var children []int
	if err := c.call(ctx, "IPS_GetChildrenIDs", []any{id}, &children); err != nil {
		return nil, err
	}
	return children, nil
}

type rpcVariable struct {
	VariableType          int    `json:"VariableType"`
	VariableProfile       string `json:"VariableProfile"`
	VariableCustomProfile string `json:"VariableCustomProfile"`
	VariableChanged       int64  `json:"VariableChanged"`
	VariableUpdated       int64  `json:"VariableUpdated"`
}

// GetVariable implements objectstore.Store. The standard profile takes
// precedence; the custom profile is the fallback.
func (c *Client) GetVariable(ctx context.Context, id int) (objectstore.VariableInfo, error) {
	var exists bool
	if err := c.call(ctx, "IPS_VariableExists", []any{id}, &exists); err != nil {
		return objectstore.VariableInfo{}, err
	}
	if !exists {
		return objectstore.VariableInfo{}, fmt.Errorf("variable %d: %w", id, objectstore.ErrNotFound)
	}

	var v rpcVariable
	if err := c.call(ctx, "IPS_GetVariable", []any{id}, &v); err != nil {
		return objectstore.VariableInfo{}, err
	}

	profile := v.VariableProfile
	if profile == "" {
		profile = v.VariableCustomProfile
	}
	return objectstore.VariableInfo{
		Type:    v.VariableType,
		Profile: profile,
		Changed: v.VariableChanged,
		Updated: v.VariableUpdated,
	}, nil
}

// GetValue implements objectstore.Store.
func (c *Client) GetValue(ctx context.Context, id int) (any, error) {
	var value any
	if err := c.call(ctx, "GetValue", []any{id}, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// SetValue implements objectstore.Store.
func (c *Client) SetValue(ctx context.Context, id int, value any) error {
	return c.call(ctx, "SetValue", []any{id, value}, nil)
}

type rpcProfile struct {
	ProfileName  string  `json:"ProfileName"`
	Prefix       string  `json:"Prefix"`
	Suffix       string  `json:"Suffix"`
	MinValue     float64 `json:"MinValue"`
	MaxValue     float64 `json:"MaxValue"`
	StepSize     float64 `json:"StepSize"`
	Digits       int     `json:"Digits"`
	Associations []struct {
		Value float64 `json:"Value"`
		Name  string  `json:"Name"`
	} `json:"Associations"`
}

// GetProfile implements objectstore.Store.
func (c *Client) GetProfile(ctx context.Context, name string) (objectstore.ProfileInfo, error) {
	var exists bool
	if err := c.call(ctx, "IPS_VariableProfileExists", []any{name}, &exists); err != nil {
		return objectstore.ProfileInfo{}, err
	}
	if !exists {
		return objectstore.ProfileInfo{}, fmt.Errorf("profile %q: %w", name, objectstore.ErrNotFound)
	}

	var p rpcProfile
	if err := c.call(ctx, "IPS_GetVariableProfile", []any{name}, &p); err != nil {
		return objectstore.ProfileInfo{}, err
	}

	info := objectstore.ProfileInfo{
		Name:     p.ProfileName,
		Prefix:   p.Prefix,
		Suffix:   p.Suffix,
		MinValue: p.MinValue,
		MaxValue: p.MaxValue,
		StepSize: p.StepSize,
		Digits:   p.Digits,
	}
	for _, a := range p.Associations {
		info.Associations = append(info.Associations, objectstore.ProfileAssociation{
			Value: a.Value,
			Name:  a.Name,
		})
	}
	return info, nil
}

// RequestAction implements objectstore.Store.
func (c *Client) RequestAction(ctx context.Context, instanceID int, ident string, value any) error {
	return c.call(ctx, "IPS_RequestAction", []any{instanceID, ident, value}, nil)
}
