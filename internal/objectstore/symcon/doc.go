// Package symcon implements the objectstore.Store interface against a
// live IP-Symcon host using its JSON-RPC API.
//
// Every Store method maps onto one or two RPC calls. Existence is
// checked explicitly (IPS_ObjectExists, IPS_VariableExists) before
// fetching, because the host reports missing IDs as generic RPC
// errors that cannot be told apart from real failures.
//
// Usage:
//
//	client := symcon.New(symcon.Config{
//	    URL:      "http://192.168.1.10:3777/api/",
//	    Username: "api@local",
//	    Password: "secret",
//	    Timeout:  10 * time.Second,
//	})
//	obj, err := client.GetObject(ctx, 12345)
package symcon
