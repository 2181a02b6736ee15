package symcon

import "fmt"

// RPCError is an error returned by the host itself, as opposed to a
// transport failure reaching it.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("host rpc error %d: %s", e.Code, e.Message)
}
