package sugar

import (
	"errors"
	"fmt"
)

// ErrBatchTooLarge is returned when a price request exceeds the oracle batch limit.
var ErrBatchTooLarge = errors.New("price batch too large")

// RPCError wraps a transport failure of one contract call.
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// DecodeError reports a contract response that does not match the expected tuple layout.
// Index is -1 when the failure concerns the tuple as a whole.
type DecodeError struct {
	Tuple string
	Index int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s: %v", e.Tuple, e.Err)
	}
	return fmt.Sprintf("decode %s field %d (%s): %v", e.Tuple, e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
