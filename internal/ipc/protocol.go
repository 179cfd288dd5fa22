// Package ipc is the request/response boundary between the presentation
// process and the host process that owns the store.
//
// Messages are single-line JSON objects. A request names an operation and
// carries positional arguments; the response echoes the request id and holds
// either a result or an error string.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Operation names understood by the host.
const (
	OpGetTodos   = "get-todos"
	OpSaveTodos  = "save-todos"
	OpAddTodo    = "add-todo"
	OpUpdateTodo = "update-todo"
	OpDeleteTodo = "delete-todo"
)

var (
	// ErrClosed is returned by calls pending or issued after the connection ended.
	ErrClosed = errors.New("ipc: connection closed")
	// ErrUnknownOp is reported for operation names the host does not serve.
	ErrUnknownOp = errors.New("unknown operation")
)

// Request is one call across the boundary.
type Request struct {
	ID   string            `json:"id"`
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args,omitempty"`
}

// Response answers the Request with the same ID.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RemoteError carries a failure reported by the host.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Message) }

// addArgs is the payload of add-todo.
type addArgs struct {
	Text string `json:"text"`
}
