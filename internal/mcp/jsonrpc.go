// Package mcp implements a line-delimited JSON-RPC 2.0 server over a byte
// stream, speaking the MCP tool protocol (initialize, tools/list,
// tools/call).
package mcp

import "encoding/json"

// JSON-RPC 2.0 error codes used by this server.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one incoming JSON-RPC message. ID stays raw so that an absent
// id (notification), a null id, the number zero, and string ids are all
// distinguishable and round-trip into the response byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification reports whether the request carries no id at all. A literal
// null id counts as present and still receives a response.
func (r *Request) Notification() bool {
	return len(r.ID) == 0
}

// Response is one outgoing JSON-RPC message. Exactly one of Result or Error
// is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC protocol-level error object. Tool failures do not use
// it; they ride in a successful response with isError set.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
