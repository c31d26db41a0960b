package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/richhaase/gerrit-review-agent/internal/tools"
)

// ProtocolVersion is the MCP protocol revision this server implements.
const ProtocolVersion = "2024-11-05"

// maxLineBytes bounds one protocol frame. Tool results (file contents,
// comment maps) can be large; a megabyte leaves generous headroom.
const maxLineBytes = 1024 * 1024

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertises what the server supports. Only tools.
type Capabilities struct {
	Tools struct{} `json:"tools"`
}

// InitializeResult is the response payload for the initialize method.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ListToolsResult is the response payload for tools/list.
type ListToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

// CallParams are the parameters of a tools/call request.
type CallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ContentBlock is one piece of tool output. This server only emits text.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the response payload for tools/call. Tool-level failures set
// IsError and carry the message as text, so the calling agent can read and
// reason about the failure instead of treating it as a transport fault.
type CallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Server reads line-delimited JSON-RPC requests, dispatches them against a
// tool registry, and writes line-delimited responses. Dispatch is
// serialized: one message is handled to completion before the next line is
// read, so output order always matches input order.
type Server struct {
	registry *tools.Registry
	info     ServerInfo
	logger   *slog.Logger
}

// NewServer creates a protocol server over the given tool registry. The
// logger must write somewhere other than the protocol output stream.
func NewServer(registry *tools.Registry, info ServerInfo, logger *slog.Logger) *Server {
	return &Server{
		registry: registry,
		info:     info,
		logger:   logger,
	}
}

// Serve consumes in line by line until EOF or a read error. Empty lines are
// skipped. A line that does not parse as a JSON-RPC message is dropped
// silently; the line framing makes that locally recoverable. Every request
// with an id (including 0 and null) gets exactly one response line;
// notifications are processed but never answered.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	writer := bufio.NewWriter(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Debug("dropping unparseable input line", "error", err)
			continue
		}

		resp := s.dispatch(ctx, &req)

		if req.Notification() {
			continue
		}
		if err := s.writeResponse(writer, resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input stream: %w", err)
	}
	return nil
}

// dispatch routes one request. It never panics past this frame: unexpected
// failures come back as an internal error response.
func (s *Server) dispatch(ctx context.Context, req *Request) (resp *Response) {
	resp = &Response{JSONRPC: "2.0", ID: req.ID}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic", "method", req.Method, "panic", r)
			resp.Result = nil
			resp.Error = &Error{Code: CodeInternalError, Message: fmt.Sprint(r)}
		}
	}()

	switch req.Method {
	case "initialize":
		s.logger.Info("initialize", "client_protocol", protocolVersionOf(req.Params))
		resp.Result = InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      s.info,
		}

	case "tools/list":
		resp.Result = ListToolsResult{Tools: s.registry.List()}

	case "tools/call":
		s.handleToolCall(ctx, req, resp)

	default:
		resp.Error = &Error{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}
	}

	return resp
}

// handleToolCall executes one tool. Registry failures (unknown tool, bad
// arguments, REST errors) become isError results, not protocol errors.
func (s *Server) handleToolCall(ctx context.Context, req *Request, resp *Response) {
	var params CallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		resp.Error = &Error{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
		return
	}
	if params.Name == "" {
		resp.Error = &Error{Code: CodeInvalidParams, Message: "invalid params: missing tool name"}
		return
	}

	start := time.Now()
	text, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", params.Name, "duration", time.Since(start), "error", err)
		resp.Result = CallResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}
		return
	}

	s.logger.Info("tool call completed", "tool", params.Name, "duration", time.Since(start))
	resp.Result = CallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// writeResponse emits one response as a single line and flushes it. A
// response that cannot be encoded degrades to an internal error with the
// same id.
func (s *Server) writeResponse(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		fallback := Response{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &Error{Code: CodeInternalError, Message: "failed to encode response"},
		}
		data, err = json.Marshal(fallback)
		if err != nil {
			return err
		}
	}

	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// protocolVersionOf extracts the client's protocolVersion from initialize
// params for logging. Best effort only.
func protocolVersionOf(params json.RawMessage) string {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return ""
	}
	return p.ProtocolVersion
}
