package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/internal/jsonrpc"
	"github.com/tzervas/embeddenator-webpuppet-mcp/internal/logctx"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
	"github.com/tzervas/embeddenator-webpuppet-mcp/tools"
)

// ServerName is the implementation name advertised during initialize.
const ServerName = "webpuppet-mcp"

// Version is the implementation version advertised during initialize.
// Overridable at link time.
var Version = "0.1.0"

// State is the server lifecycle state.
type State int

const (
	// StateUninitialized means the initialize handshake has not completed.
	StateUninitialized State = iota
	// StateReady means tool methods are available.
	StateReady
	// StateShuttingDown means the serve loop terminates after the current
	// message.
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Server is a single-connection MCP server. It owns the lifecycle state
// machine and the JSON-RPC dispatch table; tool semantics are delegated to
// the registry.
type Server struct {
	registry *tools.Registry
	info     mcp.ImplementationInfo
	log      *slog.Logger
	reader   io.Reader
	writer   io.Writer

	mu    sync.RWMutex
	state State
}

// New builds a Server around a tool registry. By default it speaks on
// stdin/stdout and discards diagnostics.
func New(registry *tools.Registry, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		info:     mcp.ImplementationInfo{Name: ServerName, Version: Version},
		log:      slog.New(slog.DiscardHandler),
		reader:   os.Stdin,
		writer:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Server) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// Run reads newline-delimited JSON-RPC messages until EOF, context
// cancellation, or shutdown. Each response is written and flushed as its
// own line. A transport write failure terminates the loop with an error;
// EOF and clean shutdown return nil.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	out := bufio.NewWriter(s.writer)

	s.log.Info("server started", slog.String("name", s.info.Name), slog.String("version", s.info.Version))

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}

		res := s.HandleMessage(ctx, line)
		if res != nil {
			if err := writeResponse(out, res); err != nil {
				return fmt.Errorf("transport write: %w", err)
			}
		}

		if s.State() == StateShuttingDown {
			s.log.Info("server shutting down")
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("transport read: %w", err)
	}
	s.log.Info("client closed the connection")
	return nil
}

func writeResponse(out *bufio.Writer, res *jsonrpc.Response) error {
	b, err := jsonrpc.Encode(res)
	if err != nil {
		return err
	}
	if _, err := out.Write(b); err != nil {
		return err
	}
	if err := out.WriteByte('\n'); err != nil {
		return err
	}
	return out.Flush()
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return b[start:end]
}

// HandleMessage processes one raw JSON-RPC message and returns the
// response to write, or nil when the message is a notification or an
// inbound response.
func (s *Server) HandleMessage(ctx context.Context, line []byte) *jsonrpc.Response {
	msg, err := jsonrpc.Decode(line)
	if err != nil {
		s.log.Warn("parse failure", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, "Parse error", err.Error())
	}

	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method: msg.Method,
		ID:     msg.ID.String(),
		Kind:   msg.Kind.String(),
	})

	switch msg.Kind {
	case jsonrpc.KindRequest:
		return s.handleRequest(ctx, msg)
	case jsonrpc.KindNotification:
		s.handleNotification(ctx, msg)
		return nil
	default:
		// A client-originated response has nothing to correlate with;
		// server-to-client requests are not part of this transport.
		s.log.Debug("ignoring inbound response")
		return nil
	}
}

func (s *Server) handleRequest(ctx context.Context, msg *jsonrpc.Message) *jsonrpc.Response {
	s.log.Debug("handling request", slog.String("method", msg.Method))

	switch mcp.Method(msg.Method) {
	case mcp.InitializeMethod:
		return s.handleInitialize(msg)
	case mcp.PingMethod:
		return s.resultResponse(msg.ID, mcp.EmptyResult{})
	case mcp.ShutdownMethod:
		s.setState(StateShuttingDown)
		return s.resultResponse(msg.ID, mcp.EmptyResult{})
	case mcp.ToolsListMethod:
		if s.State() != StateReady {
			return s.notInitialized(msg.ID)
		}
		return s.resultResponse(msg.ID, mcp.ListToolsResult{Tools: s.registry.List()})
	case mcp.ToolsCallMethod:
		if s.State() != StateReady {
			return s.notInitialized(msg.ID)
		}
		return s.handleToolsCall(ctx, msg)
	default:
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

// handleInitialize completes (or repeats) the handshake. A duplicate
// initialize is re-accepted and capabilities are re-advertised.
func (s *Server) handleInitialize(msg *jsonrpc.Message) *jsonrpc.Response {
	var req mcp.InitializeRequest
	if len(msg.Params) == 0 {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeInvalidParams,
			"initialize requires parameters", nil)
	}
	if err := json.Unmarshal(msg.Params, &req); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeInvalidParams,
			fmt.Sprintf("invalid initialize parameters: %v", err), nil)
	}

	s.log.Info("client initialized",
		slog.String("client", req.ClientInfo.Name),
		slog.String("client_version", req.ClientInfo.Version),
		slog.String("protocol", req.ProtocolVersion))

	s.setState(StateReady)
	return s.resultResponse(msg.ID, mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities:    mcp.ToolsOnlyCapabilities(),
		ServerInfo:      s.info,
	})
}

func (s *Server) handleToolsCall(ctx context.Context, msg *jsonrpc.Message) *jsonrpc.Response {
	var req mcp.CallToolRequest
	if err := json.Unmarshal(msg.Params, &req); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeInvalidParams,
			fmt.Sprintf("invalid tools/call parameters: %v", err), nil)
	}
	if req.Name == "" {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeInvalidParams,
			"tools/call requires a tool name", nil)
	}

	result, err := s.registry.Execute(ctx, req.Name, req.Arguments)
	if err != nil {
		code := errorCodeFor(err)
		s.log.Warn("tool call failed",
			slog.String("tool", req.Name),
			slog.Int("code", int(code)),
			slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(msg.ID, code, err.Error(), nil)
	}
	return s.resultResponse(msg.ID, result)
}

func (s *Server) handleNotification(ctx context.Context, msg *jsonrpc.Message) {
	switch mcp.Method(msg.Method) {
	case mcp.InitializedNotificationMethod:
		s.log.Info("client reported initialized")
	case mcp.CancelledNotificationMethod:
		var n mcp.CancelledNotification
		_ = json.Unmarshal(msg.Params, &n)
		// Acknowledged only; the current call runs to completion.
		s.log.Info("client cancelled a request",
			slog.Any("request_id", n.RequestID),
			slog.String("reason", n.Reason))
	case mcp.ExitNotificationMethod:
		s.log.Info("client requested exit")
		s.setState(StateShuttingDown)
	default:
		s.log.Debug("ignoring notification", slog.String("method", msg.Method))
	}
}

func (s *Server) notInitialized(id *jsonrpc.RequestID) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError,
		"server not initialized", nil)
}

func (s *Server) resultResponse(id *jsonrpc.RequestID, result any) *jsonrpc.Response {
	res, err := jsonrpc.NewResultResponse(id, result)
	if err != nil {
		s.log.Error("failed to marshal result", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError,
			"failed to marshal result", nil)
	}
	return res
}

// errorCodeFor maps any dispatch or tool error to exactly one wire code.
func errorCodeFor(err error) jsonrpc.ErrorCode {
	var denied *guard.DeniedError
	var notFound *tools.NotFoundError
	var invalid *tools.InvalidParamsError
	var autoErr *tools.AutomationError
	var needs *automation.InterventionNeededError

	switch {
	case errors.As(err, &denied):
		return jsonrpc.ErrorCodePermissionDenied
	case errors.As(err, &notFound):
		return jsonrpc.ErrorCodeToolNotFound
	case errors.As(err, &invalid):
		return jsonrpc.ErrorCodeInvalidParams
	case errors.As(err, &autoErr), errors.As(err, &needs):
		return jsonrpc.ErrorCodeAutomationError
	default:
		return jsonrpc.ErrorCodeInternalError
	}
}
