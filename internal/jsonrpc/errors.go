package jsonrpc

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

// Reserved JSON-RPC 2.0 codes plus the application range used by this
// server. Tool-not-found gets its own application code so peers can tell
// "no such RPC method" apart from "no such tool".
const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603

	// ErrorCodePermissionDenied indicates the security policy rejected the operation.
	ErrorCodePermissionDenied ErrorCode = -32000
	// ErrorCodeAutomationError indicates the browser automation collaborator failed.
	ErrorCodeAutomationError ErrorCode = -32001
	// ErrorCodeIOError indicates a transport-level I/O failure.
	ErrorCodeIOError ErrorCode = -32002
	// ErrorCodeToolNotFound indicates tools/call named a tool that is not registered.
	ErrorCodeToolNotFound ErrorCode = -32003
)
