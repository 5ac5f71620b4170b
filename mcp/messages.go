package mcp

import "encoding/json"

// Method is an MCP method identifier used in JSON-RPC messages.
type Method string

// MCP method names and notifications handled by this server.
const (
	InitializeMethod Method = "initialize"
	ToolsListMethod  Method = "tools/list"
	ToolsCallMethod  Method = "tools/call"
	PingMethod       Method = "ping"
	ShutdownMethod   Method = "shutdown"

	InitializedNotificationMethod Method = "notifications/initialized"
	CancelledNotificationMethod   Method = "notifications/cancelled"
	ExitNotificationMethod        Method = "exit"
)

// ProtocolVersion is the MCP protocol revision this server negotiates.
const ProtocolVersion = "2024-11-05"

// InitializeRequest starts the MCP initialization handshake.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ImplementationInfo `json:"clientInfo"`
}

// InitializeResult returns negotiated capabilities and server info.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ImplementationInfo `json:"serverInfo"`
}

// ListToolsResult returns the available tools.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolRequest is the server-received representation of a tool call.
// Arguments stay raw until the registry validates and decodes them.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is a tool invocation outcome. IsError marks a tool-level
// failure that is still a transport-level success: the call mechanics
// worked, the requested operation's outcome was negative.
type CallToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// CancelledNotification informs the server that a request was cancelled.
type CancelledNotification struct {
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

// EmptyResult is returned for operations that do not return data.
type EmptyResult struct{}
