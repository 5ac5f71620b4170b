package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// Kind classifies a decoded message. Classification happens exactly once,
// at decode time; downstream code switches on the tag instead of
// re-inspecting field presence.
type Kind int

const (
	// KindRequest is a method call carrying an id; the peer expects a response.
	KindRequest Kind = iota
	// KindNotification is a method call without an id; no response is emitted.
	KindNotification
	// KindResponse is a result or error answering an earlier request.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	default:
		return "invalid"
	}
}

// Message is a decoded and classified JSON-RPC message.
type Message struct {
	Kind   Kind
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Error  *Error
	ID     *RequestID
}

// Response is an outgoing JSON-RPC response. Result and Error are mutually
// exclusive; exactly one is set by the constructors below.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             *RequestID      `json:"id"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Decode parses one line of transport input into a classified Message.
//
// A JSON object carrying a method field is a request when it also carries
// an id, otherwise a notification. An object carrying result or error (and
// no method) is a response. Anything else is rejected. The jsonrpc version
// tag is tolerated but not required on inbound messages; when present it
// must be "2.0".
func Decode(data []byte) (*Message, error) {
	var raw struct {
		JSONRPCVersion *string         `json:"jsonrpc"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params"`
		Result         json.RawMessage `json:"result"`
		Error          *Error          `json:"error"`
		ID             *RequestID      `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if raw.JSONRPCVersion != nil && *raw.JSONRPCVersion != ProtocolVersion {
		return nil, fmt.Errorf("unsupported JSON-RPC version %q", *raw.JSONRPCVersion)
	}

	msg := &Message{
		Method: raw.Method,
		Params: raw.Params,
		Result: raw.Result,
		Error:  raw.Error,
		ID:     raw.ID,
	}

	switch {
	case raw.Method != "":
		if len(raw.Result) > 0 || raw.Error != nil {
			return nil, fmt.Errorf("message mixes method %q with result or error", raw.Method)
		}
		if raw.ID != nil {
			msg.Kind = KindRequest
		} else {
			msg.Kind = KindNotification
		}
	case len(raw.Result) > 0 || raw.Error != nil:
		if len(raw.Result) > 0 && raw.Error != nil {
			return nil, fmt.Errorf("response carries both result and error")
		}
		msg.Kind = KindResponse
	default:
		return nil, fmt.Errorf("message is neither a request, notification, nor response")
	}

	return msg, nil
}

// Encode serializes a response as a single JSON document with no trailing
// newline; line framing belongs to the transport.
func Encode(res *Response) ([]byte, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return b, nil
}

// NewResultResponse builds a successful response for the given request id.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		ID:             id,
		Result:         b,
	}, nil
}

// NewErrorResponse builds an error response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string, data any) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		ID:             id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
