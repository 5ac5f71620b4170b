// Package logctx decorates slog records with request-scoped attributes
// carried on the context: the JSON-RPC message being handled and the tool
// being executed, when either is known.
package logctx

import (
	"context"
	"log/slog"
)

// Handler wraps another slog.Handler and injects context-carried groups.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if m, ok := ctx.Value(rpcMsgKey{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", m.Method),
			slog.String("id", m.ID),
			slog.String("type", m.Kind),
		))
	}

	if name, ok := ctx.Value(toolNameKey{}).(string); ok {
		r.AddAttrs(slog.Group("tool", slog.String("name", name)))
	}

	return h.Handler.Handle(ctx, r)
}

type rpcMsgKey struct{}

// RPCMessage identifies the inbound message a log record belongs to.
type RPCMessage struct {
	Method string
	ID     string
	Kind   string
}

// WithRPCMessage attaches message identity to the context.
func WithRPCMessage(ctx context.Context, m *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsgKey{}, m)
}

type toolNameKey struct{}

// WithToolName attaches the executing tool's name to the context.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}
