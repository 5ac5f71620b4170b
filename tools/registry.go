package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tzervas/embeddenator-webpuppet-mcp/internal/logctx"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// Registry is the name-keyed table of tools plus the shared execution
// context. It is a pure dispatch table: authorization lives inside each
// tool's own execute logic, not here.
type Registry struct {
	tc  *Context
	log *slog.Logger

	mu      sync.RWMutex
	order   []string
	entries map[string]*registryEntry
}

type registryEntry struct {
	tool   Tool
	schema *jsonschema.Schema
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the diagnostic logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry builds a registry around the shared context and registers
// every built-in tool.
func NewRegistry(tc *Context, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		tc:      tc,
		log:     slog.New(slog.DiscardHandler),
		entries: make(map[string]*registryEntry),
	}
	for _, opt := range opts {
		opt(r)
	}

	builtins := []Tool{
		&PromptTool{},
		&ListProvidersTool{},
		&ProviderCapabilitiesTool{},
		&DetectBrowsersTool{},
		&ScreenshotTool{},
		&CheckPermissionTool{},
		&InterventionStatusTool{},
		&InterventionCompleteTool{},
		&PauseTool{},
		&ResumeTool{},
		&NavigateTool{},
		&BrowserStatusTool{},
	}
	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register inserts a tool, keyed by its definition name. Re-registering a
// name replaces the previous tool in place: last write wins, and the
// tool keeps its original position in listings.
func (r *Registry) Register(t Tool) error {
	def := t.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}

	schema, err := compileInputSchema(def)
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.entries[def.Name] = &registryEntry{tool: t, schema: schema}
	return nil
}

// List returns every registered tool's definition in registration order,
// stable across calls so peers can cache the listing.
func (r *Registry) List() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].tool.Definition())
	}
	return defs
}

// Execute resolves a tool by name, validates the arguments against its
// declared input schema, and invokes it with the shared context.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	if err := validateArguments(entry.schema, args); err != nil {
		return nil, err
	}

	ctx = logctx.WithToolName(ctx, name)
	r.log.Debug("executing tool", slog.String("name", name))

	result, err := entry.tool.Execute(ctx, args, r.tc)
	if err != nil {
		r.log.Warn("tool failed", slog.String("name", name), slog.String("err", err.Error()))
		return nil, err
	}
	return result, nil
}

func compileInputSchema(def mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(def.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	resource := "inline://" + def.Name + ".schema.json"
	if err := c.AddResource(resource, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("failed to load input schema: %w", err)
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile input schema: %w", err)
	}
	return schema, nil
}

func validateArguments(schema *jsonschema.Schema, args json.RawMessage) error {
	var v any = map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &v); err != nil {
			return &InvalidParamsError{Reason: fmt.Sprintf("arguments are not valid JSON: %v", err)}
		}
	}
	if err := schema.Validate(v); err != nil {
		return &InvalidParamsError{Reason: err.Error()}
	}
	return nil
}

// decodeArgs unmarshals validated arguments into a typed struct.
func decodeArgs[A any](args json.RawMessage) (A, error) {
	var a A
	if len(args) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return a, &InvalidParamsError{Reason: err.Error()}
	}
	return a, nil
}

// textResult wraps plain text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{mcp.TextContent(text)}}
}

// errorResult wraps text in a tool-level error result: the call succeeded
// at the transport tier, the operation's outcome was negative.
func errorResult(format string, a ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{mcp.TextContent(fmt.Sprintf(format, a...))},
		IsError: true,
	}
}
