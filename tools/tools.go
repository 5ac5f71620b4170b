// Package tools implements the MCP tool surface of the webpuppet server:
// the uniform tool contract, the shared execution context handed to every
// invocation, and the registry that dispatches calls by name.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/intervention"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// Tool is the contract every tool implements. Definition must be pure;
// Execute receives raw, registry-validated arguments plus the shared
// execution context.
type Tool interface {
	Definition() mcp.Tool
	Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error)
}

// Automation is the narrow contract the tool layer consumes from the
// browser-automation collaborator.
type Automation interface {
	Authenticate(ctx context.Context, provider automation.Provider) error
	PromptScreened(ctx context.Context, provider automation.Provider, req automation.PromptRequest) (automation.PromptResponse, automation.Screening, error)
	Session(ctx context.Context, provider automation.Provider) (AutomationSession, error)
	Close(ctx context.Context) error
}

// AutomationSession is one provider-scoped page the tool layer can steer.
type AutomationSession interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
}

// AutomationFactory builds the automation handle on first use. It is
// invoked lazily because launching a browser is expensive and many tool
// calls (status, permission checks) never need one.
type AutomationFactory func(ctx context.Context) (Automation, error)

// Context is the shared execution context referenced by every tool
// invocation. It is created once per server instance; the inner
// automation handle is the only rebuildable part.
type Context struct {
	Guard        *guard.Guard
	Screening    automation.ScreeningConfig
	Intervention *intervention.Handler
	// Headless reports the configured browser visibility mode.
	Headless bool

	log *slog.Logger

	mu      sync.RWMutex
	handle  Automation
	factory AutomationFactory
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithVisibleBrowser makes automation run a visible (non-headless) browser.
func WithVisibleBrowser() ContextOption {
	return func(c *Context) { c.Headless = false }
}

// WithScreeningConfig overrides the response screening configuration.
func WithScreeningConfig(cfg automation.ScreeningConfig) ContextOption {
	return func(c *Context) { c.Screening = cfg }
}

// WithAutomationFactory overrides how the automation handle is built.
// Tests use this to substitute a stub for the real browser.
func WithAutomationFactory(f AutomationFactory) ContextOption {
	return func(c *Context) { c.factory = f }
}

// WithContextLogger sets the diagnostic logger.
func WithContextLogger(l *slog.Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// NewContext builds the shared execution context around a permission
// guard. The automation handle is not constructed until a tool needs it.
func NewContext(g *guard.Guard, opts ...ContextOption) *Context {
	c := &Context{
		Guard:        g,
		Screening:    automation.DefaultScreeningConfig(),
		Intervention: intervention.NewHandler(),
		Headless:     true,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.factory == nil {
		c.factory = puppetFactory(c)
	}
	return c
}

// Automation returns the shared automation handle, constructing it on
// first use. Construction is exclusive; concurrent callers wait rather
// than racing to launch two browsers.
func (c *Context) Automation(ctx context.Context) (Automation, error) {
	c.mu.RLock()
	h := c.handle
	c.mu.RUnlock()
	if h != nil {
		return h, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		return c.handle, nil
	}

	h, err := c.factory(ctx)
	if err != nil {
		return nil, &AutomationError{Err: err}
	}
	c.handle = h
	c.log.Debug("automation handle constructed", slog.Bool("headless", c.Headless))
	return h, nil
}

// ActiveAutomation reports the handle without constructing one.
func (c *Context) ActiveAutomation() (Automation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle, c.handle != nil
}

// CloseAutomation tears down the handle if one was built. The next tool
// that needs automation gets a fresh one.
func (c *Context) CloseAutomation(ctx context.Context) error {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Close(ctx)
}
