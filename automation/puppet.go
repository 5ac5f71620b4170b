package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PromptRequest is one prompt to dispatch through a provider UI.
type PromptRequest struct {
	Message string
	// Context is an optional system-style preamble prepended to the message.
	Context string
}

// PromptResponse is the provider's reply text.
type PromptResponse struct {
	Text string
}

// InterventionNeededError signals that automation hit a step only a human
// can complete, such as a CAPTCHA or a login wall.
type InterventionNeededError struct {
	Provider Provider
	Reason   string
}

func (e *InterventionNeededError) Error() string {
	return fmt.Sprintf("%s requires human intervention: %s", e.Provider, e.Reason)
}

// providerSelectors maps each provider to the DOM handles the prompt flow
// needs. These track the provider UIs and are expected to rot; failures
// surface as automation errors, never silent truncation.
var providerSelectors = map[Provider]struct {
	input    string
	response string
}{
	ProviderClaude:     {input: "div[contenteditable='true']", response: "div[data-testid='assistant-message']"},
	ProviderGrok:       {input: "textarea", response: "div[data-testid='grok-response']"},
	ProviderGemini:     {input: "div.ql-editor", response: "message-content"},
	ProviderChatGPT:    {input: "#prompt-textarea", response: "div[data-message-author-role='assistant']"},
	ProviderPerplexity: {input: "textarea", response: "div.prose"},
	ProviderNotebookLM: {input: "textarea", response: "div.response"},
	ProviderKaggle:     {input: "input[type='search']", response: "ul[role='list']"},
}

// Option configures a Puppet.
type Option func(*Puppet)

// WithHeadless controls browser visibility. Headless is the default.
func WithHeadless(headless bool) Option {
	return func(p *Puppet) { p.headless = headless }
}

// WithScreening sets the response screening configuration.
func WithScreening(cfg ScreeningConfig) Option {
	return func(p *Puppet) { p.screening = cfg }
}

// WithLogger sets the diagnostic logger. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Puppet) {
		if l != nil {
			p.log = l
		}
	}
}

// Puppet drives provider web UIs through one Playwright-managed browser.
// Sessions are created per provider and reused until Close.
type Puppet struct {
	headless  bool
	screening ScreeningConfig
	log       *slog.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	sessions map[Provider]*Session
}

// NewPuppet starts Playwright and launches the browser. The returned
// Puppet must be closed to release the browser process.
func NewPuppet(ctx context.Context, opts ...Option) (*Puppet, error) {
	p := &Puppet{
		headless:  true,
		screening: DefaultScreeningConfig(),
		log:       slog.New(slog.DiscardHandler),
		sessions:  make(map[Provider]*Session),
	}
	for _, opt := range opts {
		opt(p)
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	p.pw = pw
	p.browser = browser
	p.log.Debug("browser launched", slog.Bool("headless", p.headless))
	return p, nil
}

// Session returns the existing session for the provider, creating one on
// first use.
func (p *Puppet) Session(ctx context.Context, provider Provider) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[provider]; ok {
		return s, nil
	}

	bctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1280, Height: 900},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &Session{provider: provider, bctx: bctx, page: page}
	p.sessions[provider] = s
	return s, nil
}

// Authenticate establishes a usable session with the provider. The flow
// relies on whatever cookies the browser profile already carries; when a
// login wall is detected the caller gets an InterventionNeededError so a
// human can finish signing in.
func (p *Puppet) Authenticate(ctx context.Context, provider Provider) error {
	s, err := p.Session(ctx, provider)
	if err != nil {
		return err
	}
	if err := s.Navigate(ctx, provider.homeURL()); err != nil {
		return err
	}

	current, err := s.CurrentURL(ctx)
	if err != nil {
		return err
	}
	if looksLikeLoginWall(current) {
		return &InterventionNeededError{Provider: provider, Reason: "login required"}
	}
	return nil
}

// PromptScreened sends a prompt through the provider UI, reads the reply,
// and screens it. Screening never suppresses the reply; the result and
// score travel back together so callers can annotate risky content.
func (p *Puppet) PromptScreened(ctx context.Context, provider Provider, req PromptRequest) (PromptResponse, Screening, error) {
	sel, ok := providerSelectors[provider]
	if !ok {
		return PromptResponse{}, Screening{}, fmt.Errorf("no automation flow for provider %s", provider)
	}

	s, err := p.Session(ctx, provider)
	if err != nil {
		return PromptResponse{}, Screening{}, err
	}
	if err := s.Navigate(ctx, provider.homeURL()); err != nil {
		return PromptResponse{}, Screening{}, err
	}

	message := req.Message
	if req.Context != "" {
		message = req.Context + "\n\n" + message
	}

	if _, err := s.page.WaitForSelector(sel.input, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(15_000),
	}); err != nil {
		return PromptResponse{}, Screening{}, &InterventionNeededError{Provider: provider, Reason: "prompt input not reachable; the page may be gated"}
	}
	if err := s.page.Fill(sel.input, message); err != nil {
		return PromptResponse{}, Screening{}, fmt.Errorf("failed to enter prompt: %w", err)
	}
	if err := s.page.Keyboard().Press("Enter"); err != nil {
		return PromptResponse{}, Screening{}, fmt.Errorf("failed to submit prompt: %w", err)
	}

	handle, err := s.page.WaitForSelector(sel.response, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(120_000),
	})
	if err != nil {
		return PromptResponse{}, Screening{}, fmt.Errorf("timed out waiting for %s response: %w", provider, err)
	}
	text, err := handle.TextContent()
	if err != nil {
		return PromptResponse{}, Screening{}, fmt.Errorf("failed to read %s response: %w", provider, err)
	}

	screening := p.screening.Screen(text)
	p.log.Debug("prompt completed",
		slog.String("provider", string(provider)),
		slog.Bool("screening_passed", screening.Passed),
		slog.Float64("risk_score", screening.RiskScore))

	return PromptResponse{Text: text}, screening, nil
}

// Close tears down all sessions and stops the browser.
func (p *Puppet) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for provider, s := range p.sessions {
		if err := s.bctx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s session: %w", provider, err)
		}
		delete(p.sessions, provider)
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close browser: %w", err)
		}
		p.browser = nil
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		p.pw = nil
	}
	return firstErr
}

func looksLikeLoginWall(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "login") ||
		strings.Contains(lower, "signin") ||
		strings.Contains(lower, "sign-in") ||
		strings.Contains(lower, "auth")
}
