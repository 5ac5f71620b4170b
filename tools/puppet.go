package tools

import (
	"context"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
)

// puppetFactory builds the real Playwright-backed automation handle using
// the context's configured visibility and screening settings.
func puppetFactory(c *Context) AutomationFactory {
	return func(ctx context.Context) (Automation, error) {
		p, err := automation.NewPuppet(ctx,
			automation.WithHeadless(c.Headless),
			automation.WithScreening(c.Screening),
			automation.WithLogger(c.log),
		)
		if err != nil {
			return nil, err
		}
		return &puppetHandle{p: p}, nil
	}
}

// puppetHandle adapts *automation.Puppet to the Automation interface; the
// concrete Session type narrows to AutomationSession here.
type puppetHandle struct {
	p *automation.Puppet
}

func (h *puppetHandle) Authenticate(ctx context.Context, provider automation.Provider) error {
	return h.p.Authenticate(ctx, provider)
}

func (h *puppetHandle) PromptScreened(ctx context.Context, provider automation.Provider, req automation.PromptRequest) (automation.PromptResponse, automation.Screening, error) {
	return h.p.PromptScreened(ctx, provider, req)
}

func (h *puppetHandle) Session(ctx context.Context, provider automation.Provider) (AutomationSession, error) {
	return h.p.Session(ctx, provider)
}

func (h *puppetHandle) Close(ctx context.Context) error {
	return h.p.Close(ctx)
}
