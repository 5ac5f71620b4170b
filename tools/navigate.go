package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// NavigateTool steers a provider session to a URL on that provider's
// domain.
type NavigateTool struct{}

type navigateArgs struct {
	Provider string `json:"provider" jsonschema_description:"Provider whose session to navigate (claude, grok, gemini, chatgpt, perplexity, notebooklm, kaggle)"`
	URL      string `json:"url" jsonschema_description:"URL to navigate to; must be on an allowed domain"`
}

func (t *NavigateTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_navigate",
		Description: "Navigate a provider's browser session to a URL on an allowed domain.",
		InputSchema: reflectInputSchema[navigateArgs](),
	}
}

func (t *NavigateTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	a, err := decodeArgs[navigateArgs](args)
	if err != nil {
		return nil, err
	}

	provider, err := automation.ParseProvider(a.Provider)
	if err != nil {
		return nil, &InvalidParamsError{Reason: err.Error()}
	}

	if err := tc.Guard.RequireWithURL(guard.OpNavigate, a.URL); err != nil {
		return nil, err
	}

	handle, err := tc.Automation(ctx)
	if err != nil {
		return nil, err
	}
	session, err := handle.Session(ctx, provider)
	if err != nil {
		return wrapAutomation(tc, err)
	}
	if err := session.Navigate(ctx, a.URL); err != nil {
		return wrapAutomation(tc, err)
	}

	// URL and title reads are best effort; a page still settling should
	// not fail the navigation.
	current, err := session.CurrentURL(ctx)
	if err != nil || current == "" {
		current = a.URL
	}
	title, err := session.Title(ctx)
	if err != nil || title == "" {
		title = "Unknown"
	}

	return textResult(fmt.Sprintf(
		"# Navigation Complete\n\n- **Provider**: %s\n- **URL**: %s\n- **Title**: %s",
		provider, current, title,
	)), nil
}
