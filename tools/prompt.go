package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// PromptTool sends a prompt to an AI provider through the browser.
type PromptTool struct{}

type promptArgs struct {
	// Provider accepts the canonical names plus the documented aliases
	// ("openai" for chatgpt, "notebook" for notebooklm); the alias
	// mapping happens in code so schema validation stays permissive.
	Provider string `json:"provider" jsonschema_description:"Provider/tool to use: claude, grok, gemini, chatgpt, perplexity, notebooklm, or kaggle"`
	Message  string `json:"message" jsonschema_description:"The prompt message to send"`
	Context  string `json:"context,omitempty" jsonschema_description:"Optional context or system instructions"`
}

func (t *PromptTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_prompt",
		Description: "Send a prompt through browser automation (AI providers + select web tools). Uses existing authenticated sessions.",
		InputSchema: reflectInputSchema[promptArgs](),
	}
}

func (t *PromptTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	if err := tc.Guard.Require(guard.OpSendPrompt); err != nil {
		return nil, err
	}

	a, err := decodeArgs[promptArgs](args)
	if err != nil {
		return nil, err
	}

	provider, err := automation.ParseProvider(a.Provider)
	if err != nil {
		return nil, &InvalidParamsError{Reason: err.Error()}
	}

	handle, err := tc.Automation(ctx)
	if err != nil {
		return nil, err
	}

	if err := handle.Authenticate(ctx, provider); err != nil {
		return wrapAutomation(tc, err)
	}

	req := automation.PromptRequest{Message: a.Message, Context: a.Context}
	resp, screening, err := handle.PromptScreened(ctx, provider, req)
	if err != nil {
		return wrapAutomation(tc, err)
	}

	// Fail open with a visible warning: a risky response is annotated,
	// never suppressed.
	text := resp.Text
	if !screening.Passed {
		text = fmt.Sprintf("[SECURITY WARNING: Response had risk score %.2f]\n\n%s", screening.RiskScore, resp.Text)
	}

	return textResult(text), nil
}

// wrapAutomation turns an intervention signal into a paused state plus a
// tool-level error pointing at the intervention workflow; everything else
// propagates as an automation failure.
func wrapAutomation(tc *Context, err error) (*mcp.CallToolResult, error) {
	var need *automation.InterventionNeededError
	if errors.As(err, &need) {
		tc.Intervention.Pause(need.Reason)
		return errorResult(
			"Automation is paused: %s requires human intervention (%s).\n\nComplete the step in the browser, then call `webpuppet_intervention_complete` with success=true.",
			need.Provider, need.Reason,
		), nil
	}
	return nil, &AutomationError{Err: err}
}
