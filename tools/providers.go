package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// ListProvidersTool lists the available AI providers. It is a pure static
// listing; no permission is required.
type ListProvidersTool struct{}

func (t *ListProvidersTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_list_providers",
		Description: "List available AI providers and their status.",
		InputSchema: reflectInputSchema[struct{}](),
	}
}

func (t *ListProvidersTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("# Available Providers\n\n")
	for _, info := range automation.ProviderInfos() {
		fmt.Fprintf(&b, "- **%s** (`%s`): [%s](%s)\n  _%s_\n", info.Name, info.ID, info.URL, info.URL, info.Features)
	}
	b.WriteString("\n*Note: Uses browser sessions; some providers require login.*")
	return textResult(b.String()), nil
}

// ProviderCapabilitiesTool reports a provider's declared capabilities.
type ProviderCapabilitiesTool struct{}

type providerCapabilitiesArgs struct {
	Provider string `json:"provider" jsonschema_description:"Provider/tool to inspect"`
}

func (t *ProviderCapabilitiesTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_provider_capabilities",
		Description: "Get declared capabilities for a provider/tool (conversation, vision, file upload, web search, etc).",
		InputSchema: reflectInputSchema[providerCapabilitiesArgs](),
	}
}

func (t *ProviderCapabilitiesTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	if err := tc.Guard.Require(guard.OpReadContent); err != nil {
		return nil, err
	}

	a, err := decodeArgs[providerCapabilitiesArgs](args)
	if err != nil {
		return nil, err
	}

	provider, err := automation.ParseProvider(a.Provider)
	if err != nil {
		return nil, &InvalidParamsError{Reason: err.Error()}
	}

	caps, ok := automation.ProviderCapabilities(provider)
	if !ok {
		return nil, &InvalidParamsError{Reason: fmt.Sprintf("provider not available: %s", provider)}
	}

	payload := map[string]any{
		"provider":     provider.String(),
		"capabilities": caps,
		"note":         "Declared capabilities (not runtime UI detection).",
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render capabilities: %w", err)
	}
	return textResult(string(pretty)), nil
}
