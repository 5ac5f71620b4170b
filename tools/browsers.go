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

// DetectBrowsersTool scans the host for automatable browsers.
type DetectBrowsersTool struct{}

func (t *DetectBrowsersTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_detect_browsers",
		Description: "Detect installed browsers that can be used for automation.",
		InputSchema: reflectInputSchema[struct{}](),
	}
}

func (t *DetectBrowsersTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	browsers := automation.DetectBrowsers()

	if len(browsers) == 0 {
		return errorResult("No supported browsers detected. Please install Brave, Chrome, or Chromium."), nil
	}

	var b strings.Builder
	b.WriteString("# Detected Browsers\n")
	for _, br := range browsers {
		version := br.Version
		if version == "" {
			version = "unknown"
		}
		profiles := "none"
		if len(br.Profiles) > 0 {
			profiles = strings.Join(br.Profiles, ", ")
		}
		fmt.Fprintf(&b, "\n- **%s** (%s)\n  - Path: `%s`\n  - Data: `%s`\n  - Profiles: %s\n",
			br.Type, version, br.ExecutablePath, br.UserDataDir, profiles)
	}
	return textResult(b.String()), nil
}

// ScreenshotTool captures a page screenshot. Capture is gated on both the
// navigation permission for the target URL and the screenshot permission.
type ScreenshotTool struct{}

type screenshotArgs struct {
	URL string `json:"url" jsonschema_description:"URL to take a screenshot of"`
}

func (t *ScreenshotTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_screenshot",
		Description: "Take a screenshot of a web page. Only allowed domains can be accessed.",
		InputSchema: reflectInputSchema[screenshotArgs](),
	}
}

func (t *ScreenshotTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	a, err := decodeArgs[screenshotArgs](args)
	if err != nil {
		return nil, err
	}

	if err := tc.Guard.RequireWithURL(guard.OpNavigate, a.URL); err != nil {
		return nil, err
	}
	if err := tc.Guard.Require(guard.OpScreenshot); err != nil {
		return nil, err
	}

	// Capture itself waits on the full page pipeline.
	return textResult(fmt.Sprintf(
		"Screenshot of `%s` would be captured here.\n\n*Note: Full browser implementation required for actual screenshots.*",
		a.URL,
	)), nil
}

// BrowserStatusTool reports whether an automation session is active.
type BrowserStatusTool struct{}

func (t *BrowserStatusTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_browser_status",
		Description: "Get current browser status including URL, title, and visibility.",
		InputSchema: reflectInputSchema[struct{}](),
	}
}

func (t *BrowserStatusTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	if _, active := tc.ActiveAutomation(); !active {
		return textResult(
			"# Browser Status\n\n⚪ No browser session is currently active.\n\nA browser will be launched when you use `webpuppet_navigate` or `webpuppet_prompt`.",
		), nil
	}

	mode := "Visible"
	if tc.Headless {
		mode = "Headless"
	}
	return textResult(fmt.Sprintf(
		"# Browser Status\n\n🟢 Browser session is active.\n\n- **Mode**: %s\n- **Providers**: %s",
		mode, providerNameList(),
	)), nil
}

func providerNameList() string {
	var names []string
	for _, p := range automation.Providers() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}
