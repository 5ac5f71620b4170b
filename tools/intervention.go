package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tzervas/embeddenator-webpuppet-mcp/intervention"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// InterventionStatusTool reports the current human-intervention state.
type InterventionStatusTool struct{}

func (t *InterventionStatusTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_intervention_status",
		Description: "Check whether automation is paused waiting for human intervention.",
		InputSchema: reflectInputSchema[struct{}](),
	}
}

func (t *InterventionStatusTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	state := tc.Intervention.State()

	var b strings.Builder
	b.WriteString("# Intervention Status\n\n")
	fmt.Fprintf(&b, "- **State**: %s %s\n", stateMarker(state), state)

	switch state {
	case intervention.StateWaitingForHuman:
		fmt.Fprintf(&b, "- **Reason**: %s\n", tc.Intervention.CurrentReason())
		if ep := tc.Intervention.EpisodeID(); ep != "" {
			fmt.Fprintf(&b, "- **Episode**: %s\n", ep)
		}
		b.WriteString("\n⚠️ **Action required**: a human must complete the pending step in the browser, then call `webpuppet_intervention_complete`.\n")
	case intervention.StateResuming:
		if out, ok := tc.Intervention.LastOutcome(); ok {
			fmt.Fprintf(&b, "- **Last outcome**: success=%t %s\n", out.Success, out.Message)
		}
		b.WriteString("\nAutomation will resume on the next tool call.\n")
	case intervention.StateTimedOut:
		b.WriteString("\nThe last intervention wait timed out. Pause again to retry.\n")
	case intervention.StateCancelled:
		b.WriteString("\nThe last intervention was cancelled.\n")
	}

	return textResult(b.String()), nil
}

func stateMarker(s intervention.State) string {
	switch s {
	case intervention.StateRunning:
		return "🟢"
	case intervention.StateWaitingForHuman:
		return "🟡"
	case intervention.StateResuming:
		return "🔵"
	case intervention.StateTimedOut:
		return "🔴"
	case intervention.StateCancelled:
		return "⚫"
	default:
		return "⚪"
	}
}

// InterventionCompleteTool signals that a human finished (or abandoned)
// the manual step automation was waiting on.
type InterventionCompleteTool struct{}

type interventionCompleteArgs struct {
	Success bool   `json:"success" jsonschema_description:"Whether the manual step was completed successfully"`
	Message string `json:"message,omitempty" jsonschema_description:"Optional note about what was done"`
}

func (t *InterventionCompleteTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_intervention_complete",
		Description: "Signal that a human has completed the intervention automation was waiting for.",
		InputSchema: reflectInputSchema[interventionCompleteArgs](),
	}
}

func (t *InterventionCompleteTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	a, err := decodeArgs[interventionCompleteArgs](args)
	if err != nil {
		return nil, err
	}

	tc.Intervention.Complete(a.Success, a.Message)

	verdict := "❌ FAILED"
	if a.Success {
		verdict = "✅ SUCCESS"
	}
	msg := a.Message
	if msg == "" {
		msg = "(no details provided)"
	}
	return textResult(fmt.Sprintf(
		"# Intervention Complete\n\n- **Result**: %s\n- **Details**: %s\n\nAutomation will resume on the next tool call.",
		verdict, msg,
	)), nil
}

// PauseTool pauses automation at a human operator's request.
type PauseTool struct{}

type pauseArgs struct {
	Reason string `json:"reason,omitempty" jsonschema_description:"Why automation is being paused"`
}

func (t *PauseTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_pause",
		Description: "Pause automation so a human can take over the browser.",
		InputSchema: reflectInputSchema[pauseArgs](),
	}
}

func (t *PauseTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	a, err := decodeArgs[pauseArgs](args)
	if err != nil {
		return nil, err
	}

	tc.Intervention.Pause(a.Reason)

	return textResult(fmt.Sprintf(
		"# Automation Paused ⏸️\n\n- **Reason**: %s\n- **Episode**: %s\n\nTake over the browser as needed, then call `webpuppet_intervention_complete` or `webpuppet_resume`.",
		tc.Intervention.CurrentReason(), tc.Intervention.EpisodeID(),
	)), nil
}

// ResumeTool resumes paused automation without recording an outcome.
type ResumeTool struct{}

func (t *ResumeTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_resume",
		Description: "Resume automation after a pause.",
		InputSchema: reflectInputSchema[struct{}](),
	}
}

func (t *ResumeTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	tc.Intervention.Resume()
	return textResult("# Automation Resumed ▶️\n\nAutomation is running again."), nil
}
