package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// CheckPermissionTool evaluates an operation against the active policy
// without performing it.
type CheckPermissionTool struct{}

type checkPermissionArgs struct {
	Operation string `json:"operation" jsonschema_description:"Operation to check (e.g. Navigate, SendPrompt, ReadResponse, Screenshot, Click, TypeText, DeleteAccount, ChangePassword)"`
	URL       string `json:"url,omitempty" jsonschema_description:"Optional URL the operation would target; checked against the domain allowlist"`
}

func (t *CheckPermissionTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        "webpuppet_check_permission",
		Description: "Check whether an operation is permitted by the current security policy.",
		InputSchema: reflectInputSchema[checkPermissionArgs](),
	}
}

func (t *CheckPermissionTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	a, err := decodeArgs[checkPermissionArgs](args)
	if err != nil {
		return nil, err
	}

	op, ok := guard.ParseOperation(a.Operation)
	if !ok {
		var names []string
		for _, known := range guard.Operations() {
			names = append(names, string(known))
		}
		return errorResult("Unknown operation: `%s`\n\nValid operations: %s",
			a.Operation, strings.Join(names, ", ")), nil
	}

	var decision guard.Decision
	if a.URL != "" {
		decision = tc.Guard.CheckWithURL(op, a.URL)
	} else {
		decision = tc.Guard.Check(op)
	}

	verdict := "❌ DENIED"
	if decision.Allowed {
		verdict = "✅ ALLOWED"
	}

	var b strings.Builder
	b.WriteString("# Permission Check\n\n")
	fmt.Fprintf(&b, "- **Operation**: %s\n", op)
	if a.URL != "" {
		fmt.Fprintf(&b, "- **URL**: %s\n", a.URL)
	}
	fmt.Fprintf(&b, "- **Result**: %s\n", verdict)
	fmt.Fprintf(&b, "- **Reason**: %s\n", decision.Reason)
	fmt.Fprintf(&b, "- **Risk level**: %d/10\n", decision.RiskLevel)
	fmt.Fprintf(&b, "- **Policy**: %s\n", tc.Guard.Policy().Name)

	return textResult(b.String()), nil
}
