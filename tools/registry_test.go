package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/intervention"
	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// stubAutomation satisfies Automation without a browser. Zero value
// answers every call successfully.
type stubAutomation struct {
	authErr   error
	promptErr error
	response  string
	screening automation.Screening

	prompts []string
}

func (s *stubAutomation) Authenticate(ctx context.Context, p automation.Provider) error {
	return s.authErr
}

func (s *stubAutomation) PromptScreened(ctx context.Context, p automation.Provider, req automation.PromptRequest) (automation.PromptResponse, automation.Screening, error) {
	if s.promptErr != nil {
		return automation.PromptResponse{}, automation.Screening{}, s.promptErr
	}
	s.prompts = append(s.prompts, req.Message)
	scr := s.screening
	if scr == (automation.Screening{}) {
		scr = automation.Screening{Passed: true}
	}
	text := s.response
	if text == "" {
		text = "stub response"
	}
	return automation.PromptResponse{Text: text}, scr, nil
}

func (s *stubAutomation) Session(ctx context.Context, p automation.Provider) (AutomationSession, error) {
	return &stubSession{}, nil
}

func (s *stubAutomation) Close(ctx context.Context) error { return nil }

type stubSession struct {
	url   string
	title string
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	s.url = url
	return nil
}

func (s *stubSession) CurrentURL(ctx context.Context) (string, error) { return s.url, nil }
func (s *stubSession) Title(ctx context.Context) (string, error)      { return s.title, nil }

func newTestContext(t *testing.T, stub *stubAutomation, opts ...ContextOption) *Context {
	t.Helper()
	if stub == nil {
		stub = &stubAutomation{}
	}
	opts = append(opts, WithAutomationFactory(func(ctx context.Context) (Automation, error) {
		return stub, nil
	}))
	return NewContext(guard.Secure(), opts...)
}

func newTestRegistry(t *testing.T, stub *stubAutomation, opts ...ContextOption) *Registry {
	t.Helper()
	r, err := NewRegistry(newTestContext(t, stub, opts...))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	return res.Content[0].Text
}

func TestRegistryListsBuiltins(t *testing.T) {
	r := newTestRegistry(t, nil)

	defs := r.List()
	byName := map[string]bool{}
	for _, d := range defs {
		byName[d.Name] = true
	}

	for _, want := range []string{
		"webpuppet_prompt",
		"webpuppet_list_providers",
		"webpuppet_provider_capabilities",
		"webpuppet_detect_browsers",
		"webpuppet_screenshot",
		"webpuppet_check_permission",
		"webpuppet_intervention_status",
		"webpuppet_intervention_complete",
		"webpuppet_pause",
		"webpuppet_resume",
		"webpuppet_navigate",
		"webpuppet_browser_status",
	} {
		if !byName[want] {
			t.Errorf("listing is missing %s", want)
		}
	}

	if got := defs[0].Name; got != "webpuppet_prompt" {
		t.Fatalf("first listed tool = %s, want registration order preserved", got)
	}
}

// overrideTool replaces an existing name with new behavior.
type overrideTool struct {
	name string
}

func (o *overrideTool) Definition() mcp.Tool {
	return mcp.Tool{Name: o.name, Description: "override", InputSchema: reflectInputSchema[struct{}]()}
}

func (o *overrideTool) Execute(ctx context.Context, args json.RawMessage, tc *Context) (*mcp.CallToolResult, error) {
	return textResult("overridden"), nil
}

func TestRegistryReregisterOverwritesInPlace(t *testing.T) {
	r := newTestRegistry(t, nil)

	before := r.List()
	var pos int
	for i, d := range before {
		if d.Name == "webpuppet_pause" {
			pos = i
		}
	}

	if err := r.Register(&overrideTool{name: "webpuppet_pause"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	after := r.List()
	if len(after) != len(before) {
		t.Fatalf("list length changed from %d to %d", len(before), len(after))
	}
	if after[pos].Name != "webpuppet_pause" {
		t.Fatalf("overwritten tool moved from position %d", pos)
	}

	res, err := r.Execute(context.Background(), "webpuppet_pause", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := resultText(t, res); got != "overridden" {
		t.Fatalf("result = %q, want the replacement tool's output", got)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := newTestRegistry(t, nil)

	_, err := r.Execute(context.Background(), "webpuppet_levitate", nil)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *NotFoundError", err)
	}
	if notFound.Name != "webpuppet_levitate" {
		t.Fatalf("not-found name = %q", notFound.Name)
	}
}

func TestRegistryRejectsBadArguments(t *testing.T) {
	r := newTestRegistry(t, nil)

	cases := []struct {
		name string
		args string
	}{
		{"missing required field", `{"provider":"claude"}`},
		{"wrong type", `{"provider":"claude","message":7}`},
		{"not json", `{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), "webpuppet_prompt", json.RawMessage(tc.args))
			var invalid *InvalidParamsError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want *InvalidParamsError", err)
			}
		})
	}
}

func TestPromptDispatchesToProvider(t *testing.T) {
	stub := &stubAutomation{response: "bonjour"}
	r := newTestRegistry(t, stub)

	res, err := r.Execute(context.Background(), "webpuppet_prompt",
		json.RawMessage(`{"provider":"openai","message":"hello"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "bonjour" {
		t.Fatalf("result = %q", got)
	}
	if len(stub.prompts) != 1 || stub.prompts[0] != "hello" {
		t.Fatalf("stub saw prompts %v", stub.prompts)
	}
}

func TestPromptProviderAliases(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"claude", false},
		{"openai", false},
		{"notebook", false},
		{"NOTEBOOKLM", false},
		{"copilot", true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			r := newTestRegistry(t, nil)
			args := fmt.Sprintf(`{"provider":%q,"message":"hi"}`, tc.in)
			_, err := r.Execute(context.Background(), "webpuppet_prompt", json.RawMessage(args))
			var invalid *InvalidParamsError
			if tc.wantErr {
				if !errors.As(err, &invalid) {
					t.Fatalf("err = %v, want *InvalidParamsError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
		})
	}
}

func TestPromptScreeningWarningPrefix(t *testing.T) {
	stub := &stubAutomation{
		response:  "do something risky",
		screening: automation.Screening{Passed: false, RiskScore: 0.8},
	}
	r := newTestRegistry(t, stub)

	res, err := r.Execute(context.Background(), "webpuppet_prompt",
		json.RawMessage(`{"provider":"claude","message":"hi"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := resultText(t, res)
	if !strings.HasPrefix(got, "[SECURITY WARNING: Response had risk score 0.80]") {
		t.Fatalf("result = %q, want security warning prefix", got)
	}
	if !strings.Contains(got, "do something risky") {
		t.Fatal("warning suppressed the response body")
	}
}

func TestPromptInterventionPausesAutomation(t *testing.T) {
	stub := &stubAutomation{
		authErr: &automation.InterventionNeededError{
			Provider: automation.ProviderClaude,
			Reason:   "login required",
		},
	}
	tc := newTestContext(t, stub)
	r, err := NewRegistry(tc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	res, err := r.Execute(context.Background(), "webpuppet_prompt",
		json.RawMessage(`{"provider":"claude","message":"hi"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.IsError {
		t.Fatal("intervention did not surface as a tool-level error")
	}
	if got := tc.Intervention.State(); got != intervention.StateWaitingForHuman {
		t.Fatalf("intervention state = %s, want waiting_for_human", got)
	}
	if got := tc.Intervention.CurrentReason(); got != "login required" {
		t.Fatalf("reason = %q", got)
	}
}

func TestPromptDeniedByPolicy(t *testing.T) {
	tc := NewContext(guard.New(guard.ReadOnlyPolicy()),
		WithAutomationFactory(func(ctx context.Context) (Automation, error) {
			t.Fatal("automation constructed despite policy denial")
			return nil, nil
		}))
	r, err := NewRegistry(tc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	_, err = r.Execute(context.Background(), "webpuppet_prompt",
		json.RawMessage(`{"provider":"claude","message":"hi"}`))
	var denied *guard.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want *guard.DeniedError", err)
	}
}

func TestCheckPermissionMatrix(t *testing.T) {
	r := newTestRegistry(t, nil)

	t.Run("allowed", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "webpuppet_check_permission",
			json.RawMessage(`{"operation":"send_prompt"}`))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		got := resultText(t, res)
		if !strings.Contains(got, "✅ ALLOWED") {
			t.Fatalf("result = %q, want ALLOWED marker", got)
		}
	})

	t.Run("denied", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "webpuppet_check_permission",
			json.RawMessage(`{"operation":"DeleteAccount"}`))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		got := resultText(t, res)
		if !strings.Contains(got, "❌ DENIED") {
			t.Fatalf("result = %q, want DENIED marker", got)
		}
		if !strings.Contains(got, "10/10") {
			t.Fatalf("result = %q, want risk level 10/10", got)
		}
	})

	t.Run("url scoped", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "webpuppet_check_permission",
			json.RawMessage(`{"operation":"navigate","url":"https://evil.example.com/"}`))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got := resultText(t, res); !strings.Contains(got, "❌ DENIED") {
			t.Fatalf("result = %q, want DENIED for off-list domain", got)
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "webpuppet_check_permission",
			json.RawMessage(`{"operation":"teleport"}`))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !res.IsError {
			t.Fatal("unknown operation was not a tool-level error")
		}
		if got := resultText(t, res); !strings.Contains(got, "Navigate") {
			t.Fatalf("result = %q, want the valid operation list", got)
		}
	})
}

func TestInterventionToolFlow(t *testing.T) {
	tc := newTestContext(t, nil)
	r, err := NewRegistry(tc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ctx := context.Background()

	res, err := r.Execute(ctx, "webpuppet_pause", json.RawMessage(`{"reason":"inspecting the page"}`))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "Automation Paused") {
		t.Fatalf("pause result = %q", got)
	}

	res, err = r.Execute(ctx, "webpuppet_intervention_status", nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "waiting_for_human") || !strings.Contains(got, "inspecting the page") {
		t.Fatalf("status result = %q", got)
	}

	res, err = r.Execute(ctx, "webpuppet_intervention_complete",
		json.RawMessage(`{"success":true,"message":"solved the captcha"}`))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "✅ SUCCESS") {
		t.Fatalf("complete result = %q", got)
	}

	if _, err := r.Execute(ctx, "webpuppet_resume", nil); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := tc.Intervention.State(); got != intervention.StateRunning {
		t.Fatalf("state after resume = %s", got)
	}
}

func TestNavigateUsesSession(t *testing.T) {
	r := newTestRegistry(t, &stubAutomation{})

	res, err := r.Execute(context.Background(), "webpuppet_navigate",
		json.RawMessage(`{"provider":"claude","url":"https://claude.ai/new"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := resultText(t, res)
	if !strings.Contains(got, "https://claude.ai/new") {
		t.Fatalf("result = %q, want the navigated URL", got)
	}
	// stub session has no title; the fallback text stands in
	if !strings.Contains(got, "Unknown") {
		t.Fatalf("result = %q, want title fallback", got)
	}
}

func TestNavigateDeniedOffAllowlist(t *testing.T) {
	r := newTestRegistry(t, nil)

	_, err := r.Execute(context.Background(), "webpuppet_navigate",
		json.RawMessage(`{"provider":"claude","url":"https://evil.example.com/"}`))
	var denied *guard.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want *guard.DeniedError", err)
	}
}

func TestBrowserStatusLazy(t *testing.T) {
	tc := newTestContext(t, nil)
	r, err := NewRegistry(tc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ctx := context.Background()

	res, err := r.Execute(ctx, "webpuppet_browser_status", nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "No browser session") {
		t.Fatalf("result = %q, want inactive report", got)
	}

	// touching automation activates the handle
	if _, err := tc.Automation(ctx); err != nil {
		t.Fatalf("Automation: %v", err)
	}
	res, err = r.Execute(ctx, "webpuppet_browser_status", nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "Browser session is active") {
		t.Fatalf("result = %q, want active report", got)
	}
}

func TestListProvidersNeedsNoPermission(t *testing.T) {
	// readonly denies SendPrompt but the listing is static
	tc := NewContext(guard.New(guard.ReadOnlyPolicy()))
	r, err := NewRegistry(tc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	res, err := r.Execute(context.Background(), "webpuppet_list_providers", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := resultText(t, res)
	for _, want := range []string{"claude", "chatgpt", "notebooklm", "kaggle"} {
		if !strings.Contains(got, want) {
			t.Errorf("listing is missing %s", want)
		}
	}
}

func TestProviderCapabilitiesTool(t *testing.T) {
	r := newTestRegistry(t, nil)

	res, err := r.Execute(context.Background(), "webpuppet_provider_capabilities",
		json.RawMessage(`{"provider":"gemini"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := resultText(t, res)

	var payload struct {
		Provider     string                  `json:"provider"`
		Capabilities automation.Capabilities `json:"capabilities"`
	}
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, got)
	}
	if payload.Provider != "gemini" || !payload.Capabilities.WebSearch {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestScreenshotPermissions(t *testing.T) {
	r := newTestRegistry(t, nil)

	res, err := r.Execute(context.Background(), "webpuppet_screenshot",
		json.RawMessage(`{"url":"https://claude.ai/"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "claude.ai") {
		t.Fatalf("result = %q", got)
	}

	_, err = r.Execute(context.Background(), "webpuppet_screenshot",
		json.RawMessage(`{"url":"https://elsewhere.example.com/"}`))
	var denied *guard.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err = %v, want *guard.DeniedError for off-list domain", err)
	}
}

func TestContextCachesAutomationHandle(t *testing.T) {
	var built int
	tc := NewContext(guard.Secure(), WithAutomationFactory(func(ctx context.Context) (Automation, error) {
		built++
		return &stubAutomation{}, nil
	}))

	ctx := context.Background()
	first, err := tc.Automation(ctx)
	if err != nil {
		t.Fatalf("Automation: %v", err)
	}
	second, err := tc.Automation(ctx)
	if err != nil {
		t.Fatalf("Automation: %v", err)
	}
	if first != second {
		t.Fatal("handle not cached")
	}
	if built != 1 {
		t.Fatalf("factory ran %d times, want 1", built)
	}

	if err := tc.CloseAutomation(ctx); err != nil {
		t.Fatalf("CloseAutomation: %v", err)
	}
	if _, err := tc.Automation(ctx); err != nil {
		t.Fatalf("Automation after close: %v", err)
	}
	if built != 2 {
		t.Fatalf("factory ran %d times after close, want 2", built)
	}
}

func TestContextFactoryFailureWrapped(t *testing.T) {
	tc := NewContext(guard.Secure(), WithAutomationFactory(func(ctx context.Context) (Automation, error) {
		return nil, errors.New("no browser on this host")
	}))

	_, err := tc.Automation(context.Background())
	var autoErr *AutomationError
	if !errors.As(err, &autoErr) {
		t.Fatalf("err = %v, want *AutomationError", err)
	}
}
