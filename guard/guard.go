// Package guard evaluates whether a requested automation operation is
// permitted by the active security policy. Evaluation is deterministic:
// an operation either matches the policy's allow table or it does not,
// and URL-scoped checks additionally match the domain allowlist.
package guard

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Operation is an automation operation subject to policy.
type Operation string

const (
	OpNavigate       Operation = "Navigate"
	OpSendPrompt     Operation = "SendPrompt"
	OpReadResponse   Operation = "ReadResponse"
	OpReadContent    Operation = "ReadContent"
	OpScreenshot     Operation = "Screenshot"
	OpClick          Operation = "Click"
	OpTypeText       Operation = "TypeText"
	OpDeleteAccount  Operation = "DeleteAccount"
	OpChangePassword Operation = "ChangePassword"
)

// Operations lists every operation the guard knows, in display order.
func Operations() []Operation {
	return []Operation{
		OpNavigate, OpSendPrompt, OpReadResponse, OpReadContent,
		OpScreenshot, OpClick, OpTypeText, OpDeleteAccount, OpChangePassword,
	}
}

// ParseOperation maps a free-text operation name to an Operation. Matching
// is case-insensitive and accepts snake_case variants ("send_prompt").
func ParseOperation(s string) (Operation, bool) {
	norm := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for _, op := range Operations() {
		if strings.ToLower(string(op)) == norm {
			return op, true
		}
	}
	return "", false
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
	// RiskLevel grades the operation from 1 (benign read) to 10
	// (irreversible account action), independent of the verdict.
	RiskLevel int
}

// DeniedError reports a policy rejection.
type DeniedError struct {
	Operation Operation
	Reason    string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("operation %s denied: %s", e.Operation, e.Reason)
}

// Guard answers permission questions against its current policy. The
// policy slot is guarded so a file watcher can swap it while tool calls
// are reading it.
type Guard struct {
	mu     sync.RWMutex
	policy *Policy
}

// New returns a Guard enforcing the given policy.
func New(policy *Policy) *Guard {
	if policy == nil {
		policy = SecurePolicy()
	}
	return &Guard{policy: policy}
}

// Secure returns a Guard with the default secure policy.
func Secure() *Guard {
	return New(SecurePolicy())
}

// Policy returns the active policy.
func (g *Guard) Policy() *Policy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.policy
}

// SetPolicy atomically replaces the active policy.
func (g *Guard) SetPolicy(p *Policy) {
	if p == nil {
		return
	}
	g.mu.Lock()
	g.policy = p
	g.mu.Unlock()
}

// Check evaluates the operation against the active policy.
func (g *Guard) Check(op Operation) Decision {
	p := g.Policy()
	risk := riskLevel(op)
	if !p.allows(op) {
		return Decision{
			Allowed:   false,
			Reason:    fmt.Sprintf("operation %s is not permitted by the %s policy", op, p.Name),
			RiskLevel: risk,
		}
	}
	return Decision{
		Allowed:   true,
		Reason:    fmt.Sprintf("operation %s is permitted by the %s policy", op, p.Name),
		RiskLevel: risk,
	}
}

// CheckWithURL evaluates the operation scoped to a target URL. The URL
// must parse, use http or https, and land on an allowlisted domain unless
// the policy admits all domains.
func (g *Guard) CheckWithURL(op Operation, rawURL string) Decision {
	d := g.Check(op)
	if !d.Allowed {
		return d
	}

	p := g.Policy()
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Decision{Allowed: false, Reason: fmt.Sprintf("unparseable URL %q", rawURL), RiskLevel: d.RiskLevel}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Decision{Allowed: false, Reason: fmt.Sprintf("scheme %q is not allowed", u.Scheme), RiskLevel: d.RiskLevel}
	}
	if !p.allowsDomain(u.Hostname()) {
		return Decision{Allowed: false, Reason: fmt.Sprintf("domain %q is not on the allowlist", u.Hostname()), RiskLevel: d.RiskLevel}
	}
	return d
}

// Require returns nil when the operation is allowed and a *DeniedError
// otherwise.
func (g *Guard) Require(op Operation) error {
	if d := g.Check(op); !d.Allowed {
		return &DeniedError{Operation: op, Reason: d.Reason}
	}
	return nil
}

// RequireWithURL is Require scoped to a target URL.
func (g *Guard) RequireWithURL(op Operation, rawURL string) error {
	if d := g.CheckWithURL(op, rawURL); !d.Allowed {
		return &DeniedError{Operation: op, Reason: d.Reason}
	}
	return nil
}

func riskLevel(op Operation) int {
	switch op {
	case OpReadResponse, OpReadContent:
		return 1
	case OpNavigate, OpScreenshot:
		return 2
	case OpSendPrompt:
		return 3
	case OpClick, OpTypeText:
		return 4
	case OpChangePassword:
		return 8
	case OpDeleteAccount:
		return 10
	default:
		return 5
	}
}
