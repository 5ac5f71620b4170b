package guard

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy names selectable at startup.
const (
	PolicyNameSecure     = "secure"
	PolicyNamePermissive = "permissive"
	PolicyNameReadOnly   = "readonly"
)

// Policy is an allow table over operations plus a domain allowlist.
type Policy struct {
	Name string

	allowed    map[Operation]bool
	domains    []string
	allDomains bool
}

// defaultDomains are the provider hosts automation is expected to reach.
var defaultDomains = []string{
	"claude.ai",
	"x.com",
	"gemini.google.com",
	"chat.openai.com",
	"chatgpt.com",
	"perplexity.ai",
	"notebooklm.google.com",
	"kaggle.com",
}

// SecurePolicy permits interactive automation but blocks account-level
// mutations, and restricts navigation to the provider allowlist.
func SecurePolicy() *Policy {
	return &Policy{
		Name: PolicyNameSecure,
		allowed: allowSet(
			OpNavigate, OpSendPrompt, OpReadResponse, OpReadContent,
			OpScreenshot, OpClick, OpTypeText,
		),
		domains: defaultDomains,
	}
}

// PermissivePolicy permits every operation on any domain.
func PermissivePolicy() *Policy {
	return &Policy{
		Name:       PolicyNamePermissive,
		allowed:    allowSet(Operations()...),
		allDomains: true,
	}
}

// ReadOnlyPolicy permits only observation: navigation, reads, screenshots.
func ReadOnlyPolicy() *Policy {
	return &Policy{
		Name:    PolicyNameReadOnly,
		allowed: allowSet(OpNavigate, OpReadResponse, OpReadContent, OpScreenshot),
		domains: defaultDomains,
	}
}

// PolicyByName resolves one of the built-in policy selectors.
func PolicyByName(name string) (*Policy, error) {
	switch strings.ToLower(name) {
	case PolicyNameSecure:
		return SecurePolicy(), nil
	case PolicyNamePermissive:
		return PermissivePolicy(), nil
	case PolicyNameReadOnly, "read_only", "read-only":
		return ReadOnlyPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (want secure, permissive, or readonly)", name)
	}
}

func allowSet(ops ...Operation) map[Operation]bool {
	m := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}

func (p *Policy) allows(op Operation) bool {
	return p.allowed[op]
}

func (p *Policy) allowsDomain(host string) bool {
	if p.allDomains {
		return true
	}
	host = strings.ToLower(host)
	for _, d := range p.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// policyFile is the on-disk shape of a custom policy.
type policyFile struct {
	Name           string   `yaml:"name"`
	Base           string   `yaml:"base"`
	Allow          []string `yaml:"allow"`
	Deny           []string `yaml:"deny"`
	AllowedDomains []string `yaml:"allowed_domains"`
	AllDomains     bool     `yaml:"all_domains"`
}

// LoadPolicyFile reads a YAML policy from disk. The file starts from its
// declared base policy (secure when unset) and then applies its allow and
// deny lists, last write winning per operation.
func LoadPolicyFile(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	base := pf.Base
	if base == "" {
		base = PolicyNameSecure
	}
	p, err := PolicyByName(base)
	if err != nil {
		return nil, err
	}

	if pf.Name != "" {
		p.Name = pf.Name
	}
	for _, s := range pf.Allow {
		op, ok := ParseOperation(s)
		if !ok {
			return nil, fmt.Errorf("policy file allows unknown operation %q", s)
		}
		p.allowed[op] = true
	}
	for _, s := range pf.Deny {
		op, ok := ParseOperation(s)
		if !ok {
			return nil, fmt.Errorf("policy file denies unknown operation %q", s)
		}
		p.allowed[op] = false
	}
	if len(pf.AllowedDomains) > 0 {
		p.domains = append([]string(nil), pf.AllowedDomains...)
	}
	p.allDomains = pf.AllDomains

	return p, nil
}
