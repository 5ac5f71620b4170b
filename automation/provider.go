// Package automation drives provider web UIs through a real browser. It
// implements the automation-handle contract the tool layer consumes:
// authenticated sessions, screened prompt dispatch, and best-effort page
// inspection. Browsers are driven via Playwright.
package automation

import (
	"fmt"
	"strings"
)

// Provider is an AI provider (or adjacent web tool) reachable by
// browser automation.
type Provider string

const (
	ProviderClaude     Provider = "claude"
	ProviderGrok       Provider = "grok"
	ProviderGemini     Provider = "gemini"
	ProviderChatGPT    Provider = "chatgpt"
	ProviderPerplexity Provider = "perplexity"
	ProviderNotebookLM Provider = "notebooklm"
	ProviderKaggle     Provider = "kaggle"
)

// Providers lists every known provider in display order.
func Providers() []Provider {
	return []Provider{
		ProviderClaude, ProviderGrok, ProviderGemini, ProviderChatGPT,
		ProviderPerplexity, ProviderNotebookLM, ProviderKaggle,
	}
}

// ParseProvider maps a free-text provider name to a Provider. Matching is
// case-insensitive; "openai" aliases ChatGPT and "notebook" NotebookLM.
// Unmapped names are an error, never a silent default.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(s) {
	case "claude":
		return ProviderClaude, nil
	case "grok":
		return ProviderGrok, nil
	case "gemini":
		return ProviderGemini, nil
	case "chatgpt", "openai":
		return ProviderChatGPT, nil
	case "perplexity":
		return ProviderPerplexity, nil
	case "notebooklm", "notebook":
		return ProviderNotebookLM, nil
	case "kaggle":
		return ProviderKaggle, nil
	default:
		return "", fmt.Errorf("unknown provider: %s", s)
	}
}

func (p Provider) String() string { return string(p) }

// Info is static display metadata for a provider.
type Info struct {
	ID       Provider
	Name     string
	URL      string
	Features string
}

// ProviderInfos returns display metadata for every provider, in a stable
// order suitable for listings.
func ProviderInfos() []Info {
	return []Info{
		{ProviderClaude, "Claude (Anthropic)", "https://claude.ai", "Large context, artifacts, code"},
		{ProviderGrok, "Grok (X/xAI)", "https://x.com/i/grok", "Real-time info, integrated with X"},
		{ProviderGemini, "Gemini (Google)", "https://gemini.google.com", "Google integration, large context"},
		{ProviderChatGPT, "ChatGPT (OpenAI)", "https://chat.openai.com", "GPT-4o, vision, code, web search"},
		{ProviderPerplexity, "Perplexity AI", "https://www.perplexity.ai", "Search-focused, sources cited"},
		{ProviderNotebookLM, "NotebookLM (Google)", "https://notebooklm.google.com", "Research assistant, 500k context"},
		{ProviderKaggle, "Kaggle (Datasets)", "https://www.kaggle.com/datasets", "Dataset search/catalog; returns dataset page links"},
	}
}

// homeURL is where a session for the provider starts.
func (p Provider) homeURL() string {
	for _, info := range ProviderInfos() {
		if info.ID == p {
			return info.URL
		}
	}
	return ""
}
