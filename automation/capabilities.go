package automation

// Capabilities are the declared features of a provider. They describe what
// the provider's product offers, not what runtime UI detection found.
type Capabilities struct {
	Conversation  bool     `json:"conversation"`
	Vision        bool     `json:"vision"`
	FileUpload    bool     `json:"file_upload"`
	CodeExecution bool     `json:"code_execution"`
	WebSearch     bool     `json:"web_search"`
	MaxContext    int      `json:"max_context"`
	Models        []string `json:"models"`
}

var providerCapabilities = map[Provider]Capabilities{
	ProviderClaude: {
		Conversation:  true,
		Vision:        true,
		FileUpload:    true,
		CodeExecution: true,
		MaxContext:    200_000,
		Models:        []string{"claude-sonnet", "claude-opus", "claude-haiku"},
	},
	ProviderGrok: {
		Conversation: true,
		Vision:       true,
		WebSearch:    true,
		MaxContext:   128_000,
		Models:       []string{"grok-2", "grok-3"},
	},
	ProviderGemini: {
		Conversation:  true,
		Vision:        true,
		FileUpload:    true,
		CodeExecution: true,
		WebSearch:     true,
		MaxContext:    1_000_000,
		Models:        []string{"gemini-pro", "gemini-flash"},
	},
	ProviderChatGPT: {
		Conversation:  true,
		Vision:        true,
		FileUpload:    true,
		CodeExecution: true,
		WebSearch:     true,
		MaxContext:    128_000,
		Models:        []string{"gpt-4o", "gpt-4o-mini", "o1"},
	},
	ProviderPerplexity: {
		Conversation: true,
		WebSearch:    true,
		MaxContext:   127_000,
		Models:       []string{"sonar", "sonar-pro"},
	},
	ProviderNotebookLM: {
		Conversation: true,
		FileUpload:   true,
		MaxContext:   500_000,
		Models:       []string{"notebooklm"},
	},
	ProviderKaggle: {
		WebSearch: true,
	},
}

// ProviderCapabilities returns the declared capabilities for a provider.
func ProviderCapabilities(p Provider) (Capabilities, bool) {
	caps, ok := providerCapabilities[p]
	return caps, ok
}
