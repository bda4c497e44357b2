package config

// LLMConfig configures the single LLM collaborator the engine talks to.
// The engine itself only depends on the engine.Collaborator interface;
// this struct configures whichever concrete implementation is wired at
// startup (see internal/llmclient).
type LLMConfig struct {
	Provider string `yaml:"provider"` // genai, anthropic, openai, ...
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  string `yaml:"timeout"`
}

// ValidProviders lists the collaborator backends this build recognizes.
// Only "genai" ships a concrete implementation (internal/llmclient); the
// others are accepted for forward-compatibility with alternative
// Collaborator adapters a caller may wire in.
var ValidProviders = []string{"genai", "anthropic", "openai", "gemini"}
