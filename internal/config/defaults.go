package config

import "time"

// DefaultAPIKeyEnv is the environment variable holding the gateway credential.
const DefaultAPIKeyEnv = "LOVABLE_API_KEY"

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "pharos.yml"

// providerDefaults lists the base URL and model used when a provider is
// picked without further settings.
var providerDefaults = map[ProviderType]struct {
	BaseURL   string
	Model     string
	APIKeyEnv string
}{
	ProviderGateway:    {BaseURL: "https://ai.gateway.lovable.dev/v1", Model: "google/gemini-3-flash-preview", APIKeyEnv: DefaultAPIKeyEnv},
	ProviderOpenAI:     {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", APIKeyEnv: "OPENAI_API_KEY"},
	ProviderOpenRouter: {BaseURL: "https://openrouter.ai/api/v1", Model: "google/gemini-2.5-flash", APIKeyEnv: "OPENROUTER_API_KEY"},
	ProviderOllama:     {BaseURL: "http://localhost:11434/v1", Model: "llama3.1", APIKeyEnv: ""},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	gw := providerDefaults[ProviderGateway]
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			AllowedOrigins:    []string{"*"},
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  ProviderGateway,
			BaseURL:   gw.BaseURL,
			Model:     gw.Model,
			APIKeyEnv: gw.APIKeyEnv,
		},
		Audit: AuditConfig{
			Enabled:       false,
			DBPath:        "pharos.db",
			RetentionDays: 90,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ApplyProviderDefaults sets base URL, model and key variable for p.
func (c *LLMConfig) ApplyProviderDefaults(p ProviderType) {
	d, ok := providerDefaults[p]
	if !ok {
		return
	}
	c.Provider = p
	c.BaseURL = d.BaseURL
	c.Model = d.Model
	c.APIKeyEnv = d.APIKeyEnv
}
