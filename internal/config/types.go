package config

import "time"

// ProviderType identifies a chat-completion backend.
type ProviderType string

const (
	ProviderGateway    ProviderType = "gateway"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level pharos configuration, corresponding to pharos.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	LLM      LLMConfig      `yaml:"llm" koanf:"llm"`
	Analysis AnalysisConfig `yaml:"analysis" koanf:"analysis"`
	Audit    AuditConfig    `yaml:"audit" koanf:"audit"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port              int           `yaml:"port" koanf:"port"`
	AllowedOrigins    []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	RequestTimeout    time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" koanf:"idle_timeout"`
}

// LLMConfig selects the model backend. Timeout, retries, rate limiting and
// caching are all off at their zero values.
type LLMConfig struct {
	Provider          ProviderType  `yaml:"provider" koanf:"provider"`
	BaseURL           string        `yaml:"base_url" koanf:"base_url"`
	Model             string        `yaml:"model" koanf:"model"`
	APIKey            string        `yaml:"api_key,omitempty" koanf:"api_key"`
	APIKeyEnv         string        `yaml:"api_key_env" koanf:"api_key_env"`
	Timeout           time.Duration `yaml:"timeout" koanf:"timeout"`
	MaxRetries        int           `yaml:"max_retries" koanf:"max_retries"`
	RequestsPerMinute int           `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	CacheTTL          time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
}

// AnalysisConfig controls how results are presented to HTTP callers.
type AnalysisConfig struct {
	// ExposeInterpretation adds an "interpretation" object to responses
	// telling callers whether the fallback analysis was substituted.
	ExposeInterpretation bool `yaml:"expose_interpretation" koanf:"expose_interpretation"`
}

// AuditConfig controls the request activity log.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled" koanf:"enabled"`
	DBPath        string `yaml:"db_path" koanf:"db_path"`
	RetentionDays int    `yaml:"retention_days" koanf:"retention_days"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
