package llm

import (
	"fmt"
	"time"
)

// Options selects and configures a provider. The API key is passed in by the
// caller; providers never read the process environment themselves.
type Options struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// WrapOptions configures the optional behaviour layered around a provider.
// Zero values disable each layer.
type WrapOptions struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// NewProvider creates a provider for the given type.
// Supported provider types: "gateway" (default), "openai", "openrouter", "ollama".
// A missing API key is not an error here: the returned provider answers
// every call with ErrNotConfigured so the service can still start.
func NewProvider(opts Options) (*GatewayProvider, error) {
	switch opts.Provider {
	case "", "gateway":
		return NewGatewayProvider(GatewayConfig{
			Name:    "gateway",
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   opts.Model,
		}), nil

	case "openai":
		return NewGatewayProvider(GatewayConfig{
			Name:    "openai",
			APIKey:  opts.APIKey,
			BaseURL: orDefault(opts.BaseURL, "https://api.openai.com/v1"),
			Model:   orDefault(opts.Model, "gpt-4o-mini"),
		}), nil

	case "openrouter":
		return NewGatewayProvider(GatewayConfig{
			Name:    "openrouter",
			APIKey:  opts.APIKey,
			BaseURL: orDefault(opts.BaseURL, "https://openrouter.ai/api/v1"),
			Model:   opts.Model,
		}), nil

	case "ollama":
		return NewGatewayProvider(GatewayConfig{
			Name:        "ollama",
			APIKey:      opts.APIKey,
			BaseURL:     orDefault(opts.BaseURL, "http://localhost:11434/v1"),
			Model:       orDefault(opts.Model, "llama3.1"),
			KeyOptional: true,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}
}

// Wrap layers retries, rate limiting and caching around p. The cache sits
// outermost so hits skip the limiter.
func Wrap(p Provider, opts WrapOptions) Provider {
	if opts.MaxRetries > 0 || opts.Timeout > 0 {
		p = NewRetryingProvider(p, opts.MaxRetries, opts.Timeout, opts.RetryBackoff)
	}
	if opts.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, opts.RequestsPerMinute)
	}
	if opts.CacheTTL > 0 {
		p = NewCachingProvider(p, opts.CacheTTL)
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
