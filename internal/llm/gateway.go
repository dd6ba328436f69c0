package llm

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultGatewayURL is the OpenAI-compatible AI gateway the analyzers talk to
// unless configured otherwise.
const DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"

// DefaultModel is the model identifier sent with every analysis request.
const DefaultModel = "google/gemini-3-flash-preview"

// GatewayConfig configures a GatewayProvider.
type GatewayConfig struct {
	// Name identifies the provider in logs and errors.
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	// KeyOptional allows calls without an API key (local Ollama).
	KeyOptional bool
	HTTPClient  *http.Client
}

// GatewayProvider implements Provider against any OpenAI-compatible
// /chat/completions endpoint.
type GatewayProvider struct {
	client *openai.Client
	cfg    GatewayConfig
}

// NewGatewayProvider creates a provider for an OpenAI-compatible endpoint.
// An empty API key yields a provider whose every call fails with
// ErrNotConfigured before any network I/O.
func NewGatewayProvider(cfg GatewayConfig) *GatewayProvider {
	if cfg.Name == "" {
		cfg.Name = "gateway"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGatewayURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	return &GatewayProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

func (p *GatewayProvider) Name() string {
	return p.cfg.Name
}

// Model returns the default model identifier.
func (p *GatewayProvider) Model() string {
	return p.cfg.Model
}

// Configured reports whether the provider holds a usable credential.
func (p *GatewayProvider) Configured() bool {
	return p.cfg.APIKey != "" || p.cfg.KeyOptional
}

func (p *GatewayProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, classifyError(p.cfg.Name, err)
	}

	out := &CompletionResponse{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	if out.Model == "" {
		out.Model = model
	}
	return out, nil
}
