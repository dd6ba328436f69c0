package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestGatewayProviderComplete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer credential, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := openai.ChatCompletionResponse{
			Model: DefaultModel,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: `{"ok":true}`},
				FinishReason: "stop",
			}},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 4},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewGatewayProvider(GatewayConfig{APIKey: "test-key", BaseURL: server.URL})
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "usr"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 4 {
		t.Errorf("unexpected usage %d/%d", resp.InputTokens, resp.OutputTokens)
	}

	if body["model"] != DefaultModel {
		t.Errorf("expected model %q, got %v", DefaultModel, body["model"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if _, ok := body["max_tokens"]; ok {
		t.Error("expected max_tokens to be omitted")
	}
	if _, ok := body["temperature"]; ok {
		t.Error("expected temperature to be omitted")
	}
}

func TestGatewayProviderStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited with error object", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`},
		{"credits with plain body", http.StatusPaymentRequired, `payment required`},
		{"server error", http.StatusBadGateway, `{"error":{"message":"bad gateway"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewGatewayProvider(GatewayConfig{APIKey: "k", BaseURL: server.URL})
			_, err := p.Complete(context.Background(), CompletionRequest{})

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %T: %v", err, err)
			}
			if se.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, se.StatusCode)
			}
			if se.Provider != "gateway" {
				t.Errorf("expected provider 'gateway', got %q", se.Provider)
			}
		})
	}
}

func TestGatewayProviderWithoutKeyMakesNoCall(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	p := NewGatewayProvider(GatewayConfig{BaseURL: server.URL})
	_, err := p.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected no upstream calls, got %d", hits)
	}
}

func TestGatewayProviderEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := NewGatewayProvider(GatewayConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("expected empty content, got %q", resp.Content)
	}
	if resp.Model != "m" {
		t.Errorf("expected model fallback 'm', got %q", resp.Model)
	}
}
