package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/llm"
)

const previewLength = 200

// Analyzer runs claim analyses against a chat-completion provider. It holds
// no per-request state and is safe for concurrent use.
type Analyzer struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel overrides the model identifier sent with each request.
func WithModel(model string) Option {
	return func(a *Analyzer) { a.model = model }
}

// New creates an Analyzer. A nil provider is allowed: every analysis then
// fails with ErrNotConfigured after input validation.
func New(provider llm.Provider, logger *zap.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{provider: provider, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Configured reports whether the analyzer can reach a model.
func (a *Analyzer) Configured() bool {
	if a.provider == nil {
		return false
	}
	if c, ok := a.provider.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// AnalyzeClaim analyzes one claim. The returned error is an *Error.
func (a *Analyzer) AnalyzeClaim(ctx context.Context, req ClaimRequest) (*ClaimOutcome, error) {
	if strings.TrimSpace(req.ClaimText) == "" {
		return nil, ErrClaimTextRequired
	}
	if !a.Configured() {
		a.logger.Error("AI provider is not configured")
		return nil, ErrNotConfigured
	}

	a.logger.Info("Analyzing claim",
		zap.String("company", req.CompanyName),
		zap.String("sector", req.Sector))

	resp, err := a.complete(ctx, BuildClaimPrompt(req))
	if err != nil {
		e := classifyUpstream(err, ErrClaimFailed)
		a.logger.Error("AI gateway error", zap.Int("status", e.Status), zap.Error(err))
		return nil, e
	}
	a.logger.Info("AI response received", zap.String("preview", preview(resp.Content, previewLength)))

	parsed, interp := interpret[ClaimAnalysis](resp.Content)
	if interp.Structured() {
		parsed = parsed.normalized()
	} else {
		a.logger.Warn("Failed to parse AI response as JSON", zap.String("reason", interp.Reason))
		parsed = claimFallback(resp.Content)
	}

	return &ClaimOutcome{Analysis: parsed, Interpretation: interp, Model: resp.Model}, nil
}

// AnalyzeClaims analyzes a set of claims together with their cross-claim
// relationships. The returned error is an *Error.
func (a *Analyzer) AnalyzeClaims(ctx context.Context, req ReportRequest) (*ReportOutcome, error) {
	claims, err := PrepareClaims(req.Claims)
	if err != nil {
		return nil, err
	}
	req.Claims = claims
	if !a.Configured() {
		a.logger.Error("AI provider is not configured")
		return nil, ErrNotConfigured
	}

	a.logger.Info("Analyzing claims",
		zap.Int("count", len(claims)),
		zap.String("company", req.CompanyName),
		zap.String("sector", req.Sector))

	resp, err := a.complete(ctx, BuildReportPrompt(req))
	if err != nil {
		e := classifyUpstream(err, ErrClaimsFailed)
		a.logger.Error("AI gateway error", zap.Int("status", e.Status), zap.Error(err))
		return nil, e
	}
	a.logger.Info("AI response received", zap.Int("length", len(resp.Content)))

	parsed, interp := interpret[ReportAnalysis](resp.Content)
	if !interp.Structured() {
		a.logger.Warn("Failed to parse AI response as JSON", zap.String("reason", interp.Reason))
		return &ReportOutcome{Analysis: reportFallback(claims), Interpretation: interp, Model: resp.Model}, nil
	}

	reconciled, stats := parsed.reconcile(claims)
	if stats.changed() {
		a.logger.Warn("Reconciled AI report with submitted claims",
			zap.Int("filled", stats.filled),
			zap.Int("dropped_results", stats.droppedResults),
			zap.Int("dropped_findings", stats.droppedFindings))
	}
	return &ReportOutcome{Analysis: reconciled, Interpretation: interp, Model: resp.Model}, nil
}

// PrepareClaims validates claims and assigns claim-<n> ids to claims
// submitted without one. Ids must be unique after assignment.
func PrepareClaims(claims []Claim) ([]Claim, error) {
	if len(claims) == 0 {
		return nil, ErrClaimsRequired
	}
	out := make([]Claim, len(claims))
	seen := make(map[string]bool, len(claims))
	for i, c := range claims {
		if strings.TrimSpace(c.Text) == "" {
			return nil, InvalidInput("Claim %d text is required", i+1)
		}
		if strings.TrimSpace(c.ID) == "" {
			c.ID = fmt.Sprintf("claim-%d", i+1)
		}
		if seen[c.ID] {
			return nil, InvalidInput("Duplicate claim id: %s", c.ID)
		}
		seen[c.ID] = true
		out[i] = c
	}
	return out, nil
}

func (a *Analyzer) complete(ctx context.Context, p Prompt) (*llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: p.System},
			{Role: llm.RoleUser, Content: p.User},
		},
	})
	if err != nil {
		return nil, err
	}

	in, out := resp.InputTokens, resp.OutputTokens
	if in == 0 {
		in = llm.EstimateTokens(p.System) + llm.EstimateTokens(p.User)
	}
	if out == 0 {
		out = llm.EstimateTokens(resp.Content)
	}
	a.logger.Debug("Completion finished",
		zap.String("provider", a.provider.Name()),
		zap.String("model", resp.Model),
		zap.Bool("cached", resp.Cached),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", out),
		zap.Float64("estimated_cost_usd", llm.EstimateCost(resp.Model, in, out)),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
