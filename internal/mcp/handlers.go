package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/report"
)

// handleAnalyzeClaim runs a single-claim analysis.
func (s *Server) handleAnalyzeClaim(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	text, err := request.RequireString("claim_text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: claim_text"), nil
	}
	req := analysis.ClaimRequest{
		ClaimText:   text,
		CompanyName: request.GetString("company_name", ""),
		Sector:      request.GetString("sector", ""),
	}
	entry := audit.Entry{Kind: audit.KindClaim, Source: audit.SourceMCP, Company: req.CompanyName, Sector: req.Sector, ClaimCount: 1}

	out, err := s.analyzer.AnalyzeClaim(ctx, req)
	if err != nil {
		return s.fail(ctx, entry, start, err), nil
	}
	entry.RiskLevel = string(out.Analysis.RiskLevel)
	s.succeed(ctx, entry, start, out.Interpretation, out.Model)

	if request.GetString("format", "json") == "markdown" {
		return mcp.NewToolResultText(report.ClaimMarkdown(req.ClaimText, out.Analysis)), nil
	}
	return jsonResult(out.Analysis)
}

// handleAnalyzeClaims runs a multi-claim analysis.
func (s *Server) handleAnalyzeClaims(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	claims, err := claimsArgument(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := analysis.ReportRequest{
		Claims:      claims,
		CompanyName: request.GetString("company_name", ""),
		Sector:      request.GetString("sector", ""),
	}
	entry := audit.Entry{Kind: audit.KindReport, Source: audit.SourceMCP, Company: req.CompanyName, Sector: req.Sector, ClaimCount: len(claims)}

	// Ids are assigned here too so the Markdown view can show claim texts.
	prepared, err := analysis.PrepareClaims(req.Claims)
	if err != nil {
		return s.fail(ctx, entry, start, err), nil
	}
	req.Claims = prepared

	out, err := s.analyzer.AnalyzeClaims(ctx, req)
	if err != nil {
		return s.fail(ctx, entry, start, err), nil
	}
	entry.RiskLevel = string(out.Analysis.OverallRiskLevel)
	s.succeed(ctx, entry, start, out.Interpretation, out.Model)

	if request.GetString("format", "json") == "markdown" {
		return mcp.NewToolResultText(report.ReportMarkdown(req.CompanyName, prepared, out.Analysis)), nil
	}
	return jsonResult(out.Analysis)
}

// claimsArgument decodes the claims array. Items may be {id, text} objects
// or bare strings.
func claimsArgument(args map[string]any) ([]analysis.Claim, error) {
	raw, ok := args["claims"].([]any)
	if !ok || len(raw) == 0 {
		return nil, analysis.ErrClaimsRequired
	}
	claims := make([]analysis.Claim, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			claims[i] = analysis.Claim{Text: v}
		case map[string]any:
			claims[i] = analysis.Claim{ID: stringify(v["id"]), Text: stringify(v["text"])}
		default:
			return nil, fmt.Errorf("claim %d must be an object or a string", i+1)
		}
	}
	return claims, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprint(x)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) succeed(ctx context.Context, entry audit.Entry, start time.Time, interp analysis.Interpretation, model string) {
	entry.Status = http.StatusOK
	entry.Interpretation = string(interp.Kind)
	entry.Model = model
	s.record(ctx, entry, start)
}

func (s *Server) fail(ctx context.Context, entry audit.Entry, start time.Time, err error) *mcp.CallToolResult {
	s.logger.Warn("MCP analysis failed", zap.Error(err))
	entry.Status = analysis.StatusOf(err)
	entry.Error = analysis.MessageOf(err)
	s.record(ctx, entry, start)
	return mcp.NewToolResultError(entry.Error)
}

func (s *Server) record(ctx context.Context, entry audit.Entry, start time.Time) {
	entry.DurationMS = time.Since(start).Milliseconds()
	if err := s.recorder.Log(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("Recording analysis event failed", zap.Error(err))
	}
}
