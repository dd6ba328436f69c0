package audit

import (
	"context"
	"time"
)

// Kind identifies which analyzer served a request.
type Kind string

const (
	KindClaim  Kind = "claim"
	KindReport Kind = "report"
)

// Source identifies the surface a request arrived through.
type Source string

const (
	SourceHTTP Source = "http"
	SourceCLI  Source = "cli"
	SourceMCP  Source = "mcp"
)

// Entry is one analysis request in the activity log. It records metadata
// only; claim texts and analysis bodies are never stored.
type Entry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	RequestID      string    `json:"requestId,omitempty"`
	Kind           Kind      `json:"kind"`
	Source         Source    `json:"source"`
	Company        string    `json:"company,omitempty"`
	Sector         string    `json:"sector,omitempty"`
	ClaimCount     int       `json:"claimCount"`
	Status         int       `json:"status"`
	Error          string    `json:"error,omitempty"`
	RiskLevel      string    `json:"riskLevel,omitempty"`
	Interpretation string    `json:"interpretation,omitempty"`
	Model          string    `json:"model,omitempty"`
	DurationMS     int64     `json:"durationMs"`
}

// Recorder accepts activity log entries.
type Recorder interface {
	Log(ctx context.Context, entry Entry) error
}

// Nop is a Recorder that drops every entry.
type Nop struct{}

func (Nop) Log(context.Context, Entry) error { return nil }
