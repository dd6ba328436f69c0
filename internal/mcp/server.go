package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Analyzer runs the two analyses. *analysis.Analyzer implements it.
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, req analysis.ClaimRequest) (*analysis.ClaimOutcome, error)
	AnalyzeClaims(ctx context.Context, req analysis.ReportRequest) (*analysis.ReportOutcome, error)
}

// Server wraps an MCP server that exposes the claim analysis tools.
type Server struct {
	analyzer Analyzer
	recorder audit.Recorder
	logger   *zap.Logger
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server. recorder may be nil.
func NewServer(a Analyzer, recorder audit.Recorder, logger *zap.Logger) *Server {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer: a,
		recorder: recorder,
		logger:   logger,
	}

	s.mcp = server.NewMCPServer(
		"pharos",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(analyzeClaimTool, s.handleAnalyzeClaim)
	s.mcp.AddTool(analyzeClaimsTool, s.handleAnalyzeClaims)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
