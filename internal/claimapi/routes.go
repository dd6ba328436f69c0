package claimapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/server"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Analyzer runs the two analyses. *analysis.Analyzer implements it.
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, req analysis.ClaimRequest) (*analysis.ClaimOutcome, error)
	AnalyzeClaims(ctx context.Context, req analysis.ReportRequest) (*analysis.ReportOutcome, error)
}

// Handler serves the claim analysis endpoints.
type Handler struct {
	analyzer             Analyzer
	recorder             audit.Recorder
	logger               *zap.Logger
	exposeInterpretation bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder records one activity log entry per request.
func WithRecorder(r audit.Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithInterpretation adds the interpretation object to response bodies.
func WithInterpretation(expose bool) Option {
	return func(h *Handler) { h.exposeInterpretation = expose }
}

// NewHandler creates a Handler.
func NewHandler(a Analyzer, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{analyzer: a, recorder: audit.Nop{}, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the analyzers under their function paths and under /api.
func RegisterRoutes(r chi.Router, h *Handler) {
	for _, prefix := range []string{"/functions/v1", "/api"} {
		r.Post(prefix+"/analyze-claim", h.handleAnalyzeClaim)
		r.Options(prefix+"/analyze-claim", handlePreflight)
		r.Post(prefix+"/analyze-claims", h.handleAnalyzeClaims)
		r.Options(prefix+"/analyze-claims", handlePreflight)
	}
}

type claimResponse struct {
	Analysis       analysis.ClaimAnalysis   `json:"analysis"`
	Interpretation *analysis.Interpretation `json:"interpretation,omitempty"`
}

type reportResponse struct {
	Analysis       analysis.ReportAnalysis  `json:"analysis"`
	Interpretation *analysis.Interpretation `json:"interpretation,omitempty"`
}

// handlePreflight answers OPTIONS with an empty body. The CORS headers are
// set by the server middleware.
func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleAnalyzeClaim(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := audit.Entry{Kind: audit.KindClaim, Source: audit.SourceHTTP, RequestID: middleware.GetReqID(r.Context())}

	var body claimBody
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, entry, start, err)
		return
	}
	req := body.request()
	entry.Company, entry.Sector, entry.ClaimCount = req.CompanyName, req.Sector, 1

	out, err := h.analyzer.AnalyzeClaim(r.Context(), req)
	if err != nil {
		h.fail(w, r, entry, start, err)
		return
	}

	resp := claimResponse{Analysis: out.Analysis}
	if h.exposeInterpretation {
		resp.Interpretation = &out.Interpretation
	}
	entry.RiskLevel = string(out.Analysis.RiskLevel)
	h.succeed(w, r, entry, start, out.Interpretation, out.Model, resp)
}

func (h *Handler) handleAnalyzeClaims(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := audit.Entry{Kind: audit.KindReport, Source: audit.SourceHTTP, RequestID: middleware.GetReqID(r.Context())}

	var body claimsBody
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, entry, start, err)
		return
	}
	req, err := body.request()
	entry.Company, entry.Sector, entry.ClaimCount = req.CompanyName, req.Sector, len(req.Claims)
	if err != nil {
		h.fail(w, r, entry, start, err)
		return
	}

	out, err := h.analyzer.AnalyzeClaims(r.Context(), req)
	if err != nil {
		h.fail(w, r, entry, start, err)
		return
	}

	resp := reportResponse{Analysis: out.Analysis}
	if h.exposeInterpretation {
		resp.Interpretation = &out.Interpretation
	}
	entry.RiskLevel = string(out.Analysis.OverallRiskLevel)
	h.succeed(w, r, entry, start, out.Interpretation, out.Model, resp)
}

var errInvalidBody = analysis.InvalidInput("Invalid request body")

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &analysis.Error{Status: errInvalidBody.Status, Message: errInvalidBody.Message, Err: err}
	}
	return nil
}

func (h *Handler) succeed(w http.ResponseWriter, r *http.Request, entry audit.Entry, start time.Time, interp analysis.Interpretation, model string, body any) {
	w.Header().Set(server.InterpretationHeader, string(interp.Kind))
	writeJSON(w, http.StatusOK, body)

	entry.Status = http.StatusOK
	entry.Interpretation = string(interp.Kind)
	entry.Model = model
	h.record(r.Context(), entry, start)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, entry audit.Entry, start time.Time, err error) {
	status := analysis.StatusOf(err)
	msg := analysis.MessageOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Analysis request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Warn("Analysis request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})

	entry.Status = status
	entry.Error = msg
	h.record(r.Context(), entry, start)
}

func (h *Handler) record(ctx context.Context, entry audit.Entry, start time.Time) {
	entry.DurationMS = time.Since(start).Milliseconds()
	if err := h.recorder.Log(context.WithoutCancel(ctx), entry); err != nil {
		h.logger.Warn("Recording analysis event failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
