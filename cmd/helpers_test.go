package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/config"
)

type memRecorder struct{ entries []audit.Entry }

func (m *memRecorder) Log(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestNewLoggerLevels(t *testing.T) {
	l, err := newLogger(config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if l.Core().Enabled(-1) || !l.Core().Enabled(1) {
		t.Error("expected warn level")
	}

	if _, err := newLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestBuildAnalyzerWithoutKey(t *testing.T) {
	c := config.DefaultConfig()
	c.LLM.APIKeyEnv = "PHAROS_TEST_UNSET_KEY"
	t.Setenv("PHAROS_TEST_UNSET_KEY", "")

	a, err := buildAnalyzer(c, logger)
	if err != nil {
		t.Fatalf("buildAnalyzer: %v", err)
	}
	if a.Configured() {
		t.Error("analyzer should not be configured without a key")
	}

	_, err = a.AnalyzeClaim(context.Background(), analysis.ClaimRequest{ClaimText: "x"})
	if !errors.Is(err, analysis.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBuildAnalyzerRejectsUnknownProvider(t *testing.T) {
	c := config.DefaultConfig()
	c.LLM.Provider = "carrier-pigeon"
	if _, err := buildAnalyzer(c, logger); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOpenAuditDisabled(t *testing.T) {
	database, store, err := openAudit(config.DefaultConfig())
	if err != nil || database != nil || store != nil {
		t.Errorf("expected nils, got %v %v %v", database, store, err)
	}
	if _, ok := recorderFor(store).(audit.Nop); !ok {
		t.Error("expected Nop recorder")
	}
}

func TestRecordCLI(t *testing.T) {
	rec := &memRecorder{}
	start := time.Now()

	recordCLI(context.Background(), rec, audit.Entry{Kind: audit.KindClaim}, start,
		analysis.Interpretation{Kind: analysis.KindFallback}, "m", nil)
	recordCLI(context.Background(), rec, audit.Entry{Kind: audit.KindReport}, start,
		analysis.Interpretation{}, "", analysis.ErrCreditsDepleted)

	if len(rec.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rec.entries))
	}
	ok, failed := rec.entries[0], rec.entries[1]
	if ok.Source != audit.SourceCLI || ok.Status != 200 || ok.Interpretation != "fallback" || ok.Model != "m" {
		t.Errorf("unexpected success entry %+v", ok)
	}
	if failed.Status != 402 || failed.Error != analysis.ErrCreditsDepleted.Message {
		t.Errorf("unexpected failure entry %+v", failed)
	}
}

func TestWriteResult(t *testing.T) {
	a := analysis.ClaimAnalysis{Assessment: analysis.Assessment{ClaimType: "Water", RiskLevel: analysis.RiskLow}}
	md := func() string { return "# Claim Analysis\n" }
	defer func(f string) { analyzeFormat = f }(analyzeFormat)

	var buf bytes.Buffer
	analyzeFormat = "json"
	if err := writeResult(&buf, a, "t", md); err != nil {
		t.Fatalf("json: %v", err)
	}
	var got analysis.ClaimAnalysis
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil || got.ClaimType != "Water" {
		t.Errorf("unexpected json output %q", buf.String())
	}

	buf.Reset()
	analyzeFormat = "markdown"
	if err := writeResult(&buf, a, "t", md); err != nil || buf.String() != "# Claim Analysis\n" {
		t.Errorf("unexpected markdown output %q (%v)", buf.String(), err)
	}

	buf.Reset()
	analyzeFormat = "html"
	if err := writeResult(&buf, a, "Acme", md); err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(buf.String(), "<title>Acme</title>") || !strings.Contains(buf.String(), "Claim Analysis</h1>") {
		t.Errorf("unexpected html output %q", buf.String())
	}
}

func TestReportTitle(t *testing.T) {
	if got := reportTitle(""); got != "Report Analysis" {
		t.Errorf("reportTitle(\"\") = %q", got)
	}
	if got := reportTitle("Acme"); got != "Acme Report Analysis" {
		t.Errorf("reportTitle(Acme) = %q", got)
	}
}

type fixedConfigured bool

func (f fixedConfigured) Configured() bool { return bool(f) }

func TestLLMHealth(t *testing.T) {
	if got := llmHealth(fixedConfigured(true))(); got != "configured" {
		t.Errorf("configured analyzer reported %q", got)
	}
	if got := llmHealth(fixedConfigured(false))(); got != "not_configured" {
		t.Errorf("unconfigured analyzer reported %q", got)
	}
}

func TestServeUntilDoneWaitsForShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	closed := make(chan struct{})
	var finished atomic.Bool
	start := func() error {
		<-closed
		return http.ErrServerClosed
	}
	shutdown := func(context.Context) error {
		close(closed)
		// Start has already returned; draining takes a while longer.
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}

	if err := serveUntilDone(ctx, start, shutdown); err != nil {
		t.Fatalf("serveUntilDone: %v", err)
	}
	if !finished.Load() {
		t.Error("returned before shutdown finished")
	}
}

func TestServeUntilDoneReturnsStartError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenErr := errors.New("address already in use")
	err := serveUntilDone(ctx, func() error { return listenErr }, func(context.Context) error { return nil })
	if !errors.Is(err, listenErr) {
		t.Errorf("expected listen error, got %v", err)
	}
}
