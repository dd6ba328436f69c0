// Package batch analyzes claims files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
)

// Analyzer runs multi-claim analyses. *analysis.Analyzer implements it.
type Analyzer interface {
	AnalyzeClaims(ctx context.Context, req analysis.ReportRequest) (*analysis.ReportOutcome, error)
}

// ProgressFunc is called once per file after it has been handled. Calls
// are serialized.
type ProgressFunc func(processed, total int, file string)

// FileResult is the analysis of one claims file. Request holds the claims
// with their assigned ids.
type FileResult struct {
	Path    string
	Request analysis.ReportRequest
	Outcome *analysis.ReportOutcome
}

// Result holds collected results, in input order, and errors.
type Result struct {
	Results []FileResult
	Errors  []error
}

// Batcher processes files concurrently through the analyzer with configurable parallelism.
type Batcher struct {
	concurrency int
	analyzer    Analyzer
	recorder    audit.Recorder
	onProgress  ProgressFunc
}

// NewBatcher creates a new Batcher with the given concurrency limit.
// recorder and onProgress may be nil.
func NewBatcher(concurrency int, a Analyzer, recorder audit.Recorder, onProgress ProgressFunc) *Batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Batcher{
		concurrency: concurrency,
		analyzer:    a,
		recorder:    recorder,
		onProgress:  onProgress,
	}
}

// fileClaim is one claims file entry: an {id, text} mapping or a bare
// string holding the text.
type fileClaim analysis.Claim

func (c *fileClaim) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = fileClaim{Text: node.Value}
		return nil
	}
	var claim analysis.Claim
	if err := node.Decode(&claim); err != nil {
		return err
	}
	*c = fileClaim(claim)
	return nil
}

type fileRequest struct {
	Claims      []fileClaim `yaml:"claims"`
	CompanyName string      `yaml:"companyName"`
	Sector      string      `yaml:"sector"`
}

// ReadRequest parses a claims file. YAML is a superset of JSON, so both
// formats are accepted.
func ReadRequest(path string) (analysis.ReportRequest, error) {
	var req analysis.ReportRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	var fr fileRequest
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return req, fmt.Errorf("parsing %s: %w", path, err)
	}

	req.CompanyName = fr.CompanyName
	req.Sector = fr.Sector
	if len(fr.Claims) > 0 {
		req.Claims = make([]analysis.Claim, len(fr.Claims))
		for i, c := range fr.Claims {
			req.Claims[i] = analysis.Claim(c)
		}
	}
	return req, nil
}

// stopsBatch reports errors after which no further file can succeed.
func stopsBatch(err error) bool {
	return errors.Is(err, analysis.ErrCreditsDepleted) || errors.Is(err, analysis.ErrNotConfigured)
}

// ProcessFiles analyzes a list of claims files concurrently.
func (b *Batcher) ProcessFiles(ctx context.Context, paths []string) *Result {
	total := len(paths)
	if total == 0 {
		return &Result{}
	}

	// Circuit breaker: cancel remaining work once the account is out of credits.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var stopped atomic.Bool

	sem := make(chan struct{}, b.concurrency)
	var mu sync.Mutex
	processed := 0
	slots := make([]*FileResult, total)
	result := &Result{}

	done := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
		processed++
		if b.onProgress != nil {
			b.onProgress(processed, total, path)
		}
	}

	var wg sync.WaitGroup
	for i, path := range paths {
		if stopped.Load() {
			done(path, fmt.Errorf("analyze %s: skipped after an earlier fatal error", path))
			continue
		}

		select {
		case <-ctx.Done():
			done(path, fmt.Errorf("analyze %s: %w", path, ctx.Err()))
			continue
		case sem <- struct{}{}:
		}
		if stopped.Load() {
			<-sem
			done(path, fmt.Errorf("analyze %s: skipped after an earlier fatal error", path))
			continue
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			fr, err := b.processFile(ctx, path)
			if err != nil {
				if stopsBatch(err) {
					stopped.Store(true)
					cancel()
				}
				done(path, fmt.Errorf("analyze %s: %w", path, err))
				return
			}
			mu.Lock()
			slots[i] = fr
			mu.Unlock()
			done(path, nil)
		}(i, path)
	}

	wg.Wait()

	for _, fr := range slots {
		if fr != nil {
			result.Results = append(result.Results, *fr)
		}
	}
	return result
}

func (b *Batcher) processFile(ctx context.Context, path string) (*FileResult, error) {
	start := time.Now()
	req, err := ReadRequest(path)
	if err != nil {
		return nil, err
	}
	entry := audit.Entry{Kind: audit.KindReport, Source: audit.SourceCLI, Company: req.CompanyName, Sector: req.Sector, ClaimCount: len(req.Claims)}

	claims, err := analysis.PrepareClaims(req.Claims)
	if err == nil {
		req.Claims = claims
		var out *analysis.ReportOutcome
		out, err = b.analyzer.AnalyzeClaims(ctx, req)
		if err == nil {
			entry.Status = 200
			entry.RiskLevel = string(out.Analysis.OverallRiskLevel)
			entry.Interpretation = string(out.Interpretation.Kind)
			entry.Model = out.Model
			b.record(ctx, entry, start)
			return &FileResult{Path: path, Request: req, Outcome: out}, nil
		}
	}

	entry.Status = analysis.StatusOf(err)
	entry.Error = analysis.MessageOf(err)
	b.record(ctx, entry, start)
	return nil, err
}

func (b *Batcher) record(ctx context.Context, entry audit.Entry, start time.Time) {
	entry.DurationMS = time.Since(start).Milliseconds()
	// Recording failures never fail the file.
	_ = b.recorder.Log(context.WithoutCancel(ctx), entry)
}
