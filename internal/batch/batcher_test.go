package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAnalyzer struct {
	calls atomic.Int32
	errs  map[string]error // by company name
}

func (f *fakeAnalyzer) AnalyzeClaims(_ context.Context, req analysis.ReportRequest) (*analysis.ReportOutcome, error) {
	f.calls.Add(1)
	if err := f.errs[req.CompanyName]; err != nil {
		return nil, err
	}
	results := make([]analysis.ClaimResult, len(req.Claims))
	for i, c := range req.Claims {
		results[i] = analysis.ClaimResult{ID: c.ID}
	}
	return &analysis.ReportOutcome{
		Analysis:       analysis.ReportAnalysis{Claims: results, OverallRiskLevel: analysis.RiskLow},
		Interpretation: analysis.Interpretation{Kind: analysis.KindStructured},
		Model:          "test-model",
	}, nil
}

type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memRecorder) Log(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRequestYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "acme.yml", "companyName: Acme\nsector: Energy\nclaims:\n  - id: a\n    text: Net zero by 2040\n  - text: 100% recycled packaging\n")
	j := writeFile(t, dir, "acme.json", `{"companyName":"Acme","claims":[{"id":"a","text":"Net zero by 2040"}]}`)

	req, err := ReadRequest(y)
	require.NoError(t, err)
	assert.Equal(t, "Acme", req.CompanyName)
	assert.Equal(t, "Energy", req.Sector)
	assert.Equal(t, []analysis.Claim{{ID: "a", Text: "Net zero by 2040"}, {Text: "100% recycled packaging"}}, req.Claims)

	req, err = ReadRequest(j)
	require.NoError(t, err)
	assert.Len(t, req.Claims, 1)

	_, err = ReadRequest(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestReadRequestBareStringClaims(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "acme.yml", "companyName: Acme\nclaims:\n  - Net zero by 2040\n  - id: \"2\"\n    text: 100% recycled packaging\n  - \"\"\n")
	j := writeFile(t, dir, "acme.json", `{"claims":["Net zero by 2040",{"id":"b","text":"Zero waste"}]}`)

	req, err := ReadRequest(y)
	require.NoError(t, err)
	assert.Equal(t, []analysis.Claim{{Text: "Net zero by 2040"}, {ID: "2", Text: "100% recycled packaging"}, {}}, req.Claims)

	req, err = ReadRequest(j)
	require.NoError(t, err)
	assert.Equal(t, []analysis.Claim{{Text: "Net zero by 2040"}, {ID: "b", Text: "Zero waste"}}, req.Claims)

	bad := writeFile(t, dir, "bad.yml", "claims:\n  - id: [1, 2]\n")
	_, err = ReadRequest(bad)
	assert.Error(t, err)
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 5; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("r%d.yml", i),
			fmt.Sprintf("companyName: c%d\nclaims:\n  - text: claim one\n  - text: claim two\n", i)))
	}

	a := &fakeAnalyzer{}
	rec := &memRecorder{}
	var progressCalls []int
	b := NewBatcher(3, a, rec, func(processed, total int, file string) {
		assert.Equal(t, 5, total)
		progressCalls = append(progressCalls, processed)
	})

	result := b.ProcessFiles(context.Background(), paths)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Results, 5)
	for i, fr := range result.Results {
		assert.Equal(t, paths[i], fr.Path, "results keep input order")
		assert.Equal(t, "claim-1", fr.Request.Claims[0].ID)
		assert.Equal(t, "claim-2", fr.Request.Claims[1].ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progressCalls)
	assert.Len(t, rec.entries, 5)
	for _, e := range rec.entries {
		assert.Equal(t, audit.SourceCLI, e.Source)
		assert.Equal(t, 200, e.Status)
	}
}

func TestProcessFilesCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yml", "companyName: ok\nclaims:\n  - text: x\n")
	empty := writeFile(t, dir, "empty.yml", "companyName: ok\nclaims: []\n")
	broken := writeFile(t, dir, "broken.yml", "claims: [unterminated\n")
	limited := writeFile(t, dir, "limited.yml", "companyName: busy\nclaims:\n  - text: x\n")

	a := &fakeAnalyzer{errs: map[string]error{"busy": analysis.ErrRateLimited}}
	rec := &memRecorder{}
	result := NewBatcher(1, a, rec, nil).ProcessFiles(context.Background(), []string{good, empty, broken, limited})

	require.Len(t, result.Results, 1)
	assert.Equal(t, good, result.Results[0].Path)
	assert.Len(t, result.Errors, 3)
	assert.EqualValues(t, 2, a.calls.Load())

	statuses := map[int]int{}
	for _, e := range rec.entries {
		statuses[e.Status]++
	}
	assert.Equal(t, map[int]int{200: 1, 400: 1, 429: 1}, statuses)
}

func TestProcessFilesStopsWhenCreditsDepleted(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.yml", "companyName: broke\nclaims:\n  - text: x\n"),
		writeFile(t, dir, "b.yml", "companyName: ok\nclaims:\n  - text: x\n"),
		writeFile(t, dir, "c.yml", "companyName: ok\nclaims:\n  - text: x\n"),
	}

	a := &fakeAnalyzer{errs: map[string]error{"broke": analysis.ErrCreditsDepleted}}
	result := NewBatcher(1, a, nil, nil).ProcessFiles(context.Background(), paths)

	assert.Empty(t, result.Results)
	assert.Len(t, result.Errors, 3)
	assert.EqualValues(t, 1, a.calls.Load())
}

func TestProcessFilesEmpty(t *testing.T) {
	result := NewBatcher(0, &fakeAnalyzer{}, nil, nil).ProcessFiles(context.Background(), nil)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Errors)
}
